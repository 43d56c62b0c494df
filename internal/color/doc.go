// Package color holds the terminal styles lighter uses for progress and
// status output.
//
// Styles are lipgloss styles with adaptive colors, so they render sensibly
// on dark and light terminals and degrade to plain text when the output is
// not a color terminal or NO_COLOR is set.
//
//	fmt.Println(color.Started.Render("started"))
package color
