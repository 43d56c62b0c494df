package color

import "github.com/charmbracelet/lipgloss"

var (
	Success = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1B813E", Dark: "#50FA7B"})
	Failure = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF5555"}).Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"})
	Title   = lipgloss.NewStyle().Bold(true)

	// Status styles, keyed by the printed status word.
	Started = Success
	Stopped = Muted
	Failed  = Failure
)

// Initialize forces the background mode instead of querying the terminal.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// ForStatus returns the style for a status word such as "started".
func ForStatus(status string) lipgloss.Style {
	switch status {
	case "started":
		return Started
	case "failed":
		return Failed
	default:
		return Stopped
	}
}
