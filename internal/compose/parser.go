package compose

import (
	"regexp"
	"strings"
	"unicode"
)

// separatorLength is the minimum run of blank columns between two columns of
// the `docker-compose ps` pseudo-table. Shorter gaps belong to the cell text.
const separatorLength = 3

var separatorLine = regexp.MustCompile(`^-+$`)

// column is a byte extent of the table.
type column struct {
	start  int
	length int
}

// ParsePS turns the raw lines of `docker-compose ps` into services.
//
// The listing is a space aligned table whose cells wrap onto continuation
// lines when they exceed the column width. Lines up to and including the
// dash-only separator are the header. A physical line starts a new service
// when its state cell starts with an uppercase letter; any other line is
// appended to the service in progress, cell by cell, without separators.
func ParsePS(lines []string) []Service {
	columns := detectColumns(lines)

	var (
		services []Service
		current  []string
		header   = true
	)
	for _, line := range lines {
		if separatorLine.MatchString(line) {
			header = false
			continue
		}
		if header {
			continue
		}

		fields := split(line, columns)
		if current == nil || startsRecord(fields) {
			if current != nil {
				services = append(services, toService(current))
			}
			current = fields
			continue
		}
		for i, value := range fields {
			current[i] += value
		}
	}
	if current != nil {
		services = append(services, toService(current))
	}

	return services
}

// detectColumns finds the column extents of the table. A byte position is
// blank only when it holds a space on every line long enough to reach it.
func detectColumns(lines []string) []column {
	var blank []bool
	for _, line := range lines {
		if separatorLine.MatchString(line) {
			continue
		}
		for i := 0; i < len(line); i++ {
			isSpace := line[i] == ' '
			if i < len(blank) {
				blank[i] = blank[i] && isSpace
			} else {
				blank = append(blank, isSpace)
			}
		}
	}

	var columns []column
	previousBlank := true
	gap := 0
	for pos, isBlank := range blank {
		if previousBlank && !isBlank {
			if gap > 0 && gap < separatorLength && len(columns) > 0 {
				// Too narrow to be a separator: the gap is part of the last column.
				columns[len(columns)-1].length += gap
			} else {
				columns = append(columns, column{start: pos})
			}
		}
		if isBlank {
			gap++
		} else {
			columns[len(columns)-1].length++
			gap = 0
		}
		previousBlank = isBlank
	}

	return columns
}

func split(line string, columns []column) []string {
	fields := make([]string, len(columns))
	for i, c := range columns {
		if c.start >= len(line) {
			continue
		}
		end := c.start + c.length
		if end > len(line) {
			end = len(line)
		}
		fields[i] = strings.TrimSpace(line[c.start:end])
	}
	return fields
}

func startsRecord(fields []string) bool {
	if len(fields) < 3 || fields[2] == "" {
		return false
	}
	return unicode.IsUpper(rune(fields[2][0]))
}

func toService(fields []string) Service {
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return Service{
		Name:    field(0),
		Command: field(1),
		State:   field(2),
		Ports:   field(3),
	}
}
