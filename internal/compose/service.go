package compose

import "strings"

// Service is one logical row of a `docker-compose ps` listing.
type Service struct {
	Name    string
	Command string
	State   string
	// Ports is empty when the listing has no ports column or the service
	// publishes nothing.
	Ports string
}

// Running reports whether the raw state is an "Up" state, including
// variants such as "Up (healthy)".
func (s Service) Running() bool {
	return strings.HasPrefix(s.State, "Up")
}

// ExitedCleanly reports whether the service stopped with exit code 0.
func (s Service) ExitedCleanly() bool {
	return s.State == "Exit 0"
}
