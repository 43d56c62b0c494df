// Package reporting tells the user what the orchestrator is doing.
package reporting

import (
	"fmt"
	"sync"
)

// Action is the lifecycle step an update refers to.
type Action string

const (
	ActionStart      Action = "Starting"
	ActionStop       Action = "Stopping"
	ActionRetry      Action = "Retrying"
	ActionBuild      Action = "Building"
	ActionInitialize Action = "Initializing"
)

// String makes Action satisfy the fmt.Stringer interface.
func (a Action) String() string {
	return string(a)
}

// Phase tells whether an action begins or ends.
type Phase int

const (
	PhaseBegin Phase = iota
	PhaseDone
	PhaseFailed
)

// Update is a single progress event for one environment.
type Update struct {
	Action      Action
	Phase       Phase
	Environment string
	// Description is the display text of the environment.
	Description string
	Err         error
}

// String provides a simple representation for debugging.
func (u Update) String() string {
	return fmt.Sprintf("Update(%s %s, phase=%d, err=%v)", u.Action, u.Environment, u.Phase, u.Err)
}

// Reporter receives progress updates and free-form notices.
type Reporter interface {
	Report(update Update)
	Notice(format string, args ...interface{})
}

// Recorder is a Reporter that keeps everything it receives.
type Recorder struct {
	mu      sync.Mutex
	updates []Update
	notices []string
}

// Report implements Reporter.
func (r *Recorder) Report(update Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

// Notice implements Reporter.
func (r *Recorder) Notice(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, fmt.Sprintf(format, args...))
}

// Updates returns a copy of the recorded updates.
func (r *Recorder) Updates() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

// Completed returns the environments for which action finished successfully, in order.
func (r *Recorder) Completed(action Action) []string {
	var names []string
	for _, u := range r.Updates() {
		if u.Action == action && u.Phase == PhaseDone {
			names = append(names, u.Environment)
		}
	}
	return names
}
