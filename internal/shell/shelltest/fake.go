// Package shelltest provides a recording shell.Executor for tests.
package shelltest

import (
	"context"
	"strings"
	"sync"

	"lighter/internal/shell"
)

// Call records a single executor invocation.
type Call struct {
	Method  string
	Command shell.Command
}

// Fake is a test double for shell.Executor.
//
// ExecFunc and PassthruFunc are optional; when nil, the command succeeds with
// empty output.
//
//	fake := &shelltest.Fake{
//	    ExecFunc: func(cmd shell.Command) (shell.Result, error) {
//	        if strings.Contains(cmd.Line, "ps") {
//	            return shell.Result{Stdout: psOutput}, nil
//	        }
//	        return shell.Result{}, nil
//	    },
//	}
type Fake struct {
	ExecFunc     func(cmd shell.Command) (shell.Result, error)
	PassthruFunc func(cmd shell.Command) (int, error)

	mu    sync.Mutex
	calls []Call
}

// Exec records the call and delegates to ExecFunc.
func (f *Fake) Exec(_ context.Context, cmd shell.Command) (shell.Result, error) {
	f.record("Exec", cmd)
	if f.ExecFunc == nil {
		return shell.Result{}, nil
	}
	return f.ExecFunc(cmd)
}

// Passthru records the call and delegates to PassthruFunc.
func (f *Fake) Passthru(_ context.Context, cmd shell.Command) (int, error) {
	f.record("Passthru", cmd)
	if f.PassthruFunc == nil {
		return 0, nil
	}
	return f.PassthruFunc(cmd)
}

func (f *Fake) record(method string, cmd shell.Command) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Command: cmd})
}

// Calls returns a copy of all recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the command lines of all recorded calls in order.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.Command.Line)
	}
	return lines
}

// Count returns how many recorded command lines contain substr.
func (f *Fake) Count(substr string) int {
	n := 0
	for _, line := range f.Lines() {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

// Reset clears the recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

var _ shell.Executor = (*Fake)(nil)
