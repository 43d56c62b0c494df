package reporting

import (
	"fmt"
	"io"
	"os"
	"sync"

	"lighter/internal/color"
	"lighter/pkg/logging"
)

// ConsoleReporter prints one line per action, e.g. "Starting Shop... Done".
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
	// open is true while a begin line waits for its result.
	open    bool
	openEnv string
}

// NewConsoleReporter writes to out, or stdout when out is nil.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

// Report implements Reporter.
func (c *ConsoleReporter) Report(update Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	label := update.Description
	if label == "" {
		label = update.Environment
	}

	switch update.Phase {
	case PhaseBegin:
		if update.Action == ActionRetry && c.open && c.openEnv == update.Environment {
			// Stays on the line of the start being retried.
			fmt.Fprint(c.out, "retrying... ")
			logging.Debug("Reporter", "%s %s", update.Action, update.Environment)
			return
		}
		c.closeLine()
		fmt.Fprintf(c.out, "%s %s... ", update.Action, label)
		c.open = true
		c.openEnv = update.Environment
		logging.Debug("Reporter", "%s %s", update.Action, update.Environment)
	case PhaseDone:
		if !c.open {
			fmt.Fprintf(c.out, "%s %s... ", update.Action, label)
		}
		fmt.Fprintln(c.out, color.Success.Render("Done"))
		c.open = false
	case PhaseFailed:
		if !c.open {
			fmt.Fprintf(c.out, "%s %s... ", update.Action, label)
		}
		fmt.Fprintln(c.out, color.Failure.Render("failed"))
		c.open = false
		logging.Error("Reporter", update.Err, "%s %s failed", update.Action, update.Environment)
	}
}

// Notice implements Reporter.
func (c *ConsoleReporter) Notice(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLine()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// closeLine terminates a begin line whose result never came, e.g. when a
// dependency starts in between.
func (c *ConsoleReporter) closeLine() {
	if c.open {
		fmt.Fprintln(c.out)
		c.open = false
	}
}

var (
	_ Reporter = (*ConsoleReporter)(nil)
	_ Reporter = (*Recorder)(nil)
)
