// Package shell runs external commands for lighter.
//
// Every docker-compose invocation goes through the Executor interface so the
// environment code can be exercised in tests with shelltest.Fake instead of
// real processes. Commands are executed synchronously; a hung command blocks
// the caller.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"lighter/pkg/logging"
)

// Command describes a single shell invocation.
type Command struct {
	// Line is the command line handed to bash -c.
	Line string
	// Dir is the working directory, empty for the current one.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the process environment.
	Env []string
}

// Result is the outcome of Exec.
type Result struct {
	Status int
	Stdout string
	Stderr string
}

// Output returns stdout without the trailing newline.
func (r Result) Output() string {
	return strings.TrimRight(r.Stdout, "\r\n")
}

// Lines returns stdout split into lines. An empty output yields no lines.
func (r Result) Lines() []string {
	out := r.Output()
	if out == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.Status == 0
}

// Executor runs commands.
//
// Exec captures output and reports a non-zero exit through Result.Status; it
// returns an error only when the process could not be run at all. Passthru
// attaches the command to the terminal and does not capture anything.
type Executor interface {
	Exec(ctx context.Context, cmd Command) (Result, error)
	Passthru(ctx context.Context, cmd Command) (int, error)
}

// Config mirrors the shell section of the configuration file.
type Config struct {
	// PreExec is prefixed to every command, joined with "&&".
	PreExec string
}

// Bash is the production Executor, running commands with bash -c.
type Bash struct {
	preExec string
	stdin   *os.File
	stdout  *os.File
	stderr  *os.File
}

// NewBash creates a Bash executor.
func NewBash(cfg Config) *Bash {
	return &Bash{
		preExec: cfg.PreExec,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// Prepare returns the command line with the preExec prefix applied.
func (b *Bash) Prepare(line string) string {
	return withPreExec(b.preExec, line)
}

func withPreExec(preExec, line string) string {
	preExec = strings.TrimSpace(preExec)
	if preExec == "" {
		return line
	}
	if !strings.HasSuffix(preExec, "&&") {
		preExec += " &&"
	}
	return preExec + " " + line
}

// Exec runs the command and captures stdout and stderr.
func (b *Bash) Exec(ctx context.Context, cmd Command) (Result, error) {
	line := b.Prepare(cmd.Line)
	logging.Debug("Shell", "exec %q (dir=%s)", line, cmd.Dir)

	c := exec.CommandContext(ctx, "bash", "-c", line)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	res := Result{}
	err := c.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Status = exitErr.ExitCode()
			logging.Debug("Shell", "command %q exited with status %d", line, res.Status)
			return res, nil
		}
		return res, fmt.Errorf("failed to run %q: %w", line, err)
	}
	return res, nil
}

// Passthru runs the command attached to the current terminal. The preExec
// prefix is applied here too, so exec and run see the same environment as
// the captured commands.
func (b *Bash) Passthru(ctx context.Context, cmd Command) (int, error) {
	line := b.Prepare(cmd.Line)
	logging.Debug("Shell", "passthru %q (dir=%s)", line, cmd.Dir)

	c := exec.CommandContext(ctx, "bash", "-c", line)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdin = b.stdin
	c.Stdout = b.stdout
	c.Stderr = b.stderr

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to run %q: %w", line, err)
	}
	return 0, nil
}

var _ Executor = (*Bash)(nil)
