package environment

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"lighter/internal/shell"
	"lighter/internal/shell/shelltest"
)

// fakeCompose simulates docker-compose for the projects living in temp dirs.
// Container states are keyed by directory then service name.
type fakeCompose struct {
	*shelltest.Fake

	states  map[string]map[string]string
	failUp  bool
	failRun map[string]int
	// foreign ps rows per directory, e.g. containers of another project.
	extra map[string][][3]string
}

func newFakeCompose() *fakeCompose {
	fc := &fakeCompose{
		states:  map[string]map[string]string{},
		failRun: map[string]int{},
		extra:   map[string][][3]string{},
	}
	fc.Fake = &shelltest.Fake{ExecFunc: fc.exec}
	return fc
}

func (fc *fakeCompose) set(dir, service, state string) {
	if fc.states[dir] == nil {
		fc.states[dir] = map[string]string{}
	}
	fc.states[dir][service] = state
}

func (fc *fakeCompose) exec(cmd shell.Command) (shell.Result, error) {
	fields := strings.Fields(cmd.Line)
	if len(fields) < 2 || fields[0] != "docker-compose" {
		return shell.Result{}, nil
	}
	args := fields[2:]
	switch fields[1] {
	case "ps":
		return shell.Result{Stdout: fc.psTable(cmd.Dir)}, nil
	case "up":
		if fc.failUp {
			for _, svc := range args[1:] {
				fc.set(cmd.Dir, svc, "Exit 1")
			}
			return shell.Result{Status: 1, Stderr: "ERROR: boom"}, nil
		}
		for _, svc := range args[1:] {
			fc.set(cmd.Dir, svc, "Up")
		}
	case "stop":
		for _, svc := range args {
			fc.set(cmd.Dir, svc, "Exit 0")
		}
	case "down":
		delete(fc.states, cmd.Dir)
	case "run":
		// run --rm <container> ...
		if code := fc.failRun[args[1]]; code != 0 {
			return shell.Result{Status: code, Stderr: "migration failed"}, nil
		}
	}
	return shell.Result{}, nil
}

func (fc *fakeCompose) psTable(dir string) string {
	project := filepath.Base(dir)
	var rows [][3]string
	services := make([]string, 0, len(fc.states[dir]))
	for svc := range fc.states[dir] {
		services = append(services, svc)
	}
	sort.Strings(services)
	for _, svc := range services {
		rows = append(rows, [3]string{project + "_" + svc + "_1", "entrypoint.sh", fc.states[dir][svc]})
	}
	rows = append(rows, fc.extra[dir]...)
	return renderPS(rows)
}

// renderPS renders rows as an unwrapped `docker-compose ps` table.
func renderPS(rows [][3]string) string {
	header := [3]string{"Name", "Command", "State"}
	widths := [3]int{}
	for _, row := range append([][3]string{header}, rows...) {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	line := func(row [3]string) string {
		var b strings.Builder
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+3))
			}
		}
		return strings.TrimRight(b.String(), " ")
	}

	out := []string{line(header), strings.Repeat("-", widths[0]+widths[1]+widths[2]+6)}
	for _, row := range rows {
		out = append(out, line(row))
	}
	return strings.Join(out, "\n") + "\n"
}

// writeComposeProject creates dir/<name>/docker-compose.yml and returns the directory.
func writeComposeProject(t *testing.T, name, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker-compose.yml"), []byte(content), 0o644))
	return dir
}

const shopCompose = `
services:
  php:
    image: php:8
  nginx:
    image: nginx
  db:
    image: postgres
  database:
    image: mysql
  cache:
    container_name: shop-redis
    image: redis
`
