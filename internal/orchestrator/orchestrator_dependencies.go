package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDependencyCycle is returned when environments depend on each other in a loop.
var ErrDependencyCycle = errors.New("dependency cycle")

// visitPath is the chain of environments currently being traversed.
type visitPath []string

// enter returns the path extended with name, or an error naming the cycle
// when name is already on the path.
func (p visitPath) enter(name string) (visitPath, error) {
	for i, visited := range p {
		if visited == name {
			cycle := append(append([]string(nil), p[i:]...), name)
			return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(cycle, " -> "))
		}
	}
	next := make(visitPath, len(p), len(p)+1)
	copy(next, p)
	return append(next, name), nil
}
