// Package environment implements the environments lighter manages: docker
// compose projects, a docker network and the traefik proxy container.
package environment

import (
	"context"

	"lighter/internal/compose"
	"lighter/internal/config"
)

// Status is the state of a single managed container or resource.
type Status int

const (
	StatusStopped Status = iota
	StatusStarted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusStarted:
		return "started"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StatusFromState maps the raw state column of `docker-compose ps`.
// "Up..." is started, exactly "Exit 0" is stopped, anything else failed.
func StatusFromState(state string) Status {
	service := compose.Service{State: state}
	switch {
	case service.Running():
		return StatusStarted
	case service.ExitedCleanly():
		return StatusStopped
	default:
		return StatusFailed
	}
}

// Environment is a named, startable unit with dependencies on other environments.
type Environment interface {
	Name() string
	Description() string
	Dependencies() []string

	// Start brings the environment up. Dependencies are handled by the caller.
	Start(ctx context.Context) error
	// Stop tears the environment down. It does nothing when nothing is running.
	Stop(ctx context.Context) error
	// IsStarted reports whether any (fully=false) or every (fully=true)
	// managed container is started.
	IsStarted(ctx context.Context, fully bool) (bool, error)
	// HasError reports whether any managed container failed.
	HasError(ctx context.Context) (bool, error)
	// Status returns the status per managed container.
	Status(ctx context.Context) (map[string]Status, error)
}

// Builder is implemented by environments that can build their images.
type Builder interface {
	Build(ctx context.Context) error
}

// Initializer is implemented by environments with one-off init containers.
type Initializer interface {
	HasInitContainers() bool
	RunInitContainers(ctx context.Context) error
}

// Sheller is implemented by environments that can run commands in a container.
type Sheller interface {
	CanShell() bool
	// Run executes command attached to the terminal and returns its exit code.
	Run(ctx context.Context, command string) (int, error)
}

// AsBuilder returns the build capability of env, if any.
func AsBuilder(env Environment) (Builder, bool) {
	b, ok := env.(Builder)
	return b, ok
}

// AsInitializer returns the init container capability of env. Environments
// without init containers report false.
func AsInitializer(env Environment) (Initializer, bool) {
	i, ok := env.(Initializer)
	if !ok || !i.HasInitContainers() {
		return nil, false
	}
	return i, true
}

// AsSheller returns the shell capability of env. Environments without a
// designated shell container report false.
func AsSheller(env Environment) (Sheller, bool) {
	s, ok := env.(Sheller)
	if !ok || !s.CanShell() {
		return nil, false
	}
	return s, true
}

// Base holds the identity shared by every environment type.
type Base struct {
	name         string
	description  string
	dependencies []string
}

// NewBase creates the shared identity from a configuration entry.
func NewBase(def config.EnvironmentDefinition) Base {
	deps := make([]string, len(def.Dependencies))
	copy(deps, def.Dependencies)
	return Base{
		name:         def.EnvName(),
		description:  def.EnvDescription(),
		dependencies: deps,
	}
}

func (b *Base) Name() string           { return b.name }
func (b *Base) Description() string    { return b.description }
func (b *Base) Dependencies() []string { return b.dependencies }

// singleStatus builds the status map of an environment backed by one resource.
func singleStatus(name string, started bool) map[string]Status {
	if started {
		return map[string]Status{name: StatusStarted}
	}
	return map[string]Status{name: StatusStopped}
}
