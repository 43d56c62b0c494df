package orchestrator

import (
	"context"
	"fmt"

	"lighter/internal/environment"
	"lighter/internal/reporting"
	"lighter/pkg/logging"
)

// Registry resolves environments and their dependents.
type Registry interface {
	ByName(name string) (environment.Environment, error)
	Resolve(names []string) ([]environment.Environment, error)
	ReverseDependencies(env environment.Environment) []environment.Environment
}

// Orchestrator starts, stops, restarts and builds environments.
type Orchestrator struct {
	registry Registry
	reporter reporting.Reporter
}

// New creates an orchestrator. A nil reporter discards progress output.
func New(registry Registry, reporter reporting.Reporter) *Orchestrator {
	if reporter == nil {
		reporter = &reporting.Recorder{}
	}
	return &Orchestrator{registry: registry, reporter: reporter}
}

// BuildOptions control Build.
type BuildOptions struct {
	// Restart restarts environments that were running before the build.
	Restart bool
	// SkipInit skips the init containers after a restart.
	SkipInit bool
}

func (o *Orchestrator) report(action reporting.Action, phase reporting.Phase, env environment.Environment, err error) {
	o.reporter.Report(reporting.Update{
		Action:      action,
		Phase:       phase,
		Environment: env.Name(),
		Description: env.Description(),
		Err:         err,
	})
}

// StartAll starts the named environments, or all of them when names is empty.
func (o *Orchestrator) StartAll(ctx context.Context, names []string) ([]environment.Environment, error) {
	envs, err := o.registry.Resolve(names)
	if err != nil {
		return nil, err
	}
	var started []environment.Environment
	for _, env := range envs {
		s, err := o.Start(ctx, env)
		started = append(started, s...)
		if err != nil {
			return started, err
		}
	}
	return started, nil
}

// StopAll stops the named environments, or all of them when names is empty.
func (o *Orchestrator) StopAll(ctx context.Context, names []string) ([]environment.Environment, error) {
	envs, err := o.registry.Resolve(names)
	if err != nil {
		return nil, err
	}
	var stopped []environment.Environment
	for _, env := range envs {
		s, err := o.Stop(ctx, env)
		stopped = append(stopped, s...)
		if err != nil {
			return stopped, err
		}
	}
	return stopped, nil
}

// RestartAll restarts the named environments, or all of them when names is empty.
func (o *Orchestrator) RestartAll(ctx context.Context, names []string) error {
	envs, err := o.registry.Resolve(names)
	if err != nil {
		return err
	}
	for _, env := range envs {
		if _, err := o.Restart(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

// BuildAll builds the named environments, or all of them when names is
// empty. Environments that cannot be built are skipped.
func (o *Orchestrator) BuildAll(ctx context.Context, names []string, opts BuildOptions) error {
	envs, err := o.registry.Resolve(names)
	if err != nil {
		return err
	}
	for _, env := range envs {
		if _, ok := environment.AsBuilder(env); !ok {
			logging.Debug("Orchestrator", "skipping build of %s, not buildable", env.Name())
			continue
		}
		if err := o.Build(ctx, env, opts); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) dependency(env environment.Environment, name string) (environment.Environment, error) {
	dep, err := o.registry.ByName(name)
	if err != nil {
		return nil, fmt.Errorf("dependency of %q: %w", env.Name(), err)
	}
	return dep, nil
}
