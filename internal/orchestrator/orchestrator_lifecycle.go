package orchestrator

import (
	"context"
	"fmt"

	"lighter/internal/environment"
	"lighter/internal/reporting"
	"lighter/pkg/logging"
)

// Start starts env after its dependencies. It returns the environments it
// actually started, dependencies first. A fully started env is left alone.
func (o *Orchestrator) Start(ctx context.Context, env environment.Environment) ([]environment.Environment, error) {
	return o.start(ctx, env, nil)
}

func (o *Orchestrator) start(ctx context.Context, env environment.Environment, path visitPath) ([]environment.Environment, error) {
	path, err := path.enter(env.Name())
	if err != nil {
		return nil, err
	}

	fully, err := env.IsStarted(ctx, true)
	if err != nil {
		return nil, err
	}
	if fully {
		logging.Debug("Orchestrator", "%s is already started", env.Name())
		return nil, nil
	}

	var started []environment.Environment
	for _, name := range env.Dependencies() {
		dep, err := o.dependency(env, name)
		if err != nil {
			return started, err
		}
		s, err := o.start(ctx, dep, path)
		started = append(started, s...)
		if err != nil {
			return started, err
		}
	}

	if err := o.startOne(ctx, env); err != nil {
		return started, err
	}
	return append(started, env), nil
}

// startOne starts env and retries once, after a stop, when containers failed.
func (o *Orchestrator) startOne(ctx context.Context, env environment.Environment) error {
	o.report(reporting.ActionStart, reporting.PhaseBegin, env, nil)

	failed, err := startAndCheck(ctx, env)
	if err == nil && failed {
		logging.Warn("Orchestrator", "%s has failed containers, retrying once", env.Name())
		o.report(reporting.ActionRetry, reporting.PhaseBegin, env, nil)
		if err = env.Stop(ctx); err == nil {
			failed, err = startAndCheck(ctx, env)
		}
		if err == nil && failed {
			err = fmt.Errorf("%w: %q failed to start after a retry", environment.ErrStartFailure, env.Name())
		}
	}
	if err != nil {
		o.report(reporting.ActionStart, reporting.PhaseFailed, env, err)
		return err
	}

	o.report(reporting.ActionStart, reporting.PhaseDone, env, nil)
	return nil
}

func startAndCheck(ctx context.Context, env environment.Environment) (bool, error) {
	if err := env.Start(ctx); err != nil {
		return false, err
	}
	return env.HasError(ctx)
}

// Stop stops every environment depending on env, then env itself. It returns
// the environments it actually stopped, dependents first. An env with nothing
// running is left alone.
func (o *Orchestrator) Stop(ctx context.Context, env environment.Environment) ([]environment.Environment, error) {
	return o.stop(ctx, env, nil)
}

func (o *Orchestrator) stop(ctx context.Context, env environment.Environment, path visitPath) ([]environment.Environment, error) {
	path, err := path.enter(env.Name())
	if err != nil {
		return nil, err
	}

	started, err := env.IsStarted(ctx, false)
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, nil
	}

	var stopped []environment.Environment
	for _, dependent := range o.registry.ReverseDependencies(env) {
		s, err := o.stop(ctx, dependent, path)
		stopped = append(stopped, s...)
		if err != nil {
			return stopped, err
		}
	}

	if err := o.stopOne(ctx, env); err != nil {
		return stopped, err
	}
	return append(stopped, env), nil
}

func (o *Orchestrator) stopOne(ctx context.Context, env environment.Environment) error {
	o.report(reporting.ActionStop, reporting.PhaseBegin, env, nil)
	if err := env.Stop(ctx); err != nil {
		o.report(reporting.ActionStop, reporting.PhaseFailed, env, err)
		return err
	}
	o.report(reporting.ActionStop, reporting.PhaseDone, env, nil)
	return nil
}

// Restart stops env with its dependents and starts them again in reverse
// stop order. It returns the environments started. An env that is not
// running is reported and left alone.
func (o *Orchestrator) Restart(ctx context.Context, env environment.Environment) ([]environment.Environment, error) {
	running, err := env.IsStarted(ctx, false)
	if err != nil {
		return nil, err
	}
	if !running {
		o.reporter.Notice("%s is not running.", env.Description())
		return nil, nil
	}

	stopped, err := o.Stop(ctx, env)
	if err != nil {
		return nil, err
	}

	var started []environment.Environment
	for i := len(stopped) - 1; i >= 0; i-- {
		s, err := o.Start(ctx, stopped[i])
		started = append(started, s...)
		if err != nil {
			return started, err
		}
	}
	return started, nil
}

// Build builds env. With opts.Restart a running env is stopped and started
// again, its dependents keep running, and its init containers run afterwards
// unless opts.SkipInit is set.
func (o *Orchestrator) Build(ctx context.Context, env environment.Environment, opts BuildOptions) error {
	builder, ok := environment.AsBuilder(env)
	if !ok {
		return fmt.Errorf("%w: %q cannot be built", environment.ErrBuildFailure, env.Name())
	}

	o.report(reporting.ActionBuild, reporting.PhaseBegin, env, nil)
	if err := builder.Build(ctx); err != nil {
		o.report(reporting.ActionBuild, reporting.PhaseFailed, env, err)
		return err
	}
	o.report(reporting.ActionBuild, reporting.PhaseDone, env, nil)

	if !opts.Restart {
		return nil
	}
	running, err := env.IsStarted(ctx, false)
	if err != nil || !running {
		return err
	}

	if err := o.stopOne(ctx, env); err != nil {
		return err
	}
	if _, err := o.Start(ctx, env); err != nil {
		return err
	}

	initializer, ok := environment.AsInitializer(env)
	if !ok || opts.SkipInit {
		return nil
	}
	o.report(reporting.ActionInitialize, reporting.PhaseBegin, env, nil)
	if err := initializer.RunInitContainers(ctx); err != nil {
		o.report(reporting.ActionInitialize, reporting.PhaseFailed, env, err)
		return err
	}
	o.report(reporting.ActionInitialize, reporting.PhaseDone, env, nil)
	return nil
}
