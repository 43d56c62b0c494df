// Package orchestrator drives environments through their lifecycle in
// dependency order.
//
// Starting an environment first starts its dependencies, depth first and in
// the order they are declared. Stopping an environment first stops every
// environment depending on it. Restart stops the environment together with
// its dependents and starts them again in reverse stop order, so each one
// comes back after the environments it depends on.
//
// All work is sequential. The first failure aborts the remaining steps of
// the invocation and is returned with the name of the offending environment.
//
// # Usage Example
//
//	registry, err := environment.NewRegistry(cfg.Environments, deps)
//	if err != nil {
//	    return err
//	}
//	orch := orchestrator.New(registry, reporting.NewConsoleReporter(nil))
//	if _, err := orch.StartAll(ctx, []string{"shop"}); err != nil {
//	    return err
//	}
//
// # State
//
// The orchestrator keeps no state of its own. Every decision is taken from
// what the environments report at that moment, so a run that was interrupted
// can simply be repeated.
package orchestrator
