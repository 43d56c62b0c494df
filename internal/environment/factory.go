package environment

import (
	"fmt"

	"lighter/internal/config"
	"lighter/internal/docker"
	"lighter/internal/shell"
)

// Dependencies are the collaborators environments are built with.
type Dependencies struct {
	Shell  shell.Executor
	Engine docker.Engine
}

// New creates the environment described by def.
func New(def config.EnvironmentDefinition, deps Dependencies) (Environment, error) {
	if err := config.ValidateName(def.EnvName()); err != nil {
		return nil, err
	}
	switch def.Type {
	case config.TypeDockerCompose:
		if def.Path == "" {
			return nil, fmt.Errorf("%w: environment %q has no path", ErrConfiguration, def.EnvName())
		}
		return NewCompose(def, deps.Shell), nil
	case config.TypeNetwork:
		return NewNetwork(def, deps.Engine), nil
	case config.TypeTraefik:
		return NewProxy(def, deps.Engine), nil
	default:
		return nil, fmt.Errorf("%w: %q for environment %q", ErrUnknownType, def.Type, def.EnvName())
	}
}

// NewRegistry creates a registry holding an environment for every definition,
// in configuration order.
func NewRegistry(defs []config.EnvironmentDefinition, deps Dependencies) (*Registry, error) {
	r := &Registry{}
	for _, def := range defs {
		env, err := New(def, deps)
		if err != nil {
			return nil, err
		}
		if err := r.Add(env); err != nil {
			return nil, err
		}
	}
	return r, nil
}
