package environment

import (
	"fmt"

	"lighter/pkg/logging"
)

// Registry holds the environments in registration order.
type Registry struct {
	environments []Environment
	byName       map[string]Environment
	groups       map[string]*sisterGroup
}

// Add appends env. Compose environments sharing a path become sisters.
func (r *Registry) Add(env Environment) error {
	if r.byName == nil {
		r.byName = map[string]Environment{}
		r.groups = map[string]*sisterGroup{}
	}
	if _, exists := r.byName[env.Name()]; exists {
		return fmt.Errorf("environment %q is defined twice", env.Name())
	}

	if c, ok := env.(*Compose); ok {
		if g, ok := r.groups[c.Path()]; ok {
			c.joinGroup(g)
			g.invalidate()
			logging.Debug("Registry", "%s shares %s with %d other environment(s)", c.Name(), c.Path(), len(g.members)-1)
		} else {
			r.groups[c.Path()] = c.group
		}
	}

	r.environments = append(r.environments, env)
	r.byName[env.Name()] = env
	return nil
}

// ByName returns the environment with the exact given name.
func (r *Registry) ByName(name string) (Environment, error) {
	env, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return env, nil
}

// All returns every environment in registration order.
func (r *Registry) All() []Environment {
	return append([]Environment(nil), r.environments...)
}

// Names returns the environment names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.environments))
	for _, env := range r.environments {
		names = append(names, env.Name())
	}
	return names
}

// Resolve looks up each name. An empty list resolves to every environment.
func (r *Registry) Resolve(names []string) ([]Environment, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	envs := make([]Environment, 0, len(names))
	for _, name := range names {
		env, err := r.ByName(name)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// ReverseDependencies returns the environments that list env as a dependency,
// in registration order.
func (r *Registry) ReverseDependencies(env Environment) []Environment {
	var dependents []Environment
	for _, candidate := range r.environments {
		for _, dep := range candidate.Dependencies() {
			if dep == env.Name() {
				dependents = append(dependents, candidate)
				break
			}
		}
	}
	return dependents
}
