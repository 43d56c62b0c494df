// Package dockertest provides an in-memory docker.Engine for tests.
package dockertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"lighter/internal/docker"
)

// Container is a running container of the fake engine.
type Container struct {
	ID    string
	Name  string
	Image string
}

// Engine keeps networks and running containers in memory and records calls.
// The Err hooks, when set, are returned by the matching method.
type Engine struct {
	mu         sync.Mutex
	Networks   map[string]bool
	Containers []Container
	Runs       []docker.ContainerSpec
	Calls      []string

	CreateNetworkErr error
	RunContainerErr  error
	nextID           int
}

// New returns an empty fake engine.
func New() *Engine {
	return &Engine{Networks: map[string]bool{}}
}

func (e *Engine) record(call string) {
	e.Calls = append(e.Calls, call)
}

func (e *Engine) NetworkExists(_ context.Context, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("NetworkExists " + name)
	return e.Networks[name], nil
}

func (e *Engine) CreateNetwork(_ context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("CreateNetwork " + name)
	if e.CreateNetworkErr != nil {
		return e.CreateNetworkErr
	}
	e.Networks[name] = true
	return nil
}

func (e *Engine) RemoveNetwork(_ context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("RemoveNetwork " + name)
	delete(e.Networks, name)
	return nil
}

func (e *Engine) FindRunningContainer(_ context.Context, match string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("FindRunningContainer " + match)
	for _, c := range e.Containers {
		if strings.Contains(c.Image, match) || strings.Contains(c.Name, match) {
			return c.ID, nil
		}
	}
	return "", nil
}

func (e *Engine) RunContainer(_ context.Context, spec docker.ContainerSpec) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("RunContainer " + spec.Name)
	if e.RunContainerErr != nil {
		return "", e.RunContainerErr
	}
	e.nextID++
	id := fmt.Sprintf("c%d", e.nextID)
	e.Runs = append(e.Runs, spec)
	e.Containers = append(e.Containers, Container{ID: id, Name: spec.Name, Image: spec.Image})
	return id, nil
}

func (e *Engine) StopContainer(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("StopContainer " + id)
	kept := e.Containers[:0]
	for _, c := range e.Containers {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	e.Containers = kept
	return nil
}

func (e *Engine) Close() error { return nil }

var _ docker.Engine = (*Engine)(nil)
