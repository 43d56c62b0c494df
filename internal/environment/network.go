package environment

import (
	"context"
	"fmt"

	"lighter/internal/config"
	"lighter/internal/docker"
	"lighter/pkg/logging"
)

// DefaultNetworkName is used when no networkName is configured.
const DefaultNetworkName = "public"

// Network manages a single docker network.
type Network struct {
	Base

	engine      docker.Engine
	networkName string
	started     *bool
}

// NewNetwork creates a network environment.
func NewNetwork(def config.EnvironmentDefinition, engine docker.Engine) *Network {
	name := def.NetworkName
	if name == "" {
		name = DefaultNetworkName
	}
	return &Network{Base: NewBase(def), engine: engine, networkName: name}
}

// NetworkName returns the docker network name.
func (n *Network) NetworkName() string { return n.networkName }

func (n *Network) setStarted(v bool) { n.started = &v }

// Start creates the network unless it exists.
func (n *Network) Start(ctx context.Context) error {
	started, err := n.IsStarted(ctx, true)
	if err != nil || started {
		return err
	}
	if err := n.engine.CreateNetwork(ctx, n.networkName); err != nil {
		n.started = nil
		return fmt.Errorf("%w: %q: %w", ErrStartFailure, n.Name(), err)
	}
	n.setStarted(true)
	logging.Debug("Network", "network %s created for %s", n.networkName, n.Name())
	return nil
}

// Stop removes the network if it exists.
func (n *Network) Stop(ctx context.Context) error {
	started, err := n.IsStarted(ctx, false)
	if err != nil || !started {
		return err
	}
	if err := n.engine.RemoveNetwork(ctx, n.networkName); err != nil {
		n.started = nil
		return fmt.Errorf("%w: %q: %w", ErrStopFailure, n.Name(), err)
	}
	n.setStarted(false)
	return nil
}

// IsStarted reports whether the network exists. The answer is cached.
func (n *Network) IsStarted(ctx context.Context, _ bool) (bool, error) {
	if n.started == nil {
		exists, err := n.engine.NetworkExists(ctx, n.networkName)
		if err != nil {
			return false, fmt.Errorf("environment %q: %w", n.Name(), err)
		}
		n.setStarted(exists)
	}
	return *n.started, nil
}

// HasError is always false; a network either exists or it does not.
func (n *Network) HasError(context.Context) (bool, error) { return false, nil }

// Status implements Environment.
func (n *Network) Status(ctx context.Context) (map[string]Status, error) {
	started, err := n.IsStarted(ctx, false)
	if err != nil {
		return nil, err
	}
	return singleStatus(n.Name(), started), nil
}

var _ Environment = (*Network)(nil)
