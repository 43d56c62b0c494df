package environment

import (
	"context"
	"fmt"

	"lighter/internal/config"
	"lighter/internal/docker"
	"lighter/pkg/logging"
)

const (
	DefaultProxyImage         = "traefik:1.7-alpine"
	DefaultProxyContainerName = "router"

	// proxyMatch identifies an already running proxy by image or name.
	proxyMatch = "traefik"
)

var proxyArgs = []string{"--api", "--docker", "--docker.exposedbydefault=false"}

// Proxy manages the traefik reverse proxy container.
type Proxy struct {
	Base

	engine        docker.Engine
	image         string
	containerName string
	networkName   string

	started     *bool
	containerID string
}

// NewProxy creates a proxy environment.
func NewProxy(def config.EnvironmentDefinition, engine docker.Engine) *Proxy {
	p := &Proxy{
		Base:          NewBase(def),
		engine:        engine,
		image:         def.Image,
		containerName: def.ContainerName,
		networkName:   def.NetworkName,
	}
	if p.image == "" {
		p.image = DefaultProxyImage
	}
	if p.containerName == "" {
		p.containerName = DefaultProxyContainerName
	}
	if p.networkName == "" {
		p.networkName = DefaultNetworkName
	}
	return p
}

// ContainerSpec returns the container started by Start.
func (p *Proxy) ContainerSpec() docker.ContainerSpec {
	return docker.ContainerSpec{
		Name:              p.containerName,
		Image:             p.image,
		Network:           p.networkName,
		Ports:             []int{80, 8080},
		Cmd:               append([]string(nil), proxyArgs...),
		MountDockerSocket: true,
		AutoRemove:        true,
	}
}

func (p *Proxy) refresh(ctx context.Context) error {
	id, err := p.engine.FindRunningContainer(ctx, proxyMatch)
	if err != nil {
		return fmt.Errorf("environment %q: %w", p.Name(), err)
	}
	started := id != ""
	p.started = &started
	p.containerID = id
	return nil
}

// Start runs the proxy container unless a proxy is already running.
func (p *Proxy) Start(ctx context.Context) error {
	started, err := p.IsStarted(ctx, true)
	if err != nil || started {
		return err
	}
	id, err := p.engine.RunContainer(ctx, p.ContainerSpec())
	if err != nil {
		p.started = nil
		return fmt.Errorf("%w: %q: %w", ErrStartFailure, p.Name(), err)
	}
	started = true
	p.started = &started
	p.containerID = id
	logging.Debug("Proxy", "proxy container %s running as %s", p.containerName, id)
	return nil
}

// Stop stops the running proxy container. It is removed automatically.
func (p *Proxy) Stop(ctx context.Context) error {
	started, err := p.IsStarted(ctx, false)
	if err != nil || !started || p.containerID == "" {
		return err
	}
	if err := p.engine.StopContainer(ctx, p.containerID); err != nil {
		p.started = nil
		return fmt.Errorf("%w: %q: %w", ErrStopFailure, p.Name(), err)
	}
	stopped := false
	p.started = &stopped
	p.containerID = ""
	return nil
}

// IsStarted reports whether a proxy container is running. The answer is cached.
func (p *Proxy) IsStarted(ctx context.Context, _ bool) (bool, error) {
	if p.started == nil {
		if err := p.refresh(ctx); err != nil {
			return false, err
		}
	}
	return *p.started, nil
}

// HasError is always false.
func (p *Proxy) HasError(context.Context) (bool, error) { return false, nil }

// Status implements Environment.
func (p *Proxy) Status(ctx context.Context) (map[string]Status, error) {
	started, err := p.IsStarted(ctx, false)
	if err != nil {
		return nil, err
	}
	return singleStatus(p.Name(), started), nil
}

var _ Environment = (*Proxy)(nil)
