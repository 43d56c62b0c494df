// Package docker talks to the Docker Engine API for the environments that
// manage a single docker resource (a network or the proxy container).
package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/go-connections/nat"

	"lighter/pkg/logging"
)

// SocketPath is the docker socket mounted into containers that watch docker.
const SocketPath = "/var/run/docker.sock"

// ContainerSpec describes a container run by RunContainer.
type ContainerSpec struct {
	Name    string
	Image   string
	Network string
	// Ports are published on the same host port.
	Ports             []int
	Cmd               []string
	MountDockerSocket bool
	AutoRemove        bool
}

// Engine is the subset of the Docker API lighter needs.
type Engine interface {
	NetworkExists(ctx context.Context, name string) (bool, error)
	CreateNetwork(ctx context.Context, name string) error
	RemoveNetwork(ctx context.Context, name string) error
	// FindRunningContainer returns the ID of the first running container whose
	// image or name contains match, or "" when there is none.
	FindRunningContainer(ctx context.Context, match string) (string, error)
	RunContainer(ctx context.Context, spec ContainerSpec) (string, error)
	StopContainer(ctx context.Context, id string) error
	Close() error
}

// Client implements Engine with the Docker SDK.
type Client struct {
	cli *client.Client
}

// NewClient connects using the DOCKER_* environment variables.
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &Client{cli: cli}, nil
}

// NewClientWithSDK wraps an existing SDK client.
func NewClientWithSDK(cli *client.Client) *Client {
	return &Client{cli: cli}
}

// NetworkExists checks if a Docker network exists.
func (c *Client) NetworkExists(ctx context.Context, name string) (bool, error) {
	res, err := c.cli.NetworkInspect(ctx, name, network.InspectOptions{})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect network %q: %w", name, err)
	}
	// Inspect also matches on ID prefixes.
	return res.Name == name, nil
}

// CreateNetwork creates a bridge network.
func (c *Client) CreateNetwork(ctx context.Context, name string) error {
	_, err := c.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{"lighter.managed": "true"},
	})
	if err != nil {
		return fmt.Errorf("failed to create network %q: %w", name, err)
	}
	logging.Info("Docker", "network %s created", name)
	return nil
}

// RemoveNetwork removes a network. A missing network is not an error.
func (c *Client) RemoveNetwork(ctx context.Context, name string) error {
	if err := c.cli.NetworkRemove(ctx, name); err != nil {
		if errdefs.IsNotFound(err) {
			logging.Debug("Docker", "network %s not found, already removed", name)
			return nil
		}
		return fmt.Errorf("failed to remove network %q: %w", name, err)
	}
	logging.Info("Docker", "network %s removed", name)
	return nil
}

// FindRunningContainer searches the running containers by image and name.
func (c *Client) FindRunningContainer(ctx context.Context, match string) (string, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}
	for _, ctr := range containers {
		if strings.Contains(ctr.Image, match) {
			return ctr.ID, nil
		}
		for _, name := range ctr.Names {
			if strings.Contains(strings.TrimPrefix(name, "/"), match) {
				return ctr.ID, nil
			}
		}
	}
	return "", nil
}

// RunContainer creates and starts a container.
func (c *Client) RunContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	exposedPorts := make(nat.PortSet)
	portBindings := make(nat.PortMap)
	for _, port := range spec.Ports {
		containerPort := nat.Port(fmt.Sprintf("%d/tcp", port))
		exposedPorts[containerPort] = struct{}{}
		portBindings[containerPort] = []nat.PortBinding{{HostPort: fmt.Sprintf("%d", port)}}
	}

	hostConfig := &container.HostConfig{
		PortBindings: portBindings,
		AutoRemove:   spec.AutoRemove,
	}
	if spec.MountDockerSocket {
		hostConfig.Mounts = []mount.Mount{{
			Type:   mount.TypeBind,
			Source: SocketPath,
			Target: SocketPath,
		}}
	}

	var networkConfig *network.NetworkingConfig
	if spec.Network != "" {
		hostConfig.NetworkMode = container.NetworkMode(spec.Network)
		networkConfig = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{spec.Network: {}},
		}
	}

	resp, err := c.cli.ContainerCreate(ctx, &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Cmd,
		ExposedPorts: exposedPorts,
	}, hostConfig, networkConfig, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container %q: %w", spec.Name, err)
	}

	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container %q: %w", spec.Name, err)
	}
	logging.Info("Docker", "container %s started (%s)", spec.Name, resp.ID)
	return resp.ID, nil
}

// StopContainer stops a container.
func (c *Client) StopContainer(ctx context.Context, id string) error {
	timeout := 30
	if err := c.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to stop container %s: %w", id, err)
	}
	logging.Info("Docker", "container %s stopped", id)
	return nil
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.cli.Close()
}

var _ Engine = (*Client)(nil)
