package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EnvironmentType selects the implementation backing an environment.
type EnvironmentType string

const (
	TypeNetwork       EnvironmentType = "network"
	TypeTraefik       EnvironmentType = "traefik"
	TypeDockerCompose EnvironmentType = "docker-compose"
)

// KnownTypes lists the environment types in the order they are offered to the user.
var KnownTypes = []EnvironmentType{TypeNetwork, TypeTraefik, TypeDockerCompose}

// LighterConfig is the top-level configuration structure for lighter.
type LighterConfig struct {
	Shell        ShellSettings           `yaml:"shell,omitempty"`
	SelfUpdate   SelfUpdateSettings      `yaml:"self-update,omitempty"`
	Environments []EnvironmentDefinition `yaml:"environments"`
}

// ShellSettings configures the command executor.
type ShellSettings struct {
	PreExec string `yaml:"preExec,omitempty"` // e.g. "source ~/.profile", joined to each command with &&
}

// SelfUpdateSettings configures the self-update command.
type SelfUpdateSettings struct {
	Repository string `yaml:"repository,omitempty"` // GitHub slug, e.g. "owner/lighter"
}

// EnvironmentDefinition is a single entry of the environments list.
// Only the fields relevant to Type are used.
type EnvironmentDefinition struct {
	Type         EnvironmentType `yaml:"type"`
	Name         string          `yaml:"name,omitempty"`        // Defaults to the type
	Description  string          `yaml:"description,omitempty"` // Defaults to the name
	Dependencies []string        `yaml:"dependencies,omitempty"`

	// Fields for Type = "docker-compose"
	Path           string          `yaml:"path,omitempty"`
	Containers     []string        `yaml:"containers,omitempty"` // Empty means every service of the compose file
	InitContainers []InitContainer `yaml:"initContainers,omitempty"`
	Shell          string          `yaml:"shell,omitempty"` // Container used by exec and run

	// Fields for Type = "network" and "traefik"
	NetworkName string `yaml:"networkName,omitempty"`

	// Fields for Type = "traefik"
	Image         string `yaml:"image,omitempty"`
	ContainerName string `yaml:"containerName,omitempty"`
}

// EnvName returns the configured name, falling back to the type.
func (d EnvironmentDefinition) EnvName() string {
	if d.Name != "" {
		return d.Name
	}
	return string(d.Type)
}

// EnvDescription returns the configured description, falling back to the name.
func (d EnvironmentDefinition) EnvDescription() string {
	if d.Description != "" {
		return d.Description
	}
	return d.EnvName()
}

// InitContainer is a one-off container run after a rebuild.
//
// In YAML it is either a bare service name or a mapping:
//
//	initContainers:
//	  - migrate
//	  - container: seed
//	    arguments: [--env, dev]
type InitContainer struct {
	Container string
	Arguments []string
}

type initContainerYAML struct {
	Container string    `yaml:"container"`
	Arguments yaml.Node `yaml:"arguments,omitempty"`
}

// UnmarshalYAML accepts both the bare string and the mapping form. Arguments
// may be a single string or a list.
func (ic *InitContainer) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		ic.Container = value.Value
		ic.Arguments = nil
		return nil
	case yaml.MappingNode:
		var raw initContainerYAML
		if err := value.Decode(&raw); err != nil {
			return err
		}
		ic.Container = raw.Container
		ic.Arguments = nil
		switch raw.Arguments.Kind {
		case 0:
		case yaml.ScalarNode:
			if raw.Arguments.Tag != "!!null" && raw.Arguments.Value != "" {
				ic.Arguments = []string{raw.Arguments.Value}
			}
		case yaml.SequenceNode:
			if err := raw.Arguments.Decode(&ic.Arguments); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: initContainers arguments must be a string or a list", raw.Arguments.Line)
		}
		return nil
	default:
		return fmt.Errorf("line %d: init container must be a string or a mapping", value.Line)
	}
}

// MarshalYAML writes the bare string form when there are no arguments.
func (ic InitContainer) MarshalYAML() (interface{}, error) {
	if len(ic.Arguments) == 0 {
		return ic.Container, nil
	}
	return struct {
		Container string   `yaml:"container"`
		Arguments []string `yaml:"arguments"`
	}{ic.Container, ic.Arguments}, nil
}
