package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetenv = os.Getenv

const (
	userConfigDir  = ".config/lighter"
	configFileName = "config.yaml"

	// PathEnvVar overrides the default configuration path.
	PathEnvVar = "LIGHTER_CONFIG"
)

var (
	ErrDuplicateEnvironment = errors.New("environment already exists")
	ErrInvalidName          = errors.New("invalid environment name")
	ErrEnvironmentNotFound  = errors.New("environment not configured")
)

// DefaultPath returns the configuration file path, honouring LIGHTER_CONFIG.
func DefaultPath() (string, error) {
	if p := osGetenv(PathEnvVar); p != "" {
		return p, nil
	}
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// Load reads the configuration file. A missing file yields an empty configuration.
func Load(path string) (LighterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LighterConfig{Environments: []EnvironmentDefinition{}}, nil
		}
		return LighterConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	var cfg LighterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return LighterConfig{}, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	if cfg.Environments == nil {
		cfg.Environments = []EnvironmentDefinition{}
	}
	return cfg, nil
}

// Save writes the configuration file, creating its directory when needed.
func Save(path string, cfg LighterConfig) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// ValidateName checks that an environment name is usable on the command line.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: the environment name cannot be empty", ErrInvalidName)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: the environment name cannot contain whitespace", ErrInvalidName)
	}
	return nil
}

// EnvironmentNames returns the configured environment names in file order.
func (c LighterConfig) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for _, def := range c.Environments {
		names = append(names, def.EnvName())
	}
	return names
}

// AddEnvironment appends a definition after validating its name.
func (c *LighterConfig) AddEnvironment(def EnvironmentDefinition) error {
	if err := ValidateName(def.EnvName()); err != nil {
		return err
	}
	for _, existing := range c.Environments {
		if existing.EnvName() == def.EnvName() {
			return fmt.Errorf("%w: %s", ErrDuplicateEnvironment, def.EnvName())
		}
	}
	c.Environments = append(c.Environments, def)
	return nil
}

// RemoveEnvironment deletes every definition with the given name.
// The files of the environment itself are left alone.
func (c *LighterConfig) RemoveEnvironment(name string) error {
	kept := c.Environments[:0]
	removed := false
	for _, def := range c.Environments {
		if def.EnvName() == name {
			removed = true
			continue
		}
		kept = append(kept, def)
	}
	c.Environments = kept
	if !removed {
		return fmt.Errorf("%w: %s", ErrEnvironmentNotFound, name)
	}
	return nil
}
