package compose

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileNames are the compose file names looked up in an environment path, in order.
var FileNames = []string{"docker-compose.yaml", "docker-compose.yml"}

// ErrFileNotFound is returned when no compose file exists in the directory.
var ErrFileNotFound = errors.New("docker-compose yaml file not found")

// File is the subset of a compose file lighter cares about.
type File struct {
	Services map[string]ServiceConfig `yaml:"services"`
}

// ServiceConfig is the subset of a compose service definition lighter cares about.
type ServiceConfig struct {
	ContainerName string `yaml:"container_name,omitempty"`
	Image         string `yaml:"image,omitempty"`
}

// ServiceNames returns the declared service names, sorted.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Locate returns the path of the compose file inside dir.
func Locate(dir string) (string, error) {
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrFileNotFound, dir)
}

// LoadFile locates and parses the compose file inside dir.
func LoadFile(dir string) (*File, error) {
	path, err := Locate(dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseFile(data)
}

// ParseFile parses compose file contents.
func ParseFile(data []byte) (*File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("docker compose configuration parse error: empty file")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("docker compose configuration parse error: %w", err)
	}
	if f.Services == nil {
		f.Services = map[string]ServiceConfig{}
	}
	return &f, nil
}
