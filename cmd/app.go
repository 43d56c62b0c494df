package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lighter/internal/config"
	"lighter/internal/docker"
	"lighter/internal/environment"
	"lighter/internal/orchestrator"
	"lighter/internal/reporting"
	"lighter/internal/shell"
	"lighter/pkg/logging"
)

// For mocking in tests
var (
	newExecutor = func(cfg shell.Config) shell.Executor { return shell.NewBash(cfg) }
	newEngine   = func() (docker.Engine, error) { return docker.NewClient() }
)

// app is what the environment commands work with, built from the config file.
type app struct {
	configPath string
	config     config.LighterConfig
	executor   shell.Executor
	engine     docker.Engine
	registry   *environment.Registry
	orch       *orchestrator.Orchestrator
	out        io.Writer
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file without creating any environment.
func loadConfig() (string, config.LighterConfig, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return "", config.LighterConfig{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", config.LighterConfig{}, err
	}
	logging.Debug("Config", "loaded %d environment(s) from %s", len(cfg.Environments), path)
	return path, cfg, nil
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	executor := newExecutor(shell.Config{PreExec: cfg.Shell.PreExec})
	engine, err := newEngine()
	if err != nil {
		return nil, err
	}

	registry, err := environment.NewRegistry(cfg.Environments, environment.Dependencies{
		Shell:  executor,
		Engine: engine,
	})
	if err != nil {
		_ = engine.Close()
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	return &app{
		configPath: path,
		config:     cfg,
		executor:   executor,
		engine:     engine,
		registry:   registry,
		orch:       orchestrator.New(registry, reporting.NewConsoleReporter(out)),
		out:        out,
	}, nil
}

func (a *app) Close() {
	if err := a.engine.Close(); err != nil {
		logging.Debug("CLI", "closing docker client: %v", err)
	}
}

// withApp adapts a function using the app to a cobra RunE.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}
