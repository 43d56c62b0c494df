package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lighter/internal/color"
	"lighter/internal/compose"
	"lighter/internal/config"
	"lighter/internal/shell"
	"lighter/pkg/logging"
)

const (
	optionNone = "[none]"
	optionAll  = "[all]"
	optionSkip = "[skip/continue]"
)

func newEnvironmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "environment",
		Aliases: []string{"env"},
		Short:   "Manage the configured environments",
		Long: `Manage the environments in the configuration file.

Available commands:
  list     - List the configured environments
  add      - Add an environment
  remove   - Remove environments from the configuration`,
	}
	cmd.AddCommand(newEnvironmentListCmd())
	cmd.AddCommand(newEnvironmentAddCmd())
	cmd.AddCommand(newEnvironmentRemoveCmd())
	return cmd
}

func newEnvironmentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, def := range cfg.Environments {
				fmt.Fprintf(out, "Environment '%s': %s\n", color.Title.Render(def.EnvName()), def.EnvDescription())
				printField(out, "type", string(def.Type))
				printField(out, "dependencies", def.Dependencies...)
				printField(out, "path", def.Path)
				printField(out, "containers", def.Containers...)
				for _, ic := range def.InitContainers {
					printField(out, "initContainer", strings.TrimSpace(ic.Container+" "+strings.Join(ic.Arguments, " ")))
				}
				printField(out, "shell", def.Shell)
				printField(out, "networkName", def.NetworkName)
				printField(out, "image", def.Image)
				printField(out, "containerName", def.ContainerName)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func printField(out io.Writer, name string, values ...string) {
	switch len(values) {
	case 0:
		return
	case 1:
		if values[0] == "" {
			return
		}
		fmt.Fprintf(out, "%s: %s\n", color.Success.Render(name), values[0])
	default:
		fmt.Fprintf(out, "%s: [ %s ]\n", color.Success.Render(name), strings.Join(values, ", "))
	}
}

// addFlags allow a non-interactive add. Prompts are only shown when --type is empty.
type addFlags struct {
	envType        string
	name           string
	description    string
	dependencies   []string
	path           string
	containers     []string
	initContainers []string
	shell          string
	networkName    string
}

func newEnvironmentAddCmd() *cobra.Command {
	var flags addFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an environment",
		Long: `Add an environment to the configuration.

Without --type the definition is asked for interactively. With --type the
flags describe the environment completely, e.g.

  lighter environment add --type docker-compose --name shop --path ~/src/shop \
    --containers php,nginx --init-container "migrate --force" --depends-on traefik`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var def config.EnvironmentDefinition
			if flags.envType != "" {
				def, err = definitionFromFlags(flags)
			} else {
				def, err = askDefinition(cmd, newPrompter(), cfg)
			}
			if err != nil {
				return err
			}

			if err := cfg.AddEnvironment(def); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Environment %s added to %s\n", def.EnvName(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.envType, "type", "", "Environment type (network, traefik, docker-compose)")
	cmd.Flags().StringVar(&flags.name, "name", "", "Environment name, without whitespace")
	cmd.Flags().StringVar(&flags.description, "description", "", "Environment description")
	cmd.Flags().StringSliceVar(&flags.dependencies, "depends-on", nil, "Names of environments this one depends on")
	cmd.Flags().StringVar(&flags.path, "path", "", "Directory of the docker-compose project")
	cmd.Flags().StringSliceVar(&flags.containers, "containers", nil, "Services to manage, all when empty")
	cmd.Flags().StringArrayVar(&flags.initContainers, "init-container", nil, "Init container with its arguments, repeatable")
	cmd.Flags().StringVar(&flags.shell, "shell", "", "Service used by exec and run")
	cmd.Flags().StringVar(&flags.networkName, "network-name", "", "Docker network name")
	return cmd
}

func definitionFromFlags(flags addFlags) (config.EnvironmentDefinition, error) {
	def := config.EnvironmentDefinition{
		Type:         config.EnvironmentType(flags.envType),
		Name:         flags.name,
		Description:  flags.description,
		Dependencies: flags.dependencies,
		NetworkName:  flags.networkName,
	}
	switch def.Type {
	case config.TypeNetwork, config.TypeTraefik:
	case config.TypeDockerCompose:
		path, err := resolveProjectPath(flags.path)
		if err != nil {
			return def, err
		}
		def.Path = path
		def.Containers = flags.containers
		def.Shell = flags.shell
		for _, spec := range flags.initContainers {
			fields := strings.Fields(spec)
			if len(fields) == 0 {
				continue
			}
			ic := config.InitContainer{Container: fields[0]}
			if len(fields) > 1 {
				ic.Arguments = []string{strings.Join(fields[1:], " ")}
			}
			def.InitContainers = append(def.InitContainers, ic)
		}
	default:
		return def, fmt.Errorf("unknown environment type %q", flags.envType)
	}
	return def, nil
}

func askDefinition(cmd *cobra.Command, p prompter, cfg config.LighterConfig) (config.EnvironmentDefinition, error) {
	var def config.EnvironmentDefinition

	types := make([]string, 0, len(config.KnownTypes))
	for _, t := range config.KnownTypes {
		types = append(types, string(t))
	}
	envType, err := p.Select("Environment type?", types, string(config.TypeDockerCompose))
	if err != nil {
		return def, err
	}
	def.Type = config.EnvironmentType(envType)

	if def.Name, err = p.Input("Environment name (no whitespace):", config.ValidateName); err != nil {
		return def, err
	}
	if def.Description, err = p.Input("Environment description:", nil); err != nil {
		return def, err
	}

	if names := cfg.EnvironmentNames(); len(names) > 0 {
		deps, err := p.MultiSelect("Environment dependencies:", append([]string{optionNone}, names...))
		if err != nil {
			return def, err
		}
		def.Dependencies = without(deps, optionNone)
	}

	switch def.Type {
	case config.TypeNetwork:
		if def.NetworkName, err = p.Input("Network name:", nil); err != nil {
			return def, err
		}
	case config.TypeDockerCompose:
		if err := askComposeDefinition(cmd, p, cfg, &def); err != nil {
			return def, err
		}
	}
	return def, nil
}

func askComposeDefinition(cmd *cobra.Command, p prompter, cfg config.LighterConfig, def *config.EnvironmentDefinition) error {
	var services []string
	for {
		given, err := p.Input("Environment path:", nil)
		if err != nil {
			return err
		}
		path, err := resolveProjectPath(given)
		if err == nil {
			services, err = composeServices(cmd, cfg, path)
		}
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), color.Failure.Render(err.Error()))
			continue
		}
		def.Path = path
		break
	}

	containers, err := p.MultiSelect("Which containers need to be started?", append([]string{optionAll}, services...))
	if err != nil {
		return err
	}
	if contains(containers, optionAll) {
		containers = services
	}
	def.Containers = containers

	for {
		name, err := p.Select("Add init container (run after a rebuild to initialize the project):", append([]string{optionSkip}, services...), optionSkip)
		if err != nil {
			return err
		}
		if name == optionSkip {
			break
		}
		arguments, err := p.Input("Init container arguments:", nil)
		if err != nil {
			return err
		}
		ic := config.InitContainer{Container: name}
		if arguments = strings.TrimSpace(arguments); arguments != "" {
			ic.Arguments = []string{arguments}
		}
		def.InitContainers = append(def.InitContainers, ic)
	}

	shellOptions := append([]string{optionNone}, def.Containers...)
	shellContainer, err := p.Select("Container used by exec and run:", shellOptions, optionNone)
	if err != nil {
		return err
	}
	if shellContainer != optionNone {
		def.Shell = shellContainer
	}
	return nil
}

// composeServices asks docker-compose for the resolved configuration of the
// project and returns its service names.
func composeServices(cmd *cobra.Command, cfg config.LighterConfig, path string) ([]string, error) {
	executor := newExecutor(shell.Config{PreExec: cfg.Shell.PreExec})
	res, err := executor.Exec(cmd.Context(), shell.Command{Line: "docker-compose config", Dir: path})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("error while retrieving docker-compose configuration: %s", strings.TrimSpace(res.Stderr+res.Stdout))
	}
	file, err := compose.ParseFile([]byte(res.Stdout))
	if err != nil {
		return nil, err
	}
	return file.ServiceNames(), nil
}

// For mocking in tests
var osGetwd = os.Getwd
var osUserHomeDir = os.UserHomeDir

// resolveProjectPath accepts an absolute path or a path relative to the
// working directory or, failing that, the home directory.
func resolveProjectPath(given string) (string, error) {
	given = strings.TrimSpace(given)
	if given == "" {
		return "", errors.New("the path cannot be empty")
	}

	var candidates []string
	if filepath.IsAbs(given) {
		candidates = []string{given}
	} else {
		if wd, err := osGetwd(); err == nil {
			candidates = append(candidates, filepath.Join(wd, given))
		}
		if home, err := osUserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, given))
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			resolved, err := filepath.EvalSymlinks(candidate)
			if err != nil {
				return "", err
			}
			logging.Debug("CLI", "resolved path %s to %s", given, resolved)
			return resolved, nil
		}
	}
	return "", fmt.Errorf("path '%s' does not exist", given)
}

func newEnvironmentRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [environment...]",
		Short: "Remove environments from the configuration",
		Long: `Remove environments from the configuration. The files of the environment
are not removed, just the reference to it. Without arguments the
environments to remove are asked for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig()
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				if len(cfg.Environments) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No environments configured.")
					return nil
				}
				names, err = newPrompter().MultiSelect("Select environment(s) to remove:", cfg.EnvironmentNames())
				if err != nil {
					return err
				}
			}

			for _, name := range names {
				if err := cfg.RemoveEnvironment(name); err != nil {
					return err
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", strings.Join(names, ", "))
			return nil
		},
	}
}

func without(values []string, drop string) []string {
	var out []string
	for _, v := range values {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
