package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"lighter/internal/color"
	"lighter/internal/environment"
	"lighter/internal/orchestrator"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "start [environment...]",
		Aliases: []string{"on", "up"},
		Short:   "Start environments",
		Long: `Start the given environments, or every configured environment when none
is given. Dependencies are started first.`,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			_, err := a.orch.StartAll(cmd.Context(), args)
			return err
		}),
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stop [environment...]",
		Aliases: []string{"off", "down", "halt", "armageddon"},
		Short:   "Stop environments",
		Long: `Stop the given environments, or every configured environment when none
is given. Environments depending on a stopped environment are stopped first.`,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			_, err := a.orch.StopAll(cmd.Context(), args)
			return err
		}),
	}
}

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "restart [environment...]",
		Aliases: []string{"reload"},
		Short:   "Restart running environments",
		Long: `Restart the given running environments, or every running environment when
none is given. Dependent environments are restarted as well.`,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			return a.orch.RestartAll(cmd.Context(), args)
		}),
	}
}

func newBuildCmd() *cobra.Command {
	var opts orchestrator.BuildOptions
	cmd := &cobra.Command{
		Use:   "build [environment...]",
		Short: "Build environments",
		Long: `Build the images of the given environments, or of every environment when
none is given. With --restart, environments that were running are restarted
and their init containers are run.`,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			return a.orch.BuildAll(cmd.Context(), args, opts)
		}),
	}
	cmd.Flags().BoolVarP(&opts.Restart, "restart", "r", false, "Restart the environments if they were running")
	cmd.Flags().BoolVarP(&opts.SkipInit, "skip-init", "i", false, "Skip running the init containers when restarting")
	return cmd
}

func newRebuildCmd() *cobra.Command {
	var skipInit bool
	cmd := &cobra.Command{
		Use:   "rebuild [environment...]",
		Short: "Build environments and restart the running ones",
		Long:  `Same as build --restart.`,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			return a.orch.BuildAll(cmd.Context(), args, orchestrator.BuildOptions{Restart: true, SkipInit: skipInit})
		}),
	}
	cmd.Flags().BoolVarP(&skipInit, "skip-init", "i", false, "Skip running the init containers when restarting")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [environment...]",
		Short: "Show the status of environments",
		Long:  `Display the status of each container within the given environments, or all of them.`,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			envs, err := a.registry.Resolve(args)
			if err != nil {
				return err
			}
			for _, env := range envs {
				status, err := env.Status(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s (%s):\n", color.Title.Render(env.Description()), env.Name())
				for _, name := range sortedKeys(status) {
					word := status[name].String()
					fmt.Fprintf(a.out, "%s: %s\n", name, color.ForStatus(word).Render(word))
				}
				fmt.Fprintln(a.out)
			}
			return nil
		}),
	}
}

func sortedKeys(status map[string]environment.Status) []string {
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <environment>",
		Short: "Start a shell in an environment",
		Long:  `Start an interactive bash in the shell container of the environment.`,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			return runInEnvironment(cmd, a, args[0], "bash")
		}),
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <environment> <command...>",
		Short: "Run a command in an environment",
		Long: `Run a command in the shell container of the environment. Use -- to pass
flags to the command, e.g. lighter run shop -- composer install --no-dev`,
		Args: cobra.MinimumNArgs(2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			return runInEnvironment(cmd, a, args[0], strings.Join(args[1:], " "))
		}),
	}
}

func runInEnvironment(cmd *cobra.Command, a *app, name, command string) error {
	env, err := a.registry.ByName(name)
	if err != nil {
		return err
	}
	sheller, ok := environment.AsSheller(env)
	if !ok {
		return fmt.Errorf("%w: %s does not support a shell", environment.ErrShellUnsupported, env.Description())
	}
	code, err := sheller.Run(cmd.Context(), command)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("command exited with status %d", code)
	}
	return nil
}
