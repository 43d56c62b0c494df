package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"lighter/internal/color"
	"lighter/pkg/logging"
)

var (
	configPath string
	debugMode  bool
	logLevel   string
	theme      string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lighter",
	Short: "Start, stop and inspect local development environments",
	Long: `lighter manages local development environments built from docker-compose
projects, a shared docker network and a traefik proxy. Environments declare
dependencies on each other and are started and stopped in dependency order.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. a failing environment)
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitForCLI(cliLogLevel(), cmd.ErrOrStderr())

		switch theme {
		case "dark":
			color.Initialize(true)
		case "light":
			color.Initialize(false)
		}
	},
}

// cliLogLevel returns the level from --log-level, --debug wins over it.
func cliLogLevel() logging.LogLevel {
	if debugMode {
		return logging.LevelDebug
	}
	return logging.ParseLevel(logLevel)
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "lighter version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is $LIGHTER_CONFIG or ~/.config/lighter/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "auto", "Color theme: auto, dark or light")

	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newRestartCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newRebuildCmd())
	rootCmd.AddCommand(newExecCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newEnvironmentCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
