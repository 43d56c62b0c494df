package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"lighter/pkg/logging"
)

// githubRepoSlug is the repository releases are looked up in, unless the
// config file or --repository names another one.
var githubRepoSlug = "joostvanveelen/lighter"

var repositoryFlag string

func newSelfUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update lighter to the latest version",
		Long: `Checks for the latest release of lighter on GitHub and, when it is newer
than the running version, downloads it and replaces the current executable.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
	cmd.Flags().StringVar(&repositoryFlag, "repository", "", "GitHub repository (owner/name) to update from")
	return cmd
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return errors.New("cannot self-update a development version")
	}

	ctx := context.Background()
	var out io.Writer = os.Stdout
	if cmd != nil {
		out = cmd.OutOrStdout()
		if cmd.Context() != nil {
			ctx = cmd.Context()
		}
	}

	slug := updateRepository()
	fmt.Fprintf(out, "Checking %s for updates (current version %s)...\n", slug, currentVersion)

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(slug))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s could not be found in %s", currentVersion, slug)
	}

	if latest.LessOrEqual(currentVersion) {
		fmt.Fprintf(out, "Current version (%s) is the latest.\n", currentVersion)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	logging.Debug("CLI", "updating %s from %s", exe, latest.AssetURL)

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}
	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}

// updateRepository picks the flag, then the config file, then the built-in slug.
func updateRepository() string {
	if repositoryFlag != "" {
		return repositoryFlag
	}
	if _, cfg, err := loadConfig(); err == nil && cfg.SelfUpdate.Repository != "" {
		return cfg.SelfUpdate.Repository
	}
	return githubRepoSlug
}
