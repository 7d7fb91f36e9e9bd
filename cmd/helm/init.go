package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/helm/internal/config"
	"github.com/vango-dev/helm/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Create a starter manifest",
		Long: `Create a starter manifest. The format follows the file extension.

Examples:
  helm init
  helm init routes/helm.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "helm.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			return runInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing manifest")

	return cmd
}

func runInit(cmd *cobra.Command, path string, force bool) error {
	w := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil {
		if !force {
			return errors.Newf(errors.CategoryCLI, "%s already exists", path).
				WithSuggestion("Use --force to overwrite it")
		}
		warn(w, "Overwriting %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	cfg := starterManifest()
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	success(w, "Created %s", path)
	info(w, "Try: helm dispatch -c %s /user/ann", path)
	return nil
}

func starterManifest() *config.Config {
	cfg := config.New()
	cfg.Routes = []config.Route{
		{Pattern: "/", Name: "home"},
		{Pattern: "/user/:name", Name: "user"},
		{Pattern: "/old/*", Name: "legacy", Redirect: "/"},
		{Pattern: "*", Name: "not-found"},
	}
	return cfg
}
