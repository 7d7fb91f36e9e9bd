package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/helm/internal/config"
)

func routesCmd() *cobra.Command {
	var (
		location string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List manifest routes",
		Long: `List the routes of a manifest in dispatch order.

Examples:
  helm routes
  helm routes -c s3://my-bucket/helm.yaml
  helm routes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadManifest(cmd.Context(), location)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg.Routes)
			}
			printRoutes(cmd.OutOrStdout(), cfg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&location, "config", "c", "", "Manifest file, directory or s3://bucket/key")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print routes as JSON")

	return cmd
}

func printRoutes(w io.Writer, cfg *config.Config) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPATTERN\tACTION")
	for i, rt := range cfg.Routes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, rt.Name, rt.Pattern, action(rt))
	}
	tw.Flush()

	if cfg.Prefix != "" {
		fmt.Fprintf(w, "\nprefix %q\n", cfg.Prefix)
	}
}

func action(rt config.Route) string {
	switch {
	case rt.Redirect != "":
		return "redirect " + rt.Redirect
	case rt.Continue:
		return "continue"
	}
	return "stop"
}
