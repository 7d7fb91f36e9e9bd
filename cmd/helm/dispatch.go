package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/helm/internal/bridge"
	"github.com/vango-dev/helm/internal/config"
	"github.com/vango-dev/helm/internal/errors"
	"github.com/vango-dev/helm/pkg/middleware"
	"github.com/vango-dev/helm/pkg/router"
	"github.com/vango-dev/helm/pkg/source"
)

func dispatchCmd() *cobra.Command {
	var (
		location string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "dispatch <path>...",
		Short: "Dispatch paths through the manifest routes",
		Long: `Dispatch each path through the manifest routes, in order, and print
the routes that matched. Redirects are followed.

Paths are given without the manifest prefix.

Examples:
  helm dispatch /user/jack
  helm dispatch /old/5 /about --json
  helm dispatch /user/jack --log-level=info`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadManifest(cmd.Context(), location)
			if err != nil {
				return err
			}
			results, err := runDispatch(cfg, args)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printDispatch(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringVarP(&location, "config", "c", "", "Manifest file, directory or s3://bucket/key")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

type dispatchResult struct {
	Path    string         `json:"path"`
	Final   string         `json:"final"`
	Matches []bridge.Match `json:"matches"`
}

func runDispatch(cfg *config.Config, paths []string) ([]dispatchResult, error) {
	if len(cfg.Routes) == 0 {
		return nil, errors.New("H040").
			WithSuggestion("Add routes to " + cfg.Location())
	}

	src := source.NewMemory("")
	r := router.New(src, cfg.RouterOptions()...)
	defer r.Stop()

	r.Use(middleware.Recover(nil), middleware.Logger(nil))

	var matches []bridge.Match
	err := cfg.Register(r, func(rt config.Route) router.HandlerFunc {
		return bridge.RouteHandler(r, rt, func(m bridge.Match) {
			matches = append(matches, m)
		})
	})
	if err != nil {
		return nil, err
	}

	results := make([]dispatchResult, 0, len(paths))
	for _, p := range paths {
		matches = []bridge.Match{}
		r.SetPath(p, router.Silent())
		r.Dispatch("")
		results = append(results, dispatchResult{Path: p, Final: r.GetPath(), Matches: matches})
	}
	return results, nil
}

func printDispatch(w io.Writer, results []dispatchResult) {
	for _, res := range results {
		fmt.Fprintln(w, res.Path)
		if len(res.Matches) == 0 {
			info(w, "(no route matched)")
		}
		for _, m := range res.Matches {
			line := fmt.Sprintf("\033[32m✓\033[0m %s  %s", m.Name, m.Pattern)
			if p := formatParams(m); p != "" {
				line += "  " + p
			}
			if m.Redirect != "" {
				line += "  → " + m.Redirect
			}
			info(w, "%s", line)
		}
		if res.Final != res.Path {
			info(w, "now at %s", res.Final)
		}
	}
}

func formatParams(m bridge.Match) string {
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(m.Params)) {
		parts = append(parts, k+"="+m.Params[k])
	}
	for i, v := range m.Positional {
		parts = append(parts, fmt.Sprintf("$%d=%s", i, v))
	}
	return strings.Join(parts, " ")
}
