package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/vango-dev/helm/pkg/router"
)

func matchCmd() *cobra.Command {
	var sensitive, strict bool

	cmd := &cobra.Command{
		Use:   "match <pattern> <path>",
		Short: "Match a path against a route pattern",
		Long: `Compile a route pattern and match a path against it.

Prints the compiled expression and the captured parameters as JSON.
The query string of the path is ignored and the rest is percent-decoded.

Examples:
  helm match '/user/:name' /user/jack
  helm match '/file/:name.:ext' /file/report.pdf
  helm match --strict '/docs/' /docs`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.OutOrStdout(), args[0], args[1], sensitive, strict)
		},
	}

	cmd.Flags().BoolVar(&sensitive, "sensitive", false, "Match case sensitively")
	cmd.Flags().BoolVar(&strict, "strict", false, "Make a trailing slash significant")

	return cmd
}

type matchResult struct {
	Pattern    string            `json:"pattern"`
	Path       string            `json:"path"`
	Regexp     string            `json:"regexp"`
	Match      bool              `json:"match"`
	Params     map[string]string `json:"params"`
	Positional []string          `json:"positional"`
}

func runMatch(w io.Writer, pattern, path string, sensitive, strict bool) error {
	var opts []router.RouteOption
	if sensitive {
		opts = append(opts, router.CaseSensitive())
	}
	if strict {
		opts = append(opts, router.Strict())
	}

	route, err := router.NewRoute(pattern, opts...)
	if err != nil {
		return err
	}

	params := &router.Params{}
	res := matchResult{
		Pattern: pattern,
		Path:    path,
		Regexp:  route.String(),
		Match:   route.Match(path, params),
	}
	res.Params = params.Named()
	res.Positional = params.Positional()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
