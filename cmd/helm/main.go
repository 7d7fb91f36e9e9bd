package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/helm/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┬  ┌┬┐
  ╠═╣├┤ │  │││
  ╩ ╩└─┘┴─┘┴ ┴
`

// Error output formats for --error-format.
const (
	errorFormatPretty  = "pretty"
	errorFormatCompact = "compact"
	errorFormatJSON    = "json"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		format, _ := rootCmd.PersistentFlags().GetString("error-format")
		reportError(os.Stderr, err, format)
		os.Exit(1)
	}
}

// reportError prints err in the given format. Errors from outside Helm, such
// as cobra's usage errors, are wrapped as H042 first.
func reportError(w io.Writer, err error, format string) {
	he := errors.FromError(err, "H042")
	switch format {
	case errorFormatJSON:
		fmt.Fprintln(w, he.FormatJSON())
	case errorFormatCompact:
		fmt.Fprintln(w, he.FormatCompact())
	default:
		errors.Fprint(w, he)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel    string
		noColor     bool
		errorFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "helm",
		Short: "Hash path routing for single page apps",
		Long: `Helm routes location hashes through an ordered chain of handlers.

Routes are declared in a manifest (helm.json or helm.yaml, local or
in S3). The CLI checks patterns, lists and dispatches manifest routes,
and serves them to browsers over a WebSocket bridge:

  • Express-style patterns with named, optional and regex params
  • Ordered continuation passing: a route stops or continues the chain
  • Redirects and hashbang prefixes
  • Prometheus metrics and OpenTelemetry spans for every dispatch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				errors.DisableColors()
			}
			switch errorFormat {
			case errorFormatPretty, errorFormatCompact, errorFormatJSON:
			default:
				return errors.Newf(errors.CategoryCLI, "invalid error format %q", errorFormat).
					WithSuggestion("Use pretty, compact or json")
			}
			return setupLogging(cmd.ErrOrStderr(), logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&errorFormat, "error-format", errorFormatPretty, "Error output (pretty, compact, json)")

	rootCmd.AddCommand(
		matchCmd(),
		routesCmd(),
		dispatchCmd(),
		serveCmd(),
		initCmd(),
		versionCmd(),
	)

	return rootCmd
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return errors.Newf(errors.CategoryCLI, "invalid log level %q", level).
			WithSuggestion("Use debug, info, warn or error")
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// printBanner prints the Helm ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
