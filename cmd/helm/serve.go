package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/helm/internal/bridge"
)

func serveCmd() *cobra.Command {
	var (
		location    string
		port        int
		host        string
		readTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve manifest routes to browsers",
		Long: `Serve the manifest routes to browsers over a WebSocket bridge.

Pages include the bridge script and listen for matches:

  <script src="http://localhost:8080/helm.js"></script>
  <script>
    window.addEventListener("helm:route", function (ev) {
      console.log(ev.detail.name, ev.detail.params);
    });
  </script>

Every connection gets its own router. Dispatch metrics are exposed at
the manifest's metrics path.

Examples:
  helm serve
  helm serve -c s3://my-bucket/helm.yaml --port=9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadManifest(ctx, location)
			if err != nil {
				return err
			}

			if port > 0 {
				cfg.Serve.Port = port
			}
			if host != "" {
				cfg.Serve.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printBanner(w)
			fmt.Fprintln(w, "  serve")
			fmt.Fprintln(w)
			info(w, "Manifest:  %s (%d routes)", cfg.Location(), len(cfg.Routes))
			info(w, "Script:    http://%s/helm.js", cfg.Address())
			info(w, "Socket:    ws://%s%s", cfg.Address(), cfg.Serve.SocketPath)
			if cfg.MetricsEnabled() {
				info(w, "Metrics:   http://%s%s", cfg.Address(), cfg.Serve.MetricsPath)
			} else {
				warn(w, "Metrics disabled")
			}
			fmt.Fprintln(w)

			s := bridge.New(cfg,
				bridge.WithLogger(slog.Default().With("component", "bridge")),
				bridge.WithReadTimeout(readTimeout),
			)
			if err := s.Run(ctx); err != nil {
				return err
			}

			fmt.Fprintln(w, "\n  Shut down.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&location, "config", "c", "", "Manifest file, directory or s3://bucket/key")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from manifest)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from manifest)")
	cmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "Close connections silent for this long (0 disables)")

	return cmd
}
