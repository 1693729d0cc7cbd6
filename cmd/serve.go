package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCmd starts the HTTP and WebSocket API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve projections over HTTP and WebSocket",
	Long: `Start the casetrack HTTP API.

Endpoints:
  GET /api/v1/locations
  GET /api/v1/scenarios
  GET /api/v1/records?location=NSW
  GET /api/v1/projection?location=NSW&horizon=14&rate=estimated
  GET /api/v1/ws?location=NSW     (send selection events, receive projections)
  GET /healthz, /readyz, /metrics

The case table is reloaded every --refresh interval.

Examples:
  casetrack serve --addr :8050 --refresh 6h`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, newSource(), zap.L())
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(ctx)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	},
}
