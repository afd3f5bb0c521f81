package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/barcode"
	"github.com/lehigh-university-libraries/shelfscan/internal/cataloging"
	"github.com/lehigh-university-libraries/shelfscan/internal/handlers"
	"github.com/lehigh-university-libraries/shelfscan/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web page for scanning barcodes",
		Long: `Starts the Home Library Scanner web page.

Each browser gets its own library, kept in memory until it is ended from the
page or sits idle for SHELFSCAN_SESSION_TTL.`,
		Example: `  # Start server on the port from SHELFSCAN_PORT (default 8888)
  shelfscan serve

  # Start server on custom port
  shelfscan serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			provider, err := newProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			store := storage.New()
			service := cataloging.NewService(barcode.NewDetector(), provider)
			handler := handlers.New(store, service, cfg.MaxUploadBytes())

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go evictIdleSessions(cmd.Context(), store, cfg.SessionTTL)

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Home Library Scanner available", "addr", addr, "url", "http://localhost"+addr, "provider", provider.Name())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped", "sessions", store.Len())
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (overrides SHELFSCAN_PORT)")

	return cmd
}

// evictIdleSessions drops abandoned libraries until ctx is done
func evictIdleSessions(ctx context.Context, store *storage.SessionStore, ttl time.Duration) {
	interval := ttl / 4
	if interval > 10*time.Minute {
		interval = 10 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.EvictIdle(ttl, now); n > 0 {
				slog.Info("Evicted idle sessions", "count", n, "remaining", store.Len())
			}
		}
	}
}
