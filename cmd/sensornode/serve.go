package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"esphub/sensornode/internal/api"
	"esphub/sensornode/internal/telemetry"
	"esphub/sensornode/internal/wifi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Boot the node and serve the sensor HTTP API",
	Long: `Run the firmware path: bootstrap first (runtime patches, then the
default logger), then the WiFi access point, the periodic sensor updater,
and the HTTP API on the configured port. Shuts down cleanly on SIGTERM or
SIGINT.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Bootstrap runs to completion on this goroutine before anything else
	// is spawned. On failure there is no retry — surface the error and let
	// the supervisor (watchdog territory) restart the process. Logging may
	// not be up yet, so the error goes out on stderr.
	if err := app.seq.Run(); err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	telemetry.SetLevel(cfg.Telemetry.LogLevel)

	slog.Info("sensornode booted", "state", app.seq.State().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry is best-effort: a missing collector must never block a node.
	// When OTLPEndpoint is empty, it is disabled entirely.
	if cfg.Telemetry.OTLPEndpoint == "" {
		slog.Info("telemetry disabled (no endpoint configured)")
	} else {
		tp, err := telemetry.InitProvider(
			ctx,
			cfg.Telemetry.OTLPEndpoint,
			cfg.Telemetry.ServiceName,
			cfg.Telemetry.OTLPInsecure,
		)
		if err != nil {
			slog.Warn("telemetry provider init failed — continuing without", "err", err)
		} else {
			defer func() {
				shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if shutErr := tp.Shutdown(shutCtx); shutErr != nil {
					slog.Warn("telemetry shutdown error", "err", shutErr)
				}
			}()
		}
	}

	ap, err := wifi.StartAccessPoint(cfg.WiFi)
	if err != nil {
		return fmt.Errorf("wifi: %w", err)
	}
	_ = ap // the netif stays up for the process lifetime

	router := api.NewRouter(app.store, app.seq.Ready, cfg.Telemetry.ServiceName)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	defer app.publisher.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.updater.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("node stopped cleanly")
	return nil
}
