package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "github.com/99minutos/delivery-dispatch/docs"
	"github.com/99minutos/delivery-dispatch/internal/api"
	"github.com/99minutos/delivery-dispatch/internal/infrastructure/queue"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, location workers and reconciler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if a.cfg.ZonesFile != "" {
		if err := a.seedZones(ctx, a.cfg.ZonesFile); err != nil {
			return err
		}
	}

	locations := queue.NewDispatcher(a.cfg.Tracking.Workers, a.tracker, a.log)

	e := api.NewRouter(api.Deps{
		Log:          a.log,
		JWTSecret:    a.cfg.JWTSecret,
		Auth:         a.auth,
		Deliveries:   a.deliveries,
		Agents:       a.agents,
		Zones:        a.zones,
		Feed:         a.feed,
		Locations:    locations,
		HealthChecks: a.checks,
		Swagger:      !a.cfg.IsProduction(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info().
			Str("port", a.cfg.Port).
			Str("store", a.cfg.StoreDriver).
			Str("tracking_feed", a.cfg.TrackingFeed).
			Msg("http server listening")
		if err := e.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info().Msg("shutting down http server")
		return e.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return locations.Run(gctx)
	})
	g.Go(func() error {
		return a.reconciler.Run(gctx, a.cfg.ReconcileInterval)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info().Msg("server stopped")
	return nil
}
