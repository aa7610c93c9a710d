package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/config"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/handler"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/telemetry"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Apply pending postgres migrations before serving."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELEndpoint, cfg.ServiceName)
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(flushCtx); err != nil {
					logger.Warn("flush traces", "error", err)
				}
			}()

			if c.Bool("migrate") && cfg.StoreDriver == config.DriverPostgres {
				if err := migrateUp(ctx, cfg, logger); err != nil {
					return err
				}
			}

			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			svcs, err := newServices(store, cfg, logger)
			if err != nil {
				return err
			}
			h := handler.New(svcs.events, svcs.users, svcs.comments, store, logger)

			srv := &http.Server{
				Addr:         fmt.Sprintf(":%s", cfg.Port),
				Handler:      handler.NewRouter(h, handler.RouterConfig{CORSOrigin: cfg.CORSOrigin, ServiceName: cfg.ServiceName}),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("server listening", "addr", srv.Addr, "store", cfg.StoreDriver)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("graceful shutdown failed: %w", err)
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
}

