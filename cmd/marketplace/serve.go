package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/marketplace/internal/httpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Error("shutdown_error", "error", err)
			}
		}()

		e := httpserver.New(logger, &httpserver.Deps{
			Catalog:   &httpserver.CatalogHTTP{Svc: a.catalog},
			Orders:    &httpserver.OrderHTTP{Svc: a.orders},
			Users:     &httpserver.UserHTTP{Svc: a.users},
			Dashboard: &httpserver.DashboardHTTP{Svc: a.dashboard},
			Metrics:   a.metrics,
			Ready:     a.ready,
			JWTSecret: cfg.JWTSecret,
		})

		srv := &http.Server{
			Addr:         cfg.Addr(),
			Handler:      e,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server started", "service", cfg.ServiceName, "addr", srv.Addr, "storage", cfg.StorageDriver)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}
