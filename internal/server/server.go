// Package server runs the HTTP API and the gRPC health server until the
// context is cancelled, then shuts both down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/stockpile/config"
	"github.com/shashiranjanraj/stockpile/internal/kernel"
	"github.com/shashiranjanraj/stockpile/pkg/app"
	"github.com/shashiranjanraj/stockpile/pkg/grpc"
	"github.com/shashiranjanraj/stockpile/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Run serves until ctx is done. It returns the first serve error, or nil
// after a clean shutdown.
func Run(ctx context.Context, a *app.App) error {
	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           kernel.NewHTTPKernel(a).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcSrv, err := grpc.Start(ctx, config.GRPCPort(), a.Ping)
	if err != nil {
		return err
	}
	defer grpcSrv.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server started", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: http: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
