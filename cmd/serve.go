package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/drivebox/internal/models"
	"github.com/desertthunder/drivebox/internal/server"
	"github.com/desertthunder/drivebox/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the drive proxy HTTP server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	flow, err := r.ensureFlow()
	if err != nil {
		return err
	}

	storage, err := r.ensureStorage()
	if err != nil {
		return err
	}

	var transfers models.Repository[*models.Transfer]
	if !cmd.Bool("no-ledger") {
		repo, err := r.openLedger()
		if err != nil {
			// The proxy is useful without history; log and continue.
			r.logger.Warn("transfer ledger unavailable", "error", err)
		} else {
			transfers = repo
		}
	}

	router := server.NewBasicRouter()
	router.Use(
		server.Recover(r.logger),
		server.Logging(r.logger),
		server.RateLimit(r.config.Server.RateLimit),
	)
	router.Handler(server.NewAuthHandler(flow, r.logger))
	router.Handler(server.NewFilesHandler(server.FilesHandlerOpts{
		Storage:   storage,
		Store:     r.store,
		Transfers: transfers,
		Logger:    r.logger,
		MaxBody:   r.config.MaxBodyBytes(),
	}))
	router.Handler(web.NewStaticHandler())

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	return nil
}
