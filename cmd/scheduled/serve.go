package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/api"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/mw"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/notification"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/service"
)

// limiterIdle is how long a client's token bucket is kept after its last request.
const limiterIdle = 10 * time.Minute

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := wire(opts)
			if err != nil {
				return err
			}
			defer c.Close()
			return serve(commandContext(cmd), c)
		},
	}
}

func serve(parent context.Context, c *components) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := c.cfg
	logger := c.logger

	webpushOptions := c.webpushOptions()
	var notifier service.Notifier
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Warn("VAPID keys are not configured, push notifications are disabled")
	} else {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, c.local, webpushOptions, logger.Named("push"))
		pool.Start(ctx)
		notifier = pool
	}

	svc := c.service(notifier)
	sessionTTL := time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute
	go svc.RunPruner(ctx, sessionTTL, time.Minute)

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go limiter.Run(ctx, limiterIdle, time.Minute)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	handler := api.NewHandler(api.Deps{
		Availability:  c.availability,
		Meetings:      c.meetings,
		Subscriptions: c.local,
		Schedule:      svc,
		Webpush:       webpushOptions,
		Cache:         cache.New(cacheTTL, 2*cacheTTL),
		Logger:        logger.Named("api"),
	})
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        cacheTTL,
		Limiter:         limiter,
	})
	if cfg.Server.RequestIPHeader != "" {
		router.RemoteIPHeaders = []string{cfg.Server.RequestIPHeader}
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping services")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}
