package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rowanvale/maildraft/internal"
	"github.com/rowanvale/maildraft/internal/completion"
	"github.com/rowanvale/maildraft/internal/compose"
	"github.com/rowanvale/maildraft/internal/credentials"
	"github.com/rowanvale/maildraft/internal/dispatch"
	"github.com/rowanvale/maildraft/internal/handler"
	"github.com/rowanvale/maildraft/internal/middleware"
	"github.com/rowanvale/maildraft/internal/relay"
	"github.com/rowanvale/maildraft/internal/router"
	"github.com/rowanvale/maildraft/internal/routes"
	"github.com/rowanvale/maildraft/internal/scheduler"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Completion provider is optional: without a key, generation is rejected
	// as unconfigured and rewrite/suggest run in degraded mode.
	var provider completion.Client
	if cfg.Groq.APIKey != "" {
		provider = completion.NewGroqClient(cfg.Groq.APIKey, cfg.Groq.Model)
		logger.Info("Completion provider initialized", "model", cfg.Groq.Model)
	} else {
		logger.Warn("GROQ_API_KEY not set; drafting runs in degraded mode")
	}

	// Relay credentials live in memory only and arrive via /api/setup-gmail.
	store := credentials.NewStore()
	sender := relay.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, logger)
	logger.Info("SMTP relay configured", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

	sched := scheduler.New(logger)

	composeService := compose.NewService(provider, logger)
	dispatchService := dispatch.NewService(store, sender, sched, logger)

	// Rate limiting applies uniformly to every endpoint.
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})

	metrics := middleware.NewMetrics("maildraft")

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env != "prod" {
		securityConfig.HSTSMaxAge = 0
	}

	r := router.New(
		router.Recovery(logger),
		middleware.SecurityHeaders(securityConfig),
		router.CORS(cfg.AllowedOrigins),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		limiter.Middleware,
		metrics.Middleware,
		router.Logger(logger),
	)

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		Compose:     handler.NewComposeHandler(composeService, logger),
		Credentials: handler.NewCredentialsHandler(store, logger),
		Dispatch:    handler.NewDispatchHandler(dispatchService, sched, logger),
		Metrics:     metrics,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting dispatch server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Pending scheduled sends are dropped on restart; say so on the way out.
	if pending := countPending(sched); pending > 0 {
		logger.Warn("Shutting down with pending scheduled sends; they will be dropped", "count", pending)
	}
	sched.Stop()
	limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func countPending(sched *scheduler.Scheduler) int {
	n := 0
	for _, t := range sched.List() {
		if t.State == scheduler.StatePending {
			n++
		}
	}
	return n
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
