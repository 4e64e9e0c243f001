// Package main runs the webhook receiver as a standalone HTTP server.
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

	"github.com/rs/cors"
	"go.uber.org/zap"

	"fillout-webhook/internal/app"
	"fillout-webhook/internal/config"
	"fillout-webhook/internal/metrics"
	"fillout-webhook/internal/middleware"
	"fillout-webhook/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel, cfg.Stage); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	a, err := app.New(ctx, cfg, m)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:           newRouter(a, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.SupabaseTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", srv.Addr),
			zap.String("webhook", fmt.Sprintf("http://localhost:%s/api/webhook/fillout", cfg.Port)),
			zap.String("health", fmt.Sprintf("http://localhost:%s/api/health", cfg.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newRouter mounts the webhook, health and metrics routes behind CORS and the
// request middleware.
func newRouter(a *app.App, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/webhook/fillout", a.Webhook)
	mux.Handle("/api/health", a.Health)
	mux.Handle("/health", a.Health)
	if a.Metrics != nil {
		mux.Handle("/metrics", a.Metrics.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", "Authorization"},
		OptionsSuccessStatus: http.StatusOK,
		// Pre-flights reach the route handlers, which answer with fixed
		// header lists instead of echoing the request.
		OptionsPassthrough: true,
	})

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(c.Handler(mux))
}
