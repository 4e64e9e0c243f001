// Package app wires configuration into the store, pipeline and handlers
// shared by the server and Lambda entry points.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fillout-webhook/internal/config"
	"fillout-webhook/internal/handlers"
	"fillout-webhook/internal/metrics"
	"fillout-webhook/internal/normalizer"
	"fillout-webhook/internal/services/database"
	"fillout-webhook/internal/services/intake"
	s3service "fillout-webhook/internal/services/s3"
	"fillout-webhook/internal/services/ses"
	"fillout-webhook/internal/services/store"
	"fillout-webhook/internal/services/supabase"
	"fillout-webhook/internal/utils"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config    *config.Config
	Store     store.Store
	Metrics   *metrics.Metrics
	Processor *intake.Processor
	Webhook   *handlers.WebhookHandler
	Health    *handlers.HealthHandler
}

// New opens the configured store and builds the pipeline and handlers.
// m may be nil when metrics are not exposed.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*App, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st = m.InstrumentStore(st)

	opts, err := pipelineOptions(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	processor := intake.NewProcessor(
		normalizer.New(normalizer.Options{DefaultCountry: cfg.DefaultCountry}),
		st,
		cfg.Variant(),
		opts...,
	)

	utils.GetLogger().Info("Webhook pipeline ready",
		zap.String("backend", cfg.StoreBackend),
		zap.String("event_variant", cfg.EventVariant),
		zap.Bool("archive", cfg.ArchiveEnabled()),
		zap.Bool("notifications", cfg.NotificationsEnabled()),
	)

	return &App{
		Config:    cfg,
		Store:     st,
		Metrics:   m,
		Processor: processor,
		Webhook:   handlers.NewWebhookHandler(processor, m),
		Health:    handlers.NewHealthHandler(st),
	}, nil
}

// OpenStore returns the store selected by STORE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.DatabaseURL, database.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return database.NewStore(db), nil

	case config.BackendMemory:
		utils.GetLogger().Warn("Using in-memory store, rows are lost on exit")
		return store.NewMemory(), nil

	case config.BackendREST, "":
		return supabase.NewStore(supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseTimeout)), nil

	default:
		return nil, fmt.Errorf("open store: %w", config.ErrInvalidBackend)
	}
}

func pipelineOptions(ctx context.Context, cfg *config.Config) ([]intake.Option, error) {
	var opts []intake.Option

	if cfg.ArchiveEnabled() {
		archiver, err := s3service.NewService(ctx, cfg.ArchiveBucket, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("init archiver: %w", err)
		}
		opts = append(opts, intake.WithArchiver(archiver))
	}

	if cfg.NotificationsEnabled() {
		notifier, err := ses.NewService(ctx, cfg.SESSenderEmail, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("init notifier: %w", err)
		}
		opts = append(opts, intake.WithNotifier(notifier))
	}

	return opts, nil
}

// Close releases the store.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}
