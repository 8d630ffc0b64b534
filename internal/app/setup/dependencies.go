package setup

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/LavaJover/affiliate-aggregator/internal/config"
	"github.com/LavaJover/affiliate-aggregator/internal/delivery/grpcapi"
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	publisher "github.com/LavaJover/affiliate-aggregator/internal/infrastructure/kafka"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/metrics"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/notifier"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/postgres"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/postgres/repository"
)

type Dependencies struct {
	Config       *config.AggregatorConfig
	Logger       *slog.Logger
	DB           *gorm.DB
	Registry     *prometheus.Registry
	Metrics      *metrics.IngestionMetrics
	Publisher    *publisher.DefaultKafkaPublisher
	Callback     *notifier.CallbackNotifier
	Health       *grpcapi.HealthHandler
	Repositories *Repositories
}

type Repositories struct {
	ProgramRepo domain.ProgramRepository
}

// InitializeDependencies opens the database and builds the shared
// infrastructure. Publisher and Callback stay nil unless configured.
func InitializeDependencies(cfg *config.AggregatorConfig, logger *slog.Logger) (*Dependencies, error) {
	db, err := postgres.Open(cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return NewDependencies(cfg, logger, db), nil
}

// NewDependencies builds everything on top of an already prepared database.
func NewDependencies(cfg *config.AggregatorConfig, logger *slog.Logger, db *gorm.DB) *Dependencies {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Registry: registry,
		Metrics:  metrics.NewIngestionMetrics(registry),
		Health:   grpcapi.NewHealthHandler(logger),
		Repositories: &Repositories{
			ProgramRepo: repository.NewDefaultProgramRepository(db),
		},
	}

	if cfg.Kafka.Enabled() {
		deps.Publisher = publisher.NewDefaultKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info("ingestion events enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	if cfg.Callback.Enabled() {
		deps.Callback = notifier.NewCallbackNotifier(cfg.Callback.URL, cfg.Callback.Timeout, logger)
		logger.Info("ingestion callbacks enabled", "url", cfg.Callback.URL)
	}
	return deps
}

// Close releases the publisher and the database pool.
func (d *Dependencies) Close() error {
	var errs []error
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
