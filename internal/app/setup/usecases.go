package setup

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/affiliate-aggregator/internal/config"
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/metrics"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/networks/adtraction"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/networks/partnerads"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/networks/smartresponse"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/upstream"
	"github.com/LavaJover/affiliate-aggregator/internal/usecase"
)

type UseCases struct {
	IngestionUsecase usecase.IngestionUsecase
	ProgramUsecase   usecase.ProgramUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	pipeline := usecase.NewPipeline(deps.Repositories.ProgramRepo, deps.Logger)
	fetchers := initFetchers(deps.Config, pipeline, deps.Metrics, deps.Logger)

	ingestionUsecase, err := usecase.NewDefaultIngestionUsecase(deps.Logger, deps.Metrics, fetchers...)
	if err != nil {
		return nil, fmt.Errorf("ingestion usecase: %w", err)
	}
	ingestionUsecase.WithStatusReporter(deps.Health)
	if deps.Publisher != nil {
		ingestionUsecase.WithPublisher(deps.Publisher)
	}
	if deps.Callback != nil {
		ingestionUsecase.WithPublisher(deps.Callback)
	}

	return &UseCases{
		IngestionUsecase: ingestionUsecase,
		ProgramUsecase:   usecase.NewDefaultProgramUsecase(deps.Repositories.ProgramRepo, deps.Logger),
	}, nil
}

func initFetchers(cfg *config.AggregatorConfig, pipeline domain.IngestionPipeline, m *metrics.IngestionMetrics, logger *slog.Logger) []domain.ProgramFetcher {
	nets := cfg.Networks

	adtractionFetcher := adtraction.NewFetcher(
		adtraction.Config{
			BaseURL: nets.Adtraction.BaseURL,
			APIKey:  nets.Adtraction.APIKey,
		},
		newUpstreamClient(cfg.Upstream, nets.Adtraction.Timeout),
		pipeline,
		logger,
	)

	partnerAdsFetcher := partnerads.NewFetcher(
		partnerads.Config{
			XMLURL:     nets.PartnerAds.XMLURL,
			RetryDelay: nets.PartnerAds.RetryDelay,
			MaxRetries: nets.PartnerAds.MaxRetries,
		},
		newUpstreamClient(cfg.Upstream, nets.PartnerAds.Timeout),
		pipeline,
		logger,
	).OnRateLimit(func() {
		m.RecordRateLimitRetry(partnerads.Slug)
	})

	smartResponseFetcher := smartresponse.NewFetcher(
		smartresponse.Config{
			BaseURL:     nets.SmartResponse.BaseURL,
			APIKey:      nets.SmartResponse.APIKey,
			AffiliateID: nets.SmartResponse.AffiliateID,
		},
		newUpstreamClient(cfg.Upstream, nets.SmartResponse.Timeout),
		pipeline,
		logger,
	)

	return []domain.ProgramFetcher{adtractionFetcher, partnerAdsFetcher, smartResponseFetcher}
}

// Each network gets its own client and limiter.
func newUpstreamClient(cfg config.Upstream, timeout time.Duration) *upstream.Client {
	return upstream.NewClient(upstream.Options{
		Timeout:           timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		UserAgent:         cfg.UserAgent,
	})
}
