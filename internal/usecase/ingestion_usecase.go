package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/sync/errgroup"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	publisher "github.com/LavaJover/affiliate-aggregator/internal/infrastructure/kafka"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/metrics"
)

type IngestionUsecase interface {
	Run(ctx context.Context, network string) (domain.IngestionOutcome, error)
	RunAll(ctx context.Context) map[string]domain.IngestionOutcome
	Networks() []string
}

// IngestionEventPublisher receives one event per finished run.
type IngestionEventPublisher interface {
	PublishIngestion(event publisher.IngestionEvent) error
}

type DefaultIngestionUsecase struct {
	fetchers   map[string]domain.ProgramFetcher
	slugs      []string
	metrics    *metrics.IngestionMetrics
	publishers []IngestionEventPublisher
	reporter   domain.IngestionStatusReporter
	logger     *slog.Logger
	runID      func() string
	now        func() time.Time
}

func NewDefaultIngestionUsecase(logger *slog.Logger, m *metrics.IngestionMetrics, fetchers ...domain.ProgramFetcher) (*DefaultIngestionUsecase, error) {
	runID, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("run id generator: %w", err)
	}

	uc := &DefaultIngestionUsecase{
		fetchers: make(map[string]domain.ProgramFetcher),
		metrics:  m,
		logger:   logger,
		runID:    runID,
		now:      time.Now,
	}
	for _, f := range fetchers {
		if err := uc.register(f); err != nil {
			return nil, err
		}
	}
	return uc, nil
}

// WithPublisher adds a sink for ingestion events. Sinks are called in the
// order they were added.
func (uc *DefaultIngestionUsecase) WithPublisher(p IngestionEventPublisher) *DefaultIngestionUsecase {
	uc.publishers = append(uc.publishers, p)
	return uc
}

// WithStatusReporter enables per network health reporting.
func (uc *DefaultIngestionUsecase) WithStatusReporter(r domain.IngestionStatusReporter) *DefaultIngestionUsecase {
	uc.reporter = r
	return uc
}

func (uc *DefaultIngestionUsecase) register(f domain.ProgramFetcher) error {
	for _, key := range []string{f.Slug(), f.Name()} {
		key = strings.ToLower(key)
		if existing, exists := uc.fetchers[key]; exists {
			if existing == f {
				continue
			}
			return fmt.Errorf("network %q registered twice", key)
		}
		uc.fetchers[key] = f
	}
	uc.slugs = append(uc.slugs, f.Slug())
	return nil
}

// Networks returns the registered network slugs in registration order.
func (uc *DefaultIngestionUsecase) Networks() []string {
	out := make([]string, len(uc.slugs))
	copy(out, uc.slugs)
	return out
}

// Run ingests one network, addressed by slug or display name. The only error
// is domain.ErrUnknownNetwork; every other failure is in the outcome.
func (uc *DefaultIngestionUsecase) Run(ctx context.Context, network string) (domain.IngestionOutcome, error) {
	f, ok := uc.fetchers[strings.ToLower(strings.TrimSpace(network))]
	if !ok {
		return domain.IngestionOutcome{}, fmt.Errorf("%w: %s", domain.ErrUnknownNetwork, network)
	}
	return uc.run(ctx, f), nil
}

// RunAll ingests every registered network concurrently.
func (uc *DefaultIngestionUsecase) RunAll(ctx context.Context) map[string]domain.IngestionOutcome {
	var (
		mu       sync.Mutex
		outcomes = make(map[string]domain.IngestionOutcome, len(uc.slugs))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, slug := range uc.slugs {
		f := uc.fetchers[strings.ToLower(slug)]
		g.Go(func() error {
			outcome := uc.run(gctx, f)
			mu.Lock()
			outcomes[f.Slug()] = outcome
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (uc *DefaultIngestionUsecase) run(ctx context.Context, f domain.ProgramFetcher) domain.IngestionOutcome {
	runID := uc.runID()
	logger := uc.logger.With("network", f.Slug(), "run_id", runID)
	logger.Info("ingestion started")

	started := uc.now()
	outcome := uc.invoke(ctx, f, logger)
	finished := uc.now()

	if uc.metrics != nil {
		uc.metrics.RecordRun(f.Slug(), outcome, finished.Sub(started))
	}
	if uc.reporter != nil {
		uc.reporter.ReportIngestion(f.Slug(), outcome.Success)
	}
	if len(uc.publishers) > 0 {
		event := publisher.IngestionEvent{
			RunID:      runID,
			Network:    f.Slug(),
			Success:    outcome.Success,
			Count:      outcome.Count,
			Message:    outcome.Message,
			ErrorKind:  string(outcome.ErrorKind()),
			StartedAt:  started.UTC(),
			FinishedAt: finished.UTC(),
		}
		for _, p := range uc.publishers {
			if err := p.PublishIngestion(event); err != nil {
				logger.Warn("failed to publish ingestion event", "error", err)
			}
		}
	}

	logger.Info("ingestion finished",
		"success", outcome.Success,
		"count", outcome.Count,
		"kind", outcome.ErrorKind(),
		"duration", finished.Sub(started),
	)
	return outcome
}

// invoke calls the adapter and turns a panic into an internal failure.
func (uc *DefaultIngestionUsecase) invoke(ctx context.Context, f domain.ProgramFetcher, logger *slog.Logger) (outcome domain.IngestionOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("adapter panicked", "panic", r)
			outcome = domain.FailedOutcome(fmt.Sprintf("%v", r), &domain.OutcomeError{
				Kind:   domain.ErrorKindInternal,
				Detail: fmt.Sprintf("%s adapter panicked", f.Name()),
			})
		}
	}()
	return f.FetchPrograms(ctx)
}
