package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/LavaJover/affiliate-aggregator/internal/category"
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/upstream"
	"github.com/LavaJover/affiliate-aggregator/internal/validation"
)

// Pipeline persists mapped batches for the network adapters.
type Pipeline struct {
	repo   domain.ProgramRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewPipeline(repo domain.ProgramRepository, logger *slog.Logger) *Pipeline {
	return &Pipeline{repo: repo, logger: logger, now: time.Now}
}

// WithClock replaces the time source used to stamp programs.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Persist stamps and categorizes the batch and upserts it in one transaction.
// On failure nothing is committed and a *domain.StoreError is returned.
func (p *Pipeline) Persist(ctx context.Context, programs []*domain.Program) ([]*domain.Program, error) {
	now := p.now().UTC()
	for _, program := range programs {
		program.LastUpdated = now
		program.CreatedAt = now
		program.CategoryMapping = category.MapCategory(program.Category)
	}

	stored, err := p.repo.UpsertPrograms(ctx, programs)
	if err != nil {
		return nil, &domain.StoreError{Err: err}
	}
	return stored, nil
}

func (p *Pipeline) Fail(network, prefix string, err error) domain.IngestionOutcome {
	outcome := FailureOutcome(prefix, err)
	p.logger.Error("ingestion failed",
		"network", network,
		"kind", outcome.ErrorKind(),
		"error", err.Error(),
	)
	return outcome
}

// FailureOutcome classifies err into a failed outcome. prefix is prepended to
// the message of transport failures only.
func FailureOutcome(prefix string, err error) domain.IngestionOutcome {
	var (
		configErr *domain.ConfigError
		rateErr   *domain.RateLimitError
		shapeErr  *domain.ContentShapeError
		schemaErr *validation.SchemaError
		storeErr  *domain.StoreError
		httpErr   *upstream.HTTPError
		urlErr    *url.Error
	)

	switch {
	case errors.As(err, &configErr):
		return domain.FailedOutcome(configErr.Error(), &domain.OutcomeError{
			Kind: domain.ErrorKindConfigurationMissing,
		})
	case errors.As(err, &rateErr):
		return domain.FailedOutcome(rateErr.Error(), &domain.OutcomeError{
			Kind:   domain.ErrorKindRateLimited,
			Detail: rateErr.Wait.String(),
		})
	case errors.As(err, &shapeErr):
		return domain.FailedOutcome(shapeErr.Error(), &domain.OutcomeError{
			Kind: domain.ErrorKindContentShape,
			Body: shapeErr.Preview,
		})
	case errors.As(err, &schemaErr):
		return domain.FailedOutcome(schemaErr.Error(), &domain.OutcomeError{
			Kind:       domain.ErrorKindSchemaValidation,
			Violations: schemaErr.Violations,
		})
	case errors.Is(err, domain.ErrMarketNotFound):
		return domain.FailedOutcome(err.Error(), &domain.OutcomeError{
			Kind: domain.ErrorKindMarketUnavailable,
		})
	case errors.As(err, &storeErr):
		return domain.FailedOutcome(storeErr.Error(), &domain.OutcomeError{
			Kind:   domain.ErrorKindStore,
			Detail: storeErr.Err.Error(),
		})
	case errors.As(err, &httpErr):
		return domain.FailedOutcome(prefix+httpErr.Message(), &domain.OutcomeError{
			Kind:       domain.ErrorKindTransport,
			Status:     httpErr.Status,
			StatusText: httpErr.StatusText,
			Body:       httpErr.Excerpt(),
		})
	case errors.As(err, &urlErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.FailedOutcome(prefix+err.Error(), &domain.OutcomeError{
			Kind:   domain.ErrorKindTransport,
			Detail: err.Error(),
		})
	default:
		return domain.FailedOutcome(err.Error(), &domain.OutcomeError{
			Kind:   domain.ErrorKindInternal,
			Detail: err.Error(),
		})
	}
}
