package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/upstream"
	"github.com/LavaJover/affiliate-aggregator/internal/validation"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func batch(names ...string) []*domain.Program {
	out := make([]*domain.Program, len(names))
	for i, n := range names {
		out[i] = &domain.Program{
			ProgramName:    n,
			AdvertiserName: n,
			NetworkName:    domain.NetworkAdtraction,
			Category:       "home & interior",
			Market:         "DK",
		}
	}
	return out
}

func TestPersistStampsAndCategorizes(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	p := NewPipeline(repo, discardLogger()).WithClock(func() time.Time { return now })

	stored, err := p.Persist(context.Background(), batch("A", "B"))
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, s := range stored {
		assert.Equal(t, now, s.LastUpdated)
		assert.Equal(t, now, s.CreatedAt)
		assert.Equal(t, "Bolig, Have & Gør-det-selv", s.CategoryMapping)
		assert.NotEmpty(t, s.ID)
	}
}

func TestPersistIsAllOrNothing(t *testing.T) {
	repo := newMemoryRepo()
	p := NewPipeline(repo, discardLogger())
	_, err := p.Persist(context.Background(), batch("Existing"))
	require.NoError(t, err)

	repo.failAt = 3
	_, err = p.Persist(context.Background(), batch("X", "Y", "Z", "W"))
	require.Error(t, err)

	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	outcome := FailureOutcome("", err)
	assert.False(t, outcome.Success)
	assert.Equal(t, 0, outcome.Count)
	assert.Equal(t, "Database error: constraint violated on record 3", outcome.Message)
	assert.Equal(t, domain.ErrorKindStore, outcome.ErrorKind())

	rows, err := repo.FindPrograms(context.Background(), domain.ProgramFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Existing", rows[0].ProgramName)
}

func TestPersistTwiceKeepsIdentity(t *testing.T) {
	repo := newMemoryRepo()
	t0 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := t0
	p := NewPipeline(repo, discardLogger()).WithClock(func() time.Time { return clock })

	first, err := p.Persist(context.Background(), batch("A"))
	require.NoError(t, err)

	clock = t0.Add(time.Hour)
	second, err := p.Persist(context.Background(), batch("A"))
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, t0, second[0].CreatedAt)
	assert.Equal(t, clock, second[0].LastUpdated)
}

func TestFailureOutcomeClassifiesErrors(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		err     error
		kind    domain.ErrorKind
		message string
	}{
		{
			name:    "missing setting",
			err:     &domain.ConfigError{Setting: "ADTRACTION_API_KEY"},
			kind:    domain.ErrorKindConfigurationMissing,
			message: "ADTRACTION_API_KEY is not set",
		},
		{
			name:    "rate limit",
			err:     &domain.RateLimitError{Retries: 3, Wait: time.Minute},
			kind:    domain.ErrorKindRateLimited,
			message: "Rate limit exceeded after 3 retries. Please try again later.",
		},
		{
			name:    "content shape",
			err:     &domain.ContentShapeError{Reason: "Unexpected content type: text/html. Expected XML."},
			kind:    domain.ErrorKindContentShape,
			message: "Unexpected content type: text/html. Expected XML.",
		},
		{
			name: "schema",
			err: &validation.SchemaError{Violations: []domain.Violation{
				{Field: "[0].programName", Rule: "required", Message: "[0].programName: Required"},
			}},
			kind:    domain.ErrorKindSchemaValidation,
			message: "Data validation error: [0].programName: Required",
		},
		{
			name:    "market",
			err:     fmt.Errorf("Danish %w in available markets", domain.ErrMarketNotFound),
			kind:    domain.ErrorKindMarketUnavailable,
			message: "Danish market not found in available markets",
		},
		{
			name:    "http status",
			prefix:  "Adtraction API error: ",
			err:     fmt.Errorf("get markets: %w", &upstream.HTTPError{Status: 503, StatusText: "Service Unavailable"}),
			kind:    domain.ErrorKindTransport,
			message: "Adtraction API error: upstream returned status 503 Service Unavailable",
		},
		{
			name:    "network",
			prefix:  "API error: ",
			err:     &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")},
			kind:    domain.ErrorKindTransport,
			message: `API error: Get "http://x": connection refused`,
		},
		{
			name:    "deadline",
			err:     fmt.Errorf("waiting: %w", context.DeadlineExceeded),
			kind:    domain.ErrorKindTransport,
			message: "waiting: context deadline exceeded",
		},
		{
			name:    "anything else",
			prefix:  "API error: ",
			err:     errors.New("unexpected"),
			kind:    domain.ErrorKindInternal,
			message: "unexpected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := FailureOutcome(tt.prefix, tt.err)

			assert.False(t, outcome.Success)
			assert.Zero(t, outcome.Count)
			assert.Equal(t, tt.kind, outcome.ErrorKind())
			assert.Equal(t, tt.message, outcome.Message)
		})
	}
}

func TestFailureOutcomeKeepsHTTPDetails(t *testing.T) {
	outcome := FailureOutcome("", &upstream.HTTPError{Status: 500, StatusText: "Internal Server Error", Body: []byte("oops")})

	require.NotNil(t, outcome.Error)
	assert.Equal(t, 500, outcome.Error.Status)
	assert.Equal(t, "Internal Server Error", outcome.Error.StatusText)
	assert.Equal(t, "oops", outcome.Error.Body)
}
