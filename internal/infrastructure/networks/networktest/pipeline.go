// Package networktest provides fakes shared by the network adapter tests.
package networktest

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/usecase"
)

// Pipeline records persisted batches instead of writing them.
type Pipeline struct {
	// Err, when set, makes every Persist fail as a store error.
	Err error

	mu      sync.Mutex
	batches [][]*domain.Program
}

func (p *Pipeline) Persist(_ context.Context, programs []*domain.Program) ([]*domain.Program, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, programs)
	if p.Err != nil {
		return nil, &domain.StoreError{Err: p.Err}
	}
	return programs, nil
}

func (p *Pipeline) Fail(_ string, prefix string, err error) domain.IngestionOutcome {
	return usecase.FailureOutcome(prefix, err)
}

func (p *Pipeline) Batches() [][]*domain.Program {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batches
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
