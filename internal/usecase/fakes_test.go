package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	publisher "github.com/LavaJover/affiliate-aggregator/internal/infrastructure/kafka"
)

// memoryRepo applies each upsert batch all-or-nothing, like the SQL store.
type memoryRepo struct {
	mu      sync.Mutex
	rows    map[domain.ProgramKey]*domain.Program
	nextID  int
	failAt  int // 1-based record index that fails, 0 never
	updates []domain.CategoryUpdate
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[domain.ProgramKey]*domain.Program)}
}

func (r *memoryRepo) UpsertPrograms(_ context.Context, programs []*domain.Program) ([]*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[domain.ProgramKey]*domain.Program, len(programs))
	out := make([]*domain.Program, 0, len(programs))
	nextID := r.nextID
	for i, p := range programs {
		if r.failAt == i+1 {
			return nil, fmt.Errorf("constraint violated on record %d", i+1)
		}
		row := *p
		if existing, ok := r.rows[p.Key()]; ok {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		} else {
			nextID++
			row.ID = fmt.Sprintf("id-%d", nextID)
		}
		staged[p.Key()] = &row
		stored := row
		out = append(out, &stored)
	}
	for k, v := range staged {
		r.rows[k] = v
	}
	r.nextID = nextID
	return out, nil
}

func (r *memoryRepo) all() []*domain.Program {
	out := make([]*domain.Program, 0, len(r.rows))
	for _, p := range r.rows {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProgramName < out[j].ProgramName })
	return out
}

func (r *memoryRepo) FindPrograms(_ context.Context, filter domain.ProgramFilter) ([]*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Program
	for _, p := range r.all() {
		if filter.CategoryMapping != "" && p.CategoryMapping != filter.CategoryMapping {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) FindProgram(_ context.Context, programName, networkName string) (*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[domain.ProgramKey{ProgramName: programName, NetworkName: networkName}]
	if !ok {
		return nil, domain.ErrProgramNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) SearchPrograms(_ context.Context, query string) ([]*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Program
	for _, p := range r.all() {
		if strings.Contains(strings.ToLower(p.ProgramName), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListPrograms(_ context.Context, page, limit int, _, _ string) (*domain.ProgramPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.all()
	return &domain.ProgramPage{Programs: all, Total: int64(len(all)), Page: page, TotalPages: 1}, nil
}

func (r *memoryRepo) DistinctNetworks(context.Context) ([]string, error) {
	return []string{domain.NetworkAdtraction}, nil
}

func (r *memoryRepo) DistinctCategoryMappings(context.Context) ([]string, error) {
	return []string{"Andet"}, nil
}

func (r *memoryRepo) UpdateCategories(_ context.Context, updates []domain.CategoryUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, updates...)
	byID := make(map[string]*domain.Program)
	for _, p := range r.rows {
		byID[p.ID] = p
	}
	for _, u := range updates {
		p, ok := byID[u.ProgramID]
		if !ok {
			return errors.New("unknown program " + u.ProgramID)
		}
		p.Category = u.Category
		p.CategoryMapping = u.CategoryMapping
	}
	return nil
}

type stubFetcher struct {
	name, slug string
	fetch      func(ctx context.Context) domain.IngestionOutcome
}

func (s *stubFetcher) Name() string { return s.name }
func (s *stubFetcher) Slug() string { return s.slug }
func (s *stubFetcher) FetchPrograms(ctx context.Context) domain.IngestionOutcome {
	return s.fetch(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publisher.IngestionEvent
	err    error
}

func (p *recordingPublisher) PublishIngestion(event publisher.IngestionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type recordingReporter struct {
	mu     sync.Mutex
	status map[string]bool
}

func (r *recordingReporter) ReportIngestion(slug string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == nil {
		r.status = make(map[string]bool)
	}
	r.status[slug] = success
}
