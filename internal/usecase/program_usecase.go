package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LavaJover/affiliate-aggregator/internal/category"
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
)

type ProgramUsecase interface {
	ListPrograms(ctx context.Context, categoryMapping string) ([]*domain.Program, error)
	SearchPrograms(ctx context.Context, query string) ([]*domain.Program, error)
	GetProgram(ctx context.Context, programName, networkName string) (*domain.Program, error)
	AdminListPrograms(ctx context.Context, page, limit int, sortField, sortDirection string) (*domain.ProgramPage, error)
	Networks(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
	RemapCategories(ctx context.Context) (int, error)
}

type DefaultProgramUsecase struct {
	repo   domain.ProgramRepository
	logger *slog.Logger
}

func NewDefaultProgramUsecase(repo domain.ProgramRepository, logger *slog.Logger) *DefaultProgramUsecase {
	return &DefaultProgramUsecase{repo: repo, logger: logger}
}

func (uc *DefaultProgramUsecase) ListPrograms(ctx context.Context, categoryMapping string) ([]*domain.Program, error) {
	return uc.repo.FindPrograms(ctx, domain.ProgramFilter{CategoryMapping: categoryMapping})
}

// SearchPrograms matches query against names and categories. A blank query
// matches nothing.
func (uc *DefaultProgramUsecase) SearchPrograms(ctx context.Context, query string) ([]*domain.Program, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.Program{}, nil
	}
	return uc.repo.SearchPrograms(ctx, query)
}

func (uc *DefaultProgramUsecase) GetProgram(ctx context.Context, programName, networkName string) (*domain.Program, error) {
	return uc.repo.FindProgram(ctx, programName, networkName)
}

func (uc *DefaultProgramUsecase) AdminListPrograms(ctx context.Context, page, limit int, sortField, sortDirection string) (*domain.ProgramPage, error) {
	return uc.repo.ListPrograms(ctx, page, limit, sortField, sortDirection)
}

func (uc *DefaultProgramUsecase) Networks(ctx context.Context) ([]string, error) {
	return uc.repo.DistinctNetworks(ctx)
}

func (uc *DefaultProgramUsecase) Categories(ctx context.Context) ([]string, error) {
	return uc.repo.DistinctCategoryMappings(ctx)
}

// RemapCategories repairs and re-maps the category of every stored program in
// one transaction and returns how many programs were processed.
func (uc *DefaultProgramUsecase) RemapCategories(ctx context.Context) (int, error) {
	programs, err := uc.repo.FindPrograms(ctx, domain.ProgramFilter{})
	if err != nil {
		return 0, fmt.Errorf("load programs: %w", err)
	}

	updates := make([]domain.CategoryUpdate, 0, len(programs))
	changed := 0
	for _, p := range programs {
		repaired, mapping := category.Normalize(p.Category)
		if repaired != p.Category || mapping != p.CategoryMapping {
			changed++
		}
		updates = append(updates, domain.CategoryUpdate{
			ProgramID:       p.ID,
			Category:        repaired,
			CategoryMapping: mapping,
		})
	}

	if err := uc.repo.UpdateCategories(ctx, updates); err != nil {
		return 0, fmt.Errorf("update categories: %w", err)
	}
	uc.logger.Info("category mappings updated", "programs", len(programs), "changed", changed)
	return len(programs), nil
}
