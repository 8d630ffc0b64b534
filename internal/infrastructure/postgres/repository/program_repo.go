package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/postgres/models"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// upsertColumns are overwritten when a program with the same
// (program_name, network_name) already exists. id and created_at are kept.
var upsertColumns = []string{
	"advertiser_name",
	"category",
	"category_mapping",
	"market",
	"url",
	"logo_url",
	"cookie_duration",
	"currency",
	"feed",
	"pending_active",
	"commission_rate",
	"epc",
	"last_updated",
}

// sortColumns maps the admin listing sort fields onto columns.
var sortColumns = map[string]string{
	"programName":     "program_name",
	"advertiserName":  "advertiser_name",
	"networkName":     "network_name",
	"category":        "category",
	"categoryMapping": "category_mapping",
	"market":          "market",
	"commissionRate":  "commission_rate",
	"epc":             "epc",
	"lastUpdated":     "last_updated",
	"createdAt":       "created_at",
}

type DefaultProgramRepository struct {
	DB *gorm.DB
}

func NewDefaultProgramRepository(db *gorm.DB) *DefaultProgramRepository {
	return &DefaultProgramRepository{
		DB: db,
	}
}

func (r *DefaultProgramRepository) UpsertPrograms(ctx context.Context, programs []*domain.Program) ([]*domain.Program, error) {
	stored := make([]*domain.Program, 0, len(programs))
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, program := range programs {
			model := mappers.ToGORMProgram(program)
			if model.ID == "" {
				model.ID = uuid.NewString()
			}

			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "program_name"},
					{Name: "network_name"},
				},
				DoUpdates: clause.AssignmentColumns(upsertColumns),
			}).Create(model).Error
			if err != nil {
				return fmt.Errorf("upsert %s/%s: %w", program.NetworkName, program.ProgramName, err)
			}

			var row models.ProgramModel
			if err := tx.Where("program_name = ? AND network_name = ?", program.ProgramName, program.NetworkName).
				First(&row).Error; err != nil {
				return fmt.Errorf("read back %s/%s: %w", program.NetworkName, program.ProgramName, err)
			}
			stored = append(stored, mappers.ToDomainProgram(&row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *DefaultProgramRepository) FindPrograms(ctx context.Context, filter domain.ProgramFilter) ([]*domain.Program, error) {
	query := r.DB.WithContext(ctx).Model(&models.ProgramModel{})
	if filter.CategoryMapping != "" {
		query = query.Where("category_mapping = ?", filter.CategoryMapping)
	}
	if filter.NetworkName != "" {
		query = query.Where("network_name = ?", filter.NetworkName)
	}

	var rows []*models.ProgramModel
	if err := query.Order("program_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mappers.ToDomainPrograms(rows), nil
}

func (r *DefaultProgramRepository) FindProgram(ctx context.Context, programName, networkName string) (*domain.Program, error) {
	var row models.ProgramModel
	err := r.DB.WithContext(ctx).
		Where("program_name = ? AND network_name = ?", programName, networkName).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, err
	}
	return mappers.ToDomainProgram(&row), nil
}

func (r *DefaultProgramRepository) SearchPrograms(ctx context.Context, query string) ([]*domain.Program, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var rows []*models.ProgramModel
	err := r.DB.WithContext(ctx).
		Where("LOWER(program_name) LIKE ? ESCAPE '\\'", pattern).
		Or("LOWER(advertiser_name) LIKE ? ESCAPE '\\'", pattern).
		Or("LOWER(category) LIKE ? ESCAPE '\\'", pattern).
		Or("LOWER(category_mapping) LIKE ? ESCAPE '\\'", pattern).
		Order("program_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainPrograms(rows), nil
}

func (r *DefaultProgramRepository) ListPrograms(ctx context.Context, page, limit int, sortField, sortDirection string) (*domain.ProgramPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	column, ok := sortColumns[sortField]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(sortDirection, "asc")

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.ProgramModel{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []*models.ProgramModel
	err := r.DB.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order("program_name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return &domain.ProgramPage{
		Programs:   mappers.ToDomainPrograms(rows),
		Total:      total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (r *DefaultProgramRepository) DistinctNetworks(ctx context.Context) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Model(&models.ProgramModel{}).
		Where("network_name <> ''").
		Distinct().
		Order("network_name ASC").
		Pluck("network_name", &names).Error
	return names, err
}

func (r *DefaultProgramRepository) DistinctCategoryMappings(ctx context.Context) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Model(&models.ProgramModel{}).
		Where("category_mapping IS NOT NULL AND category_mapping <> ''").
		Distinct().
		Order("category_mapping ASC").
		Pluck("category_mapping", &names).Error
	return names, err
}

func (r *DefaultProgramRepository) UpdateCategories(ctx context.Context, updates []domain.CategoryUpdate) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&models.ProgramModel{}).Where("id = ?", u.ProgramID).Updates(map[string]interface{}{
				"category":         u.Category,
				"category_mapping": u.CategoryMapping,
			}).Error
			if err != nil {
				return fmt.Errorf("update categories of %s: %w", u.ProgramID, err)
			}
		}
		return nil
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
