package mappers

import (
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/postgres/models"
)

func ToGORMProgram(program *domain.Program) *models.ProgramModel {
	return &models.ProgramModel{
		ID:              program.ID,
		ProgramName:     program.ProgramName,
		AdvertiserName:  program.AdvertiserName,
		NetworkName:     program.NetworkName,
		Category:        program.Category,
		CategoryMapping: program.CategoryMapping,
		Market:          program.Market,
		URL:             program.URL,
		LogoURL:         program.LogoURL,
		CookieDuration:  program.CookieDuration,
		Currency:        program.Currency,
		Feed:            program.Feed,
		PendingActive:   program.PendingActive,
		CommissionRate:  program.CommissionRate,
		EPC:             program.EPC,
		LastUpdated:     program.LastUpdated,
		CreatedAt:       program.CreatedAt,
	}
}

func ToDomainProgram(model *models.ProgramModel) *domain.Program {
	return &domain.Program{
		ID:              model.ID,
		ProgramName:     model.ProgramName,
		AdvertiserName:  model.AdvertiserName,
		NetworkName:     model.NetworkName,
		Category:        model.Category,
		CategoryMapping: model.CategoryMapping,
		Market:          model.Market,
		URL:             model.URL,
		LogoURL:         model.LogoURL,
		CookieDuration:  model.CookieDuration,
		Currency:        model.Currency,
		Feed:            model.Feed,
		PendingActive:   model.PendingActive,
		CommissionRate:  model.CommissionRate,
		EPC:             model.EPC,
		LastUpdated:     model.LastUpdated,
		CreatedAt:       model.CreatedAt,
	}
}

func ToDomainPrograms(rows []*models.ProgramModel) []*domain.Program {
	programs := make([]*domain.Program, len(rows))
	for i, model := range rows {
		programs[i] = ToDomainProgram(model)
	}
	return programs
}
