package program

import "github.com/LavaJover/affiliate-aggregator/internal/domain"

type ListResponse struct {
	Data []*domain.Program `json:"data"`
}

type DetailResponse struct {
	Success bool            `json:"success"`
	Data    *domain.Program `json:"data"`
}

type NamesResponse struct {
	Success bool     `json:"success,omitempty"`
	Data    []string `json:"data"`
}

type AdminPageResponse struct {
	Programs   []*domain.Program `json:"programs"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

type RemapResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}
