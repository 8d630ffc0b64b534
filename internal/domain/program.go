package domain

import (
	"context"
	"time"
)

type Program struct {
	ID              string  `json:"id"`
	ProgramName     string  `json:"programName"`
	AdvertiserName  string  `json:"advertiserName"`
	NetworkName     string  `json:"networkName"`
	Category        string  `json:"category"`
	CategoryMapping string  `json:"categoryMapping"`
	Market          string  `json:"market"`
	URL             string  `json:"url"`
	LogoURL         string  `json:"logoUrl"`
	CookieDuration  *int    `json:"cookieDuration"`
	Currency        *string `json:"currency"`
	Feed            *bool   `json:"feed"`
	PendingActive   *bool   `json:"pendingActive"`
	// CommissionRate keeps the upstream unit: a percentage for Adtraction and
	// Partner-Ads, a currency amount for SmartResponse.
	CommissionRate float64   `json:"commissionRate"`
	EPC            float64   `json:"epc"`
	LastUpdated    time.Time `json:"lastUpdated"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ProgramKey is the identity of a program inside the store.
type ProgramKey struct {
	ProgramName string
	NetworkName string
}

func (p *Program) Key() ProgramKey {
	return ProgramKey{ProgramName: p.ProgramName, NetworkName: p.NetworkName}
}

type ProgramFilter struct {
	CategoryMapping string
	NetworkName     string
}

type ProgramPage struct {
	Programs   []*Program
	Total      int64
	Page       int
	TotalPages int
}

type CategoryUpdate struct {
	ProgramID       string
	Category        string
	CategoryMapping string
}

type ProgramRepository interface {
	// UpsertPrograms writes the whole batch in one transaction keyed by
	// (program name, network name) and returns the stored rows.
	UpsertPrograms(ctx context.Context, programs []*Program) ([]*Program, error)
	FindPrograms(ctx context.Context, filter ProgramFilter) ([]*Program, error)
	FindProgram(ctx context.Context, programName, networkName string) (*Program, error)
	SearchPrograms(ctx context.Context, query string) ([]*Program, error)
	ListPrograms(ctx context.Context, page, limit int, sortField, sortDirection string) (*ProgramPage, error)
	DistinctNetworks(ctx context.Context) ([]string, error)
	DistinctCategoryMappings(ctx context.Context) ([]string, error)
	UpdateCategories(ctx context.Context, updates []CategoryUpdate) error
}
