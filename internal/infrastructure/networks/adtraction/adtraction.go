// Package adtraction ingests the Danish program catalog from the Adtraction
// affiliate API.
package adtraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/upstream"
	"github.com/LavaJover/affiliate-aggregator/internal/validation"
)

const (
	Slug           = "adtraction"
	DefaultBaseURL = "https://api.adtraction.com/v2"
	DefaultTimeout = 30 * time.Second

	danishMarketID = 12
	apiErrorPrefix = "Adtraction API error: "
)

var errDanishMarketMissing = fmt.Errorf("Danish %w in available markets", domain.ErrMarketNotFound)

type Config struct {
	BaseURL string
	APIKey  string
}

type market struct {
	Market     *string `json:"market" validate:"required"`
	MarketName *string `json:"marketName" validate:"required"`
	MarketID   *int    `json:"marketId" validate:"required"`
}

type commission struct {
	Value           *float64 `json:"value" validate:"required"`
	ID              *int64   `json:"id" validate:"required"`
	Name            *string  `json:"name" validate:"required"`
	TransactionType *int     `json:"transactionType" validate:"required"`
	Type            *string  `json:"type" validate:"required"`
}

type program struct {
	ProgramID      *int64       `json:"programId" validate:"required"`
	ProgramName    *string      `json:"programName" validate:"required"`
	ProgramURL     *string      `json:"programURL"`
	Market         *string      `json:"market" validate:"required"`
	Currency       *string      `json:"currency"`
	Feed           *bool        `json:"feed"`
	PendingActive  *bool        `json:"pendingActive"`
	CookieDuration *int         `json:"cookieDuration"`
	LogoURL        *string      `json:"logoURL"`
	CategoryName   *string      `json:"categoryName" validate:"required"`
	EPC            *float64     `json:"epc"`
	Commissions    []commission `json:"commissions" validate:"omitempty,dive"`
}

type Fetcher struct {
	cfg      Config
	client   *upstream.Client
	pipeline domain.IngestionPipeline
	logger   *slog.Logger
}

func NewFetcher(cfg Config, client *upstream.Client, pipeline domain.IngestionPipeline, logger *slog.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Fetcher{
		cfg:      cfg,
		client:   client,
		pipeline: pipeline,
		logger:   logger.With("network", Slug),
	}
}

func (f *Fetcher) Name() string { return domain.NetworkAdtraction }

func (f *Fetcher) Slug() string { return Slug }

func (f *Fetcher) FetchPrograms(ctx context.Context) domain.IngestionOutcome {
	if f.cfg.APIKey == "" {
		return f.pipeline.Fail(Slug, apiErrorPrefix, &domain.ConfigError{Setting: "ADTRACTION_API_KEY"})
	}

	if err := f.ensureDanishMarket(ctx); err != nil {
		return f.pipeline.Fail(Slug, apiErrorPrefix, err)
	}

	programs, err := f.fetchPrograms(ctx)
	if err != nil {
		return f.pipeline.Fail(Slug, apiErrorPrefix, err)
	}
	f.logger.Info("programs parsed", "count", len(programs))

	stored, err := f.pipeline.Persist(ctx, programs)
	if err != nil {
		return f.pipeline.Fail(Slug, apiErrorPrefix, err)
	}
	return domain.SuccessOutcome(len(stored),
		fmt.Sprintf("Successfully processed %d Danish programs from Adtraction", len(stored)), stored)
}

func (f *Fetcher) ensureDanishMarket(ctx context.Context) error {
	var markets []market
	if err := f.getJSON(ctx, "/affiliate/markets", nil, &markets); err != nil {
		return err
	}
	for _, m := range markets {
		if *m.MarketID == danishMarketID {
			f.logger.Debug("danish market found", "market", *m.Market, "name", *m.MarketName)
			return nil
		}
	}
	return errDanishMarketMissing
}

func (f *Fetcher) fetchPrograms(ctx context.Context) ([]*domain.Program, error) {
	var raw []program
	query := url.Values{"market": {domain.OperatingMarket}}
	if err := f.getJSON(ctx, "/affiliate/programs", query, &raw); err != nil {
		return nil, err
	}

	programs := make([]*domain.Program, 0, len(raw))
	for _, p := range raw {
		programs = append(programs, toDomain(p))
	}
	return programs, nil
}

func (f *Fetcher) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	resp, err := f.client.Get(ctx, f.cfg.BaseURL+path, query, map[string]string{
		"X-Token":      f.cfg.APIKey,
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
	if err != nil {
		var httpErr *upstream.HTTPError
		if errors.As(err, &httpErr) {
			f.logger.Warn("upstream error", "path", path, "status", httpErr.Status, "body", httpErr.Excerpt())
		}
		return err
	}
	f.logger.Debug("upstream response", "path", path, "status", resp.Status, "bytes", len(resp.Body))
	return validation.DecodeJSON(resp.Body, dst)
}

func toDomain(p program) *domain.Program {
	out := &domain.Program{
		ProgramName:    *p.ProgramName,
		AdvertiserName: *p.ProgramName,
		NetworkName:    domain.NetworkAdtraction,
		Category:       *p.CategoryName,
		Market:         *p.Market,
		URL:            deref(p.ProgramURL),
		LogoURL:        deref(p.LogoURL),
		Feed:           boolOrFalse(p.Feed),
		PendingActive:  boolOrFalse(p.PendingActive),
	}
	if p.Currency != nil && *p.Currency != "" {
		out.Currency = p.Currency
	}
	if p.CookieDuration != nil && *p.CookieDuration != 0 {
		out.CookieDuration = p.CookieDuration
	}
	if len(p.Commissions) > 0 {
		out.CommissionRate = *p.Commissions[0].Value
	}
	if p.EPC != nil {
		out.EPC = *p.EPC
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolOrFalse(b *bool) *bool {
	v := b != nil && *b
	return &v
}
