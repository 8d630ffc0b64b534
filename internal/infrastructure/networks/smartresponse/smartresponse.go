// Package smartresponse ingests Danish offers from the SmartResponse
// affiliate offer feed.
package smartresponse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/upstream"
	"github.com/LavaJover/affiliate-aggregator/internal/validation"
)

const (
	Slug           = "smartresponse"
	DefaultBaseURL = "https://login.smartresponse-media.com"
	DefaultTimeout = 30 * time.Second
	PageSize       = 1000

	feedPath       = "/affiliates/api/Offers/Feed"
	apiErrorPrefix = "API error: "
	// danishMarker marks offers sold in the Danish market.
	danishMarker = "DK"
)

type Config struct {
	BaseURL     string
	APIKey      string
	AffiliateID string
}

type country struct {
	CountryCode *string `json:"country_code" validate:"required"`
	CountryAbbr *string `json:"country_abbr" validate:"required"`
	CountryName *string `json:"country_name" validate:"required"`
}

type mediaType struct {
	MediaTypeID   *int    `json:"media_type_id" validate:"required"`
	MediaTypeName *string `json:"media_type_name" validate:"required"`
	MediumID      *int    `json:"medium_id" validate:"required"`
	MediumName    *string `json:"medium_name" validate:"required"`
}

type offerStatus struct {
	OfferStatusID   *int    `json:"offer_status_id" validate:"required"`
	OfferStatusName *string `json:"offer_status_name" validate:"required"`
}

type tag struct {
	TagID   *int    `json:"tag_id" validate:"required"`
	TagName *string `json:"tag_name" validate:"required"`
}

type campaign struct {
	OfferID                 *int64       `json:"offer_id" validate:"required"`
	OfferContractID         *int64       `json:"offer_contract_id" validate:"required"`
	CampaignID              *int64       `json:"campaign_id"`
	OfferName               *string      `json:"offer_name" validate:"required"`
	VerticalName            *string      `json:"vertical_name" validate:"required"`
	OfferStatus             *offerStatus `json:"offer_status" validate:"required"`
	Price                   *float64     `json:"price" validate:"required"`
	CurrencyID              *int         `json:"currency_id" validate:"required"`
	CurrencySymbol          *string      `json:"currency_symbol" validate:"required"`
	PriceConverted          *float64     `json:"price_converted" validate:"required"`
	PriceFormatID           *int         `json:"price_format_id" validate:"required"`
	PriceFormat             *string      `json:"price_format" validate:"required"`
	PreviewLink             *string      `json:"preview_link" validate:"required"`
	ThumbnailImageURL       *string      `json:"thumbnail_image_url" validate:"required"`
	AllowedCountries        []country    `json:"allowed_countries" validate:"required,dive"`
	AllowedMediaTypes       []mediaType  `json:"allowed_media_types" validate:"required,dive"`
	ExpirationDate          *string      `json:"expiration_date"`
	Tags                    []tag        `json:"tags" validate:"required,dive"`
	AdvertiserExtendedTerms *string      `json:"advertiser_extended_terms" validate:"required"`
	Hidden                  *bool        `json:"hidden" validate:"required"`
	DateCreated             *string      `json:"date_created" validate:"required"`
	PriceMin                *float64     `json:"price_min"`
	PriceMax                *float64     `json:"price_max"`
	PercentageMin           *float64     `json:"percentage_min"`
	PercentageMax           *float64     `json:"percentage_max"`
}

type feedResponse struct {
	RowCount *int       `json:"row_count" validate:"required"`
	Data     []campaign `json:"data" validate:"required,dive"`
	Success  *bool      `json:"success" validate:"required"`
	Message  *string    `json:"message"`
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

func (f *Fetcher) Name() string { return domain.NetworkSmartResponse }

func (f *Fetcher) Slug() string { return Slug }

func (f *Fetcher) FetchPrograms(ctx context.Context) domain.IngestionOutcome {
	if f.cfg.APIKey == "" || f.cfg.AffiliateID == "" {
		return f.pipeline.Fail(Slug, apiErrorPrefix,
			&domain.ConfigError{Setting: "SMARTRESPONSE_API_KEY or SMARTRESPONSE_AFFILIATE_ID"})
	}

	campaigns, err := f.fetchFeed(ctx)
	if err != nil {
		return f.pipeline.Fail(Slug, apiErrorPrefix, err)
	}

	programs := danishPrograms(campaigns)
	f.logger.Info("campaigns filtered", "received", len(campaigns), "danish", len(programs))
	if len(programs) == 0 {
		return domain.SuccessOutcome(0, "No programs found from SmartResponse", []*domain.Program{})
	}

	stored, err := f.pipeline.Persist(ctx, programs)
	if err != nil {
		return f.pipeline.Fail(Slug, apiErrorPrefix, err)
	}
	return domain.SuccessOutcome(len(stored),
		fmt.Sprintf("Successfully processed %d programs from SmartResponse", len(stored)), stored)
}

func (f *Fetcher) fetchFeed(ctx context.Context) ([]campaign, error) {
	query := url.Values{
		"api_key":          {f.cfg.APIKey},
		"affiliate_id":     {f.cfg.AffiliateID},
		"page":             {"1"},
		"page_size":        {strconv.Itoa(PageSize)},
		"include_hidden":   {"1"},
		"include_inactive": {"1"},
		"include_pending":  {"1"},
		"include_expired":  {"1"},
		"format":           {"json"},
	}
	resp, err := f.client.Get(ctx, f.cfg.BaseURL+feedPath, query, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
	if err != nil {
		var httpErr *upstream.HTTPError
		if errors.As(err, &httpErr) {
			f.logger.Warn("upstream error", "status", httpErr.Status, "body", httpErr.Excerpt())
		}
		return nil, err
	}

	var feed feedResponse
	if err := validation.DecodeJSON(resp.Body, &feed); err != nil {
		return nil, err
	}
	f.logger.Debug("feed parsed", "row_count", *feed.RowCount, "campaigns", len(feed.Data))
	return feed.Data, nil
}

func danishPrograms(campaigns []campaign) []*domain.Program {
	var programs []*domain.Program
	for _, c := range campaigns {
		if !strings.Contains(*c.OfferName, danishMarker) {
			continue
		}
		currency := *c.CurrencySymbol
		programs = append(programs, &domain.Program{
			ProgramName:    *c.OfferName,
			AdvertiserName: *c.OfferName,
			NetworkName:    domain.NetworkSmartResponse,
			Category:       *c.VerticalName,
			CommissionRate: *c.Price,
			Market:         domain.OperatingMarket,
			URL:            *c.PreviewLink,
			LogoURL:        *c.ThumbnailImageURL,
			Currency:       &currency,
		})
	}
	return programs
}
