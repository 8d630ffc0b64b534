// Package partnerads ingests the Partner-Ads XML program feed.
package partnerads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/LavaJover/affiliate-aggregator/internal/category"
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/upstream"
	"github.com/LavaJover/affiliate-aggregator/internal/validation"
)

const (
	Slug              = "partner-ads"
	DefaultTimeout    = 60 * time.Second
	DefaultRetryDelay = 60 * time.Second
	DefaultMaxRetries = 3

	rateLimitPhrase = "Data should not be retrieved so frequently"
	previewLimit    = 500
)

type Config struct {
	XMLURL     string
	RetryDelay time.Duration
	MaxRetries int
}

type program struct {
	ProgramID          *string `xml:"programid" validate:"required"`
	ProgramNavn        *string `xml:"programnavn" validate:"required"`
	ProgramURL         *string `xml:"programurl" validate:"required"`
	ProgramBeskrivelse *string `xml:"programbeskrivelse" validate:"required"`
	KategoriNavn       *string `xml:"kategorinavn" validate:"required"`
	Provision          *string `xml:"provision" validate:"required"`
	FeedCur            *string `xml:"feedcur"`
	FeedMarket         *string `xml:"feedmarket"`
	FeedLink           *string `xml:"feedlink"`
}

type feed struct {
	Program []program `xml:"program" validate:"required,dive"`
}

type Fetcher struct {
	cfg         Config
	client      *upstream.Client
	pipeline    domain.IngestionPipeline
	logger      *slog.Logger
	wait        func(ctx context.Context, d time.Duration) error
	onRateLimit func()
}

func NewFetcher(cfg Config, client *upstream.Client, pipeline domain.IngestionPipeline, logger *slog.Logger) *Fetcher {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &Fetcher{
		cfg:         cfg,
		client:      client,
		pipeline:    pipeline,
		logger:      logger.With("network", Slug),
		wait:        sleep,
		onRateLimit: func() {},
	}
}

// OnRateLimit registers a callback invoked before every backoff.
func (f *Fetcher) OnRateLimit(fn func()) *Fetcher {
	f.onRateLimit = fn
	return f
}

func (f *Fetcher) Name() string { return domain.NetworkPartnerAds }

func (f *Fetcher) Slug() string { return Slug }

func (f *Fetcher) FetchPrograms(ctx context.Context) domain.IngestionOutcome {
	if f.cfg.XMLURL == "" {
		return f.pipeline.Fail(Slug, "", &domain.ConfigError{Setting: "PARTNER_ADS_XML_URL"})
	}

	document, err := f.fetchWithRetry(ctx)
	if err != nil {
		return f.pipeline.Fail(Slug, "", err)
	}

	programs, err := f.parse(document)
	if err != nil {
		return f.pipeline.Fail(Slug, "", err)
	}
	f.logger.Info("programs parsed", "count", len(programs))

	stored, err := f.pipeline.Persist(ctx, programs)
	if err != nil {
		return f.pipeline.Fail(Slug, "", err)
	}
	return domain.SuccessOutcome(len(stored),
		fmt.Sprintf("Successfully processed %d programs from Partner-Ads", len(stored)), stored)
}

// fetchWithRetry returns the feed as UTF-8. Rate limited attempts are retried
// after RetryDelay until MaxRetries is spent.
func (f *Fetcher) fetchWithRetry(ctx context.Context) (string, error) {
	for attempt := 0; ; attempt++ {
		document, limited, err := f.fetchOnce(ctx)
		if !limited {
			return document, err
		}
		if attempt >= f.cfg.MaxRetries {
			return "", &domain.RateLimitError{Retries: f.cfg.MaxRetries, Wait: f.cfg.RetryDelay}
		}

		f.logger.Warn("rate limited, backing off",
			"retry", attempt+1,
			"max_retries", f.cfg.MaxRetries,
			"delay", f.cfg.RetryDelay,
		)
		f.onRateLimit()
		if err := f.wait(ctx, f.cfg.RetryDelay); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context) (document string, limited bool, err error) {
	resp, err := f.client.Get(ctx, f.cfg.XMLURL, nil, map[string]string{
		"Accept":         "application/xml, text/xml, */*",
		"Accept-Charset": "iso-8859-1",
	})
	var httpErr *upstream.HTTPError
	if err != nil && !errors.As(err, &httpErr) {
		return "", false, err
	}

	document, decodeErr := charmap.ISO8859_1.NewDecoder().String(string(resp.Body))
	if decodeErr != nil {
		return "", false, fmt.Errorf("decode iso-8859-1: %w", decodeErr)
	}

	if resp.Status == http.StatusTooManyRequests || strings.Contains(document, rateLimitPhrase) {
		return "", true, nil
	}
	if httpErr != nil {
		f.logger.Error("request failed",
			"status", resp.Status,
			"status_text", resp.StatusText,
			"content_type", resp.ContentType,
			"body", preview(document),
		)
		return "", false, &upstream.HTTPError{
			Status:     httpErr.Status,
			StatusText: httpErr.StatusText,
			Body:       []byte(document),
		}
	}

	trimmed := strings.TrimSpace(document)
	if strings.HasPrefix(strings.ToLower(trimmed), "<!doctype html") {
		return "", false, &domain.ContentShapeError{
			Reason:  "Received HTML instead of XML. The API might be redirecting to an error page.",
			Preview: preview(document),
		}
	}
	if !strings.Contains(resp.ContentType, "xml") && !strings.HasPrefix(trimmed, "<?xml") {
		f.logger.Error("unexpected content type", "content_type", resp.ContentType, "preview", preview(document))
		return "", false, &domain.ContentShapeError{
			Reason:  fmt.Sprintf("Unexpected content type: %s. Expected XML.", resp.ContentType),
			Preview: preview(document),
		}
	}

	f.logger.Debug("feed received",
		"status", resp.Status,
		"content_type", resp.ContentType,
		"preview", preview(document),
	)
	return document, false, nil
}

func (f *Fetcher) parse(document string) ([]*domain.Program, error) {
	nodes, err := parseTree([]byte(document))
	if err != nil {
		return nil, &domain.ContentShapeError{
			Reason:  fmt.Sprintf("Failed to parse XML: %v", err),
			Preview: preview(document),
		}
	}

	groups, keys := group(nodes)
	f.logger.Debug("feed parsed", "root_keys", keys)

	var parsed feed
	for _, n := range groups["program"] {
		parsed.Program = append(parsed.Program, program{
			ProgramID:          n.field("programid"),
			ProgramNavn:        n.field("programnavn"),
			ProgramURL:         n.field("programurl"),
			ProgramBeskrivelse: n.field("programbeskrivelse"),
			KategoriNavn:       n.field("kategorinavn"),
			Provision:          n.field("provision"),
			FeedCur:            n.field("feedcur"),
			FeedMarket:         n.field("feedmarket"),
			FeedLink:           n.field("feedlink"),
		})
	}
	if err := validation.Struct(parsed); err != nil {
		return nil, err
	}

	programs := make([]*domain.Program, 0, len(parsed.Program))
	var violations []domain.Violation
	for i, p := range parsed.Program {
		rate, err := parseCommission(*p.Provision)
		if err != nil {
			field := fmt.Sprintf("program[%d].provision", i)
			violations = append(violations, domain.Violation{
				Field:   field,
				Rule:    "number",
				Message: fmt.Sprintf("%s: expected number, received %q", field, *p.Provision),
			})
			continue
		}
		programs = append(programs, toDomain(p, rate))
	}
	if len(violations) > 0 {
		return nil, &validation.SchemaError{Violations: violations}
	}
	return programs, nil
}

// parseCommission reads values like "7.5%" or "7,5 %".
func parseCommission(raw string) (float64, error) {
	s := strings.TrimSpace(strings.Replace(raw, "%", "", 1))
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func toDomain(p program, rate float64) *domain.Program {
	name := category.RepairEncoding(*p.ProgramNavn)
	out := &domain.Program{
		ProgramName:    name,
		AdvertiserName: name,
		NetworkName:    domain.NetworkPartnerAds,
		Category:       category.RepairEncoding(*p.KategoriNavn),
		CommissionRate: rate,
		Market:         domain.OperatingMarket,
		URL:            *p.ProgramURL,
	}
	if p.FeedMarket != nil && *p.FeedMarket != "" {
		out.Market = *p.FeedMarket
	}
	if p.FeedCur != nil && *p.FeedCur != "" {
		out.Currency = p.FeedCur
	}
	return out
}

func preview(s string) string {
	if len(s) > previewLimit {
		return strings.ToValidUTF8(s[:previewLimit], "")
	}
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
