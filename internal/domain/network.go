package domain

import "context"

const (
	NetworkAdtraction    = "Adtraction"
	NetworkPartnerAds    = "Partner-Ads"
	NetworkSmartResponse = "SmartResponse"

	// OperatingMarket is the market every ingested program is sold in.
	OperatingMarket = "DK"
)

// ProgramFetcher is one upstream affiliate network. FetchPrograms runs a full
// ingestion (fetch, validate, map, upsert) and always reports through the
// returned outcome.
type ProgramFetcher interface {
	Name() string
	Slug() string
	FetchPrograms(ctx context.Context) IngestionOutcome
}

// IngestionStatusReporter receives the result of every run.
type IngestionStatusReporter interface {
	ReportIngestion(slug string, success bool)
}

// IngestionPipeline is the shared tail of every adapter: it persists a mapped
// batch and turns errors into failure outcomes.
type IngestionPipeline interface {
	Persist(ctx context.Context, programs []*Program) ([]*Program, error)
	Fail(network, prefix string, err error) IngestionOutcome
}
