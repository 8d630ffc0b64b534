package setup

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LavaJover/affiliate-aggregator/internal/config"
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/postgres"
)

func newTestDeps(t *testing.T, adtractionURL string, mutate ...func(*config.AggregatorConfig)) *Dependencies {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "aggregator.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Prepare(db, "", log))

	cfg := &config.AggregatorConfig{}
	cfg.Networks.Adtraction = config.AdtractionConfig{BaseURL: adtractionURL, APIKey: "token", Timeout: 5 * time.Second}
	cfg.Networks.PartnerAds = config.PartnerAdsConfig{Timeout: 5 * time.Second}
	cfg.Networks.SmartResponse = config.SmartResponseConfig{BaseURL: adtractionURL, Timeout: 5 * time.Second}
	for _, fn := range mutate {
		fn(cfg)
	}

	deps := NewDependencies(cfg, log, db)
	t.Cleanup(func() { _ = deps.Close() })
	return deps
}

func adtractionStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/affiliate/markets", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"market":"DK","marketName":"Denmark","marketId":12}]`)
	})
	mux.HandleFunc("/affiliate/programs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"programId":7,"programName":"Zalando","market":"DK","currency":"DKK",
			"categoryName":"Fashion","commissions":[{"value":6,"id":1,"name":"Sale","transactionType":3,"type":"%"}]}]`)
	})
	return httptest.NewServer(mux)
}

func TestWiredIngestionPersistsAndRecords(t *testing.T) {
	srv := adtractionStub()
	defer srv.Close()

	deps := newTestDeps(t, srv.URL+"/")
	ucs, err := InitializeUseCases(deps)
	require.NoError(t, err)
	assert.Equal(t, []string{"adtraction", "partner-ads", "smartresponse"}, ucs.IngestionUsecase.Networks())
	assert.Nil(t, deps.Publisher)
	assert.Nil(t, deps.Callback)

	outcome, err := ucs.IngestionUsecase.Run(context.Background(), "Adtraction")
	require.NoError(t, err)
	require.True(t, outcome.Success, outcome.Message)
	assert.Equal(t, 1, outcome.Count)

	stored, err := ucs.ProgramUsecase.GetProgram(context.Background(), "Zalando", domain.NetworkAdtraction)
	require.NoError(t, err)
	assert.Equal(t, "Tøj, Mode & Accessoires", stored.CategoryMapping)
	assert.NotEmpty(t, stored.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.RunsTotal.WithLabelValues("adtraction", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.ProgramsUpsertedTotal.WithLabelValues("adtraction")))
}

func TestWiredIngestionReportsMissingConfiguration(t *testing.T) {
	srv := adtractionStub()
	defer srv.Close()

	deps := newTestDeps(t, srv.URL+"/")
	ucs, err := InitializeUseCases(deps)
	require.NoError(t, err)

	outcomes := ucs.IngestionUsecase.RunAll(context.Background())
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes["adtraction"].Success)
	assert.Equal(t, domain.ErrorKindConfigurationMissing, outcomes["partner-ads"].ErrorKind())
	assert.Equal(t, domain.ErrorKindConfigurationMissing, outcomes["smartresponse"].ErrorKind())

	assert.Equal(t, 1.0, testutil.ToFloat64(
		deps.Metrics.FailuresTotal.WithLabelValues("partner-ads", string(domain.ErrorKindConfigurationMissing))))
}

func TestWiredIngestionPostsCallback(t *testing.T) {
	srv := adtractionStub()
	defer srv.Close()

	var callbacks atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callbacks.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	deps := newTestDeps(t, srv.URL+"/", func(cfg *config.AggregatorConfig) {
		cfg.Callback = config.Callback{URL: hook.URL, Timeout: time.Second}
	})
	require.NotNil(t, deps.Callback)
	ucs, err := InitializeUseCases(deps)
	require.NoError(t, err)

	_, err = ucs.IngestionUsecase.Run(context.Background(), "partner-ads")
	require.NoError(t, err)
	assert.Equal(t, int32(1), callbacks.Load())
}
