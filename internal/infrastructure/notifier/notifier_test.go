package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	publisher "github.com/LavaJover/affiliate-aggregator/internal/infrastructure/kafka"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishIngestionPostsPayload(t *testing.T) {
	var (
		got         CallbackPayload
		contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	finished := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n := NewCallbackNotifier(srv.URL, time.Second, discard())
	err := n.PublishIngestion(publisher.IngestionEvent{
		RunID:      "V1StGXR8_Z5jdHi6B-myT",
		Network:    "partner-ads",
		Success:    false,
		Message:    "Rate limit exceeded after 3 retries. Please try again later.",
		ErrorKind:  "rate_limited",
		FinishedAt: finished,
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "failure", got.Status)
	assert.Equal(t, "partner-ads", got.Network)
	assert.Equal(t, "rate_limited", got.ErrorKind)
	assert.True(t, finished.Equal(got.FinishedAt))
}

func TestPublishIngestionRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewCallbackNotifier(srv.URL, time.Second, discard())
	err := n.PublishIngestion(publisher.IngestionEvent{Network: "adtraction", Success: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPublishIngestionUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := NewCallbackNotifier(url, time.Second, discard())
	assert.Error(t, n.PublishIngestion(publisher.IngestionEvent{Network: "smartresponse"}))
}

func TestPublishIngestionBoundedByTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	n := NewCallbackNotifier(srv.URL, 50*time.Millisecond, discard())
	started := time.Now()
	err := n.PublishIngestion(publisher.IngestionEvent{Network: "adtraction", Success: true})

	require.Error(t, err)
	assert.Less(t, time.Since(started), 2*time.Second)
}
