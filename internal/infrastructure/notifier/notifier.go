package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	publisher "github.com/LavaJover/affiliate-aggregator/internal/infrastructure/kafka"
)

const defaultTimeout = 5 * time.Second

// CallbackNotifier posts every finished ingestion run to a webhook.
type CallbackNotifier struct {
	callbackURL string
	client      *http.Client
	logger      *slog.Logger
}

func NewCallbackNotifier(callbackURL string, timeout time.Duration, logger *slog.Logger) *CallbackNotifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CallbackNotifier{
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// PublishIngestion sends the callback and waits for the reply. Any non-2xx
// reply is an error. The callback outlives the run it reports on, so it is
// bounded only by the client timeout, even during shutdown.
func (n *CallbackNotifier) PublishIngestion(event publisher.IngestionEvent) error {
	body, err := json.Marshal(toPayload(event))
	if err != nil {
		return fmt.Errorf("failed to marshal callback: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, n.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	n.logger.Debug("callback sent", "url", n.callbackURL, "network", event.Network, "run_id", event.RunID)
	return nil
}
