package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishIngestion(t *testing.T) {
	w := &recordingWriter{}
	p := &DefaultKafkaPublisher{writer: w, topic: "ingestion-events"}
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := p.PublishIngestion(IngestionEvent{
		RunID:      "run-1",
		Network:    "adtraction",
		Success:    true,
		Count:      4,
		Message:    "ok",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "ingestion-events", msg.Topic)
	assert.Equal(t, []byte("adtraction"), msg.Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, 4.0, decoded["count"])
	assert.NotContains(t, decoded, "error_kind")
}

func TestPublishWrapsWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := &DefaultKafkaPublisher{writer: w, topic: "t"}

	err := p.PublishIngestion(IngestionEvent{Network: "smartresponse"})
	assert.ErrorContains(t, err, "broker down")
}
