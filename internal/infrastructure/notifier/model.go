package notifier

import (
	"time"

	publisher "github.com/LavaJover/affiliate-aggregator/internal/infrastructure/kafka"
)

type CallbackPayload struct {
	RunID      string    `json:"run_id"`
	Network    string    `json:"network"`
	Status     string    `json:"status"`
	Count      int       `json:"count"`
	Message    string    `json:"message"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

func toPayload(event publisher.IngestionEvent) CallbackPayload {
	status := "success"
	if !event.Success {
		status = "failure"
	}
	return CallbackPayload{
		RunID:      event.RunID,
		Network:    event.Network,
		Status:     status,
		Count:      event.Count,
		Message:    event.Message,
		ErrorKind:  event.ErrorKind,
		FinishedAt: event.FinishedAt,
	}
}
