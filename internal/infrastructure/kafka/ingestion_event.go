package publisher

import "time"

type IngestionEvent struct {
	RunID      string    `json:"run_id"`
	Network    string    `json:"network"`
	Success    bool      `json:"success"`
	Count      int       `json:"count"`
	Message    string    `json:"message"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
