package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/usecase"
)

type IngestionHandler struct {
	uc     usecase.IngestionUsecase
	logger *slog.Logger
}

func NewIngestionHandler(uc usecase.IngestionUsecase, logger *slog.Logger) *IngestionHandler {
	return &IngestionHandler{uc: uc, logger: logger}
}

// Fetch runs one network synchronously and returns its outcome. A failed run
// is still a 200; the outcome carries the failure. The run is not tied to the
// caller: a dropped connection does not abort it.
func (h *IngestionHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	network := chi.URLParam(r, "network")
	outcome, err := h.uc.Run(context.WithoutCancel(r.Context()), network)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownNetwork) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown network: %s", network))
			return
		}
		h.logger.ErrorContext(r.Context(), "ingestion failed", "network", network, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// FetchAll runs every registered network and returns outcomes keyed by slug.
func (h *IngestionHandler) FetchAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.uc.RunAll(context.WithoutCancel(r.Context())))
}
