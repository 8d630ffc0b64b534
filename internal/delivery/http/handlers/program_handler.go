package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	programdto "github.com/LavaJover/affiliate-aggregator/internal/delivery/http/dto/program"
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/usecase"
)

type ProgramHandler struct {
	uc     usecase.ProgramUsecase
	logger *slog.Logger
}

func NewProgramHandler(uc usecase.ProgramUsecase, logger *slog.Logger) *ProgramHandler {
	return &ProgramHandler{uc: uc, logger: logger}
}

func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.uc.ListPrograms(r.Context(), r.URL.Query().Get("categoryMapping"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list programs", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch programs")
		return
	}
	writeJSON(w, http.StatusOK, programdto.ListResponse{Data: nonNil(programs)})
}

func (h *ProgramHandler) Search(w http.ResponseWriter, r *http.Request) {
	programs, err := h.uc.SearchPrograms(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search programs", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to search programs")
		return
	}
	writeJSON(w, http.StatusOK, programdto.ListResponse{Data: nonNil(programs)})
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	program, err := h.uc.GetProgram(r.Context(), chi.URLParam(r, "programName"), chi.URLParam(r, "networkName"))
	if err != nil {
		if errors.Is(err, domain.ErrProgramNotFound) {
			writeError(w, http.StatusNotFound, "Program not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get program", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch program")
		return
	}
	writeJSON(w, http.StatusOK, programdto.DetailResponse{Success: true, Data: program})
}

func (h *ProgramHandler) Networks(w http.ResponseWriter, r *http.Request) {
	networks, err := h.uc.Networks(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list networks", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch networks")
		return
	}
	writeJSON(w, http.StatusOK, programdto.NamesResponse{Success: true, Data: nonNilStrings(networks)})
}

func (h *ProgramHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.uc.Categories(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, programdto.NamesResponse{Data: nonNilStrings(categories)})
}

// AdminList pages through every program. Unknown sort fields fall back to
// creation time, newest first.
func (h *ProgramHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	limit := intParam(q.Get("limit"), 10)

	result, err := h.uc.AdminListPrograms(r.Context(), page, limit, q.Get("sortField"), q.Get("sortDirection"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "admin list programs", "error", err)
		writeJSON(w, http.StatusInternalServerError, programdto.ErrorResponse{
			Error:   "Internal Server Error",
			Details: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, programdto.AdminPageResponse{
		Programs:   nonNil(result.Programs),
		Total:      result.Total,
		Page:       result.Page,
		TotalPages: result.TotalPages,
	})
}

func (h *ProgramHandler) RemapCategories(w http.ResponseWriter, r *http.Request) {
	updated, err := h.uc.RemapCategories(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "remap categories", "error", err)
		writeJSON(w, http.StatusInternalServerError, programdto.ErrorResponse{
			Error:   "Failed to update category mappings",
			Details: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, programdto.RemapResponse{
		Success: true,
		Message: fmt.Sprintf("Updated %d programs successfully", updated),
	})
}

func (h *ProgramHandler) RemapCategoriesMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	writeJSON(w, http.StatusMethodNotAllowed, programdto.ErrorResponse{
		Message: "This endpoint only accepts POST requests",
	})
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func nonNil(programs []*domain.Program) []*domain.Program {
	if programs == nil {
		return []*domain.Program{}
	}
	return programs
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
