package handlers

import (
	"encoding/json"
	"net/http"

	programdto "github.com/LavaJover/affiliate-aggregator/internal/delivery/http/dto/program"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, programdto.ErrorResponse{Error: message})
}
