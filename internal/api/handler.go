package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/store"
)

// PlayerResolver extracts the player id from a request.
type PlayerResolver func(r *http.Request) (string, bool)

// Handler holds all dependencies needed by HTTP handlers.
type Handler struct {
	scores store.ScoreStore
	player PlayerResolver
	logger *slog.Logger
}

func NewHandler(scores store.ScoreStore, player PlayerResolver, logger *slog.Logger) *Handler {
	return &Handler{
		scores: scores,
		player: player,
		logger: logger,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// handleStoreError checks for common store errors and writes the appropriate
// HTTP response. Returns true if an error was handled (caller should return).
func (h *Handler) handleStoreError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrInvalidPlayer) {
		respondError(w, http.StatusBadRequest, err.Error())
		return true
	}
	h.logger.Error("store error", "error", err, "entity", entity)
	respondError(w, http.StatusInternalServerError, "internal error")
	return true
}
