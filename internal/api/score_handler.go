package api

import (
	"net/http"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
)

// ── Request / Response types ────────────────────────────────────────────────

type ScoreResponse struct {
	PlayerID    string  `json:"player_id" example:"a1b2c3d4e5f6g7h8"`
	Correct     int     `json:"correct" example:"12"`
	Incorrect   int     `json:"incorrect" example:"8"`
	Answered    int     `json:"answered" example:"20"`
	SuccessRate float64 `json:"success_rate" example:"60"`
	Tier        string  `json:"tier" example:"Yürü be babuş!"`
}

func newScoreResponse(playerID string, state score.State) ScoreResponse {
	rate := score.SuccessRate(state.Correct, state.Total())
	return ScoreResponse{
		PlayerID:    playerID,
		Correct:     state.Correct,
		Incorrect:   state.Incorrect,
		Answered:    state.Total(),
		SuccessRate: rate,
		Tier:        score.TierFor(rate).Title,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// getScore returns the caller's score.
// @Summary      Get the player's score
// @Description  Returns the stored counters of the player identified by the quiz_player cookie or the player query parameter.
// @Tags         Score
// @Produce      json
// @Param        player  query     string  false  "Player id, defaults to the cookie"
// @Success      200     {object}  ScoreResponse
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/score [get]
func (h *Handler) getScore(w http.ResponseWriter, r *http.Request) {
	playerID, ok := h.player(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "player is required")
		return
	}

	state, err := h.scores.Load(r.Context(), playerID)
	if h.handleStoreError(w, err, "score") {
		return
	}

	respondJSON(w, http.StatusOK, newScoreResponse(playerID, state))
}

// resetScore zeroes the caller's score.
// @Summary      Reset the player's score
// @Description  Clears both counters. Resetting an empty score is a no-op.
// @Tags         Score
// @Param        player  query  string  false  "Player id, defaults to the cookie"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/score [delete]
func (h *Handler) resetScore(w http.ResponseWriter, r *http.Request) {
	playerID, ok := h.player(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "player is required")
		return
	}

	if h.handleStoreError(w, h.scores.Reset(r.Context(), playerID), "score") {
		return
	}

	h.logger.Info("score reset via api", "player_id", playerID)
	w.WriteHeader(http.StatusNoContent)
}
