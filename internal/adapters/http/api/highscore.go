package api

import (
	"net/http"
)

// HighScoreHandler handles high score requests.
type HighScoreHandler struct {
	deps ScoreDependencies
}

// NewHighScoreHandler creates a new high score handler.
func NewHighScoreHandler(deps ScoreDependencies) *HighScoreHandler {
	return &HighScoreHandler{deps: deps}
}

// HandleGetHighScore handles GET /highscore/{game_id} requests. An empty
// leaderboard answers 404.
func (h *HighScoreHandler) HandleGetHighScore(w http.ResponseWriter, r *http.Request) {
	entry, err := h.deps.HighScore(r.Context(), r.PathValue("game_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
