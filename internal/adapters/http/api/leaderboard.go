package api

import (
	"net/http"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps ScoreDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps ScoreDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /leaderboard/{game_id} requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.deps.Leaderboard(r.Context(), r.PathValue("game_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
