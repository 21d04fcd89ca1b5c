package api

import (
	"context"
	"net/http"

	"github.com/okian/arcade/internal/domain/types"
)

// GameDependencies defines the interface for per-game statistics.
type GameDependencies interface {
	GameStats(ctx context.Context, gameID string) (types.GameAggregate, error)
	Progression(ctx context.Context, gameID string, days int) ([]types.ProgressionPoint, error)
	ProgressionDays() int
}

// GamesHandler handles per-game statistics requests.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleGetGameStats handles GET /games/{game_id}/stats requests. Unknown
// games answer an empty aggregate.
func (h *GamesHandler) HandleGetGameStats(w http.ResponseWriter, r *http.Request) {
	agg, err := h.deps.GameStats(r.Context(), r.PathValue("game_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// HandleGetProgression handles GET /games/{game_id}/progression?days=N requests.
func (h *GamesHandler) HandleGetProgression(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r, "api.get_progression", h.deps.ProgressionDays())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	points, err := h.deps.Progression(r.Context(), r.PathValue("game_id"), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}
