package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/arcade/internal/domain/types"
)

// AchievementDependencies defines the interface for achievement queries.
type AchievementDependencies interface {
	Achievements(ctx context.Context, all bool) ([]types.Achievement, error)
}

// AchievementsHandler handles achievement requests.
type AchievementsHandler struct {
	deps AchievementDependencies
}

// NewAchievementsHandler creates a new achievements handler.
func NewAchievementsHandler(deps AchievementDependencies) *AchievementsHandler {
	return &AchievementsHandler{deps: deps}
}

// HandleGetAchievements handles GET /achievements requests. With ?all=true
// the whole catalog is returned with unlock flags.
func (h *AchievementsHandler) HandleGetAchievements(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_achievements"

	all := false
	if raw := r.URL.Query().Get("all"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeServiceError(w, types.WrapKind(op, ErrBadRequest, errors.New("all must be a boolean")))
			return
		}
		all = v
	}
	list, err := h.deps.Achievements(r.Context(), all)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
