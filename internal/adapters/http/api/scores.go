package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/arcade/internal/domain/types"
)

// ScoreDependencies defines the interface for leaderboard operations.
type ScoreDependencies interface {
	RecordScore(ctx context.Context, gameID, player string, score int) error
	Leaderboard(ctx context.Context, gameID string) ([]types.RankedEntry, error)
	HighScore(ctx context.Context, gameID string) (types.RankedEntry, error)
}

// scoreRequest is the body of POST /scores.
type scoreRequest struct {
	GameID string `json:"game_id"`
	Player string `json:"player"`
	Score  *int   `json:"score"`
}

func (s scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(s.GameID) == "":
		return errors.New("missing game_id")
	case s.Score == nil:
		return errors.New("missing score")
	}
	return nil
}

// ScoresHandler handles score submissions.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandlePostScore handles POST /scores requests.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"

	var req scoreRequest
	if err := decodeJSON(r, op, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, types.WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.RecordScore(r.Context(), req.GameID, req.Player, *req.Score); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}
