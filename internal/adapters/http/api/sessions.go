package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/arcade/internal/domain/types"
)

// SessionDependencies defines the interface for session logging.
type SessionDependencies interface {
	RecordSession(ctx context.Context, gameID, gameName string, score int, duration float64, player string) error
	RecentSessions(ctx context.Context, days int) ([]types.SessionRecord, error)
	RecentDays() int
}

// sessionRequest is the body of POST /sessions.
type sessionRequest struct {
	GameID   string   `json:"game_id"`
	GameName string   `json:"game_name"`
	Score    *int     `json:"score"`
	Duration *float64 `json:"duration"`
	Player   string   `json:"player"`
}

func (s sessionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.GameID) == "":
		return errors.New("missing game_id")
	case s.Score == nil:
		return errors.New("missing score")
	case s.Duration == nil:
		return errors.New("missing duration")
	}
	return nil
}

// SessionsHandler handles session logging and listing.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandlePostSession handles POST /sessions requests.
func (h *SessionsHandler) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_session"

	var req sessionRequest
	if err := decodeJSON(r, op, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, types.WrapKind(op, ErrBadRequest, err))
		return
	}
	err := h.deps.RecordSession(r.Context(), req.GameID, req.GameName, *req.Score, *req.Duration, req.Player)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}

// HandleGetSessions handles GET /sessions?days=N requests.
func (h *SessionsHandler) HandleGetSessions(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r, "api.get_sessions", h.deps.RecentDays())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sessions, err := h.deps.RecentSessions(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
