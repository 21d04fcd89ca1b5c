// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/arcade/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	SessionDependencies
	GameDependencies
	SummaryDependencies
	AchievementDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	scoresHandler       *ScoresHandler
	leaderboardHandler  *LeaderboardHandler
	highScoreHandler    *HighScoreHandler
	sessionsHandler     *SessionsHandler
	gamesHandler        *GamesHandler
	summaryHandler      *SummaryHandler
	achievementsHandler *AchievementsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		scoresHandler:       NewScoresHandler(deps),
		leaderboardHandler:  NewLeaderboardHandler(deps),
		highScoreHandler:    NewHighScoreHandler(deps),
		sessionsHandler:     NewSessionsHandler(deps),
		gamesHandler:        NewGamesHandler(deps),
		summaryHandler:      NewSummaryHandler(deps),
		achievementsHandler: NewAchievementsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("GET /leaderboard/{game_id}", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /highscore/{game_id}", MetricsMiddleware(s.highScoreHandler.HandleGetHighScore, "highscore"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandlePostSession, "sessions"))
	mux.HandleFunc("GET /sessions", MetricsMiddleware(s.sessionsHandler.HandleGetSessions, "sessions"))
	mux.HandleFunc("GET /games/{game_id}/stats", MetricsMiddleware(s.gamesHandler.HandleGetGameStats, "game_stats"))
	mux.HandleFunc("GET /games/{game_id}/progression", MetricsMiddleware(s.gamesHandler.HandleGetProgression, "progression"))
	mux.HandleFunc("GET /summary", MetricsMiddleware(s.summaryHandler.HandleGetSummary, "summary"))
	mux.HandleFunc("GET /achievements", MetricsMiddleware(s.achievementsHandler.HandleGetAchievements, "achievements"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps domain error kinds to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrValidation), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "not_saved", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func decodeJSON(r *http.Request, op string, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return types.WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// daysParam reads the "days" query parameter, falling back to def when it
// is absent.
func daysParam(r *http.Request, op string, def int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.WrapKind(op, ErrBadRequest, errors.New("days must be an integer"))
	}
	return n, nil
}
