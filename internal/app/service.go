// Package service wires the score ledger and the statistics aggregator to a
// store and exposes the operations the HTTP API needs.
package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okian/arcade/internal/adapters/repository"
	"github.com/okian/arcade/internal/domain/ledger"
	"github.com/okian/arcade/internal/domain/stats"
	"github.com/okian/arcade/internal/domain/types"
	"github.com/okian/arcade/pkg/logger"
)

// Storage backends understood by Start.
const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the arcade.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	ledger  *ledger.Ledger
	stats   *stats.Aggregator
	ownsDB  bool
	started bool

	// Configuration
	dataDir         string
	backend         string
	boltFile        string
	leaderboardSize int
	defaultPlayer   string
	recentDays      int
	progressionDays int
	now             func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the directory holding persisted state.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithBackend selects the file or bolt store. boltFile is the database file
// name inside the data directory and is ignored for the file backend.
func WithBackend(backend, boltFile string) Option {
	return func(s *Service) {
		if backend != "" {
			s.backend = backend
		}
		if boltFile != "" {
			s.boltFile = boltFile
		}
	}
}

// WithStore uses an already opened store instead of building one in Start.
// The caller keeps ownership and closes it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLeaderboardSize sets how many entries each leaderboard keeps.
func WithLeaderboardSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardSize = n
		}
	}
}

// WithDefaultPlayer sets the name used when a request has no player.
func WithDefaultPlayer(name string) Option {
	return func(s *Service) {
		if name = strings.TrimSpace(name); name != "" {
			s.defaultPlayer = name
		}
	}
}

// WithWindows sets the default day windows for recent sessions and score
// progression.
func WithWindows(recentDays, progressionDays int) Option {
	return func(s *Service) {
		if recentDays >= 0 {
			s.recentDays = recentDays
		}
		if progressionDays >= 0 {
			s.progressionDays = progressionDays
		}
	}
}

// WithClock replaces time.Now for the statistics aggregator.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:         "data",
		backend:         BackendFile,
		boltFile:        "arcade.db",
		leaderboardSize: ledger.DefaultCapacity,
		defaultPlayer:   stats.DefaultPlayer,
		recentDays:      7,
		progressionDays: 30,
		now:             time.Now,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and loads the ledger and the aggregator.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting arcade service...")

	if s.store == nil {
		store, err := s.openStore()
		if err != nil {
			return types.Wrap("service.start", err)
		}
		s.store = store
		s.ownsDB = true
	}

	s.ledger = ledger.New(s.store,
		ledger.WithCapacity(s.leaderboardSize),
		ledger.WithLogger(s.logger.Named("ledger")),
	)
	s.stats = stats.Open(ctx, s.store,
		stats.WithClock(s.now),
		stats.WithDefaultPlayer(s.defaultPlayer),
		stats.WithLogger(s.logger.Named("stats")),
	)

	status, loadErr := s.stats.LoadStatus()
	fields := []logger.Field{
		logger.String("backend", s.backend),
		logger.String("dataDir", s.dataDir),
		logger.Int("leaderboardSize", s.leaderboardSize),
		logger.String("statsStatus", string(status)),
		logger.Int("sessions", s.stats.SessionCount()),
	}
	if loadErr != nil {
		fields = append(fields, logger.Error(loadErr))
	}
	s.started = true
	s.logger.Info(ctx, "arcade service started", fields...)
	return nil
}

func (s *Service) openStore() (repository.Store, error) {
	const op = "service.open_store"

	var (
		store repository.Store
		err   error
	)
	switch s.backend {
	case BackendBolt:
		store, err = repository.OpenBoltStore(filepath.Join(s.dataDir, s.boltFile))
	case BackendFile:
		store, err = repository.NewFileStore(s.dataDir)
	default:
		return nil, types.Invalid(op, "unknown backend %q", s.backend)
	}
	if err != nil {
		return nil, types.WrapKind(op, types.ErrPersistence, err)
	}
	return store, nil
}

// Stop writes any pending statistics upgrade and closes the store it opened.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping arcade service...")

	if err := s.stats.Flush(ctx); err != nil {
		s.logger.Error(ctx, "failed to flush statistics", logger.Error(err))
	}
	if s.ownsDB {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "failed to close store", logger.Error(err))
		}
		s.store = nil
		s.ownsDB = false
	}

	s.started = false
	s.logger.Info(ctx, "arcade service stopped")
}

func (s *Service) components() (*ledger.Ledger, *stats.Aggregator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.ledger, s.stats, nil
}

func (s *Service) player(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return s.defaultPlayer
}

// RecordScore adds a score to gameID's leaderboard. An empty player is
// replaced with the placeholder name.
func (s *Service) RecordScore(ctx context.Context, gameID, player string, score int) error {
	l, _, err := s.components()
	if err != nil {
		return err
	}
	return l.Record(ctx, gameID, s.player(player), score)
}

// Leaderboard returns gameID's ranked entries, best first.
func (s *Service) Leaderboard(ctx context.Context, gameID string) ([]types.RankedEntry, error) {
	l, _, err := s.components()
	if err != nil {
		return nil, err
	}
	if !types.ValidGameID(gameID) {
		return nil, types.Invalid("service.leaderboard", "invalid game id %q", gameID)
	}
	return types.Rank(l.GetLeaderboard(ctx, gameID)), nil
}

// HighScore returns gameID's best entry, or an error of kind
// types.ErrNotFound when nothing has been recorded.
func (s *Service) HighScore(ctx context.Context, gameID string) (types.RankedEntry, error) {
	const op = "service.high_score"

	l, _, err := s.components()
	if err != nil {
		return types.RankedEntry{}, err
	}
	if !types.ValidGameID(gameID) {
		return types.RankedEntry{}, types.Invalid(op, "invalid game id %q", gameID)
	}
	e, ok := l.GetHighScore(ctx, gameID)
	if !ok {
		return types.RankedEntry{}, types.NewKind(op, types.ErrNotFound)
	}
	return types.RankedEntry{Rank: 1, Player: e.Player, Score: e.Score}, nil
}

// RecordSession logs a finished session.
func (s *Service) RecordSession(ctx context.Context, gameID, gameName string, score int, duration float64, player string) error {
	_, a, err := s.components()
	if err != nil {
		return err
	}
	return a.RecordSession(ctx, gameID, gameName, score, duration, player)
}

// RecentSessions returns the sessions of the last days days.
func (s *Service) RecentSessions(_ context.Context, days int) ([]types.SessionRecord, error) {
	_, a, err := s.components()
	if err != nil {
		return nil, err
	}
	return a.GetRecentSessions(days), nil
}

// GameStats returns gameID's aggregate.
func (s *Service) GameStats(_ context.Context, gameID string) (types.GameAggregate, error) {
	_, a, err := s.components()
	if err != nil {
		return types.GameAggregate{}, err
	}
	if !types.ValidGameID(gameID) {
		return types.GameAggregate{}, types.Invalid("service.game_stats", "invalid game id %q", gameID)
	}
	return a.GetGameStats(gameID), nil
}

// Progression returns gameID's score points over the last days days.
func (s *Service) Progression(_ context.Context, gameID string, days int) ([]types.ProgressionPoint, error) {
	_, a, err := s.components()
	if err != nil {
		return nil, err
	}
	if !types.ValidGameID(gameID) {
		return nil, types.Invalid("service.progression", "invalid game id %q", gameID)
	}
	return a.GetScoreProgression(gameID, days), nil
}

// Summary returns the cross-game statistics and the headline games.
func (s *Service) Summary(_ context.Context) (types.Summary, error) {
	_, a, err := s.components()
	if err != nil {
		return types.Summary{}, err
	}
	sum := types.Summary{GlobalStats: a.GetGlobalStats(), LastUpdated: a.LastUpdated()}
	sum.MostPlayedGame, _ = a.MostPlayedGame()
	sum.BestPerformingGame, _ = a.BestPerformingGame()
	return sum, nil
}

// Achievements returns the unlocked achievements, or the whole catalog
// with unlock flags when all is set.
func (s *Service) Achievements(_ context.Context, all bool) ([]types.Achievement, error) {
	_, a, err := s.components()
	if err != nil {
		return nil, err
	}
	if all {
		return a.AllAchievements(), nil
	}
	return a.GetAchievements(), nil
}

// RecentDays is the default window for RecentSessions.
func (s *Service) RecentDays() int { return s.recentDays }

// ProgressionDays is the default window for Progression.
func (s *Service) ProgressionDays() int { return s.progressionDays }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started":         s.started,
		"backend":         s.backend,
		"dataDir":         s.dataDir,
		"leaderboardSize": s.leaderboardSize,
	}

	if s.started {
		status, _ := s.stats.LoadStatus()
		out["statsStatus"] = string(status)
		out["totalSessions"] = s.stats.SessionCount()
		out["gamesPlayed"] = s.stats.GetGlobalStats().TotalGamesPlayed
		if t := s.stats.LastUpdated(); !t.IsZero() {
			out["lastUpdated"] = t
		}
	}
	return out
}
