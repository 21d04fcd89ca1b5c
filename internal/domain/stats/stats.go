// Package stats keeps the append-only session log and the aggregates
// derived from it, and evaluates achievements over them.
//
// The whole document is held in memory and written back as one unit after
// every session. In-memory state only advances once the write succeeded,
// so a failed RecordSession can be retried without double counting.
package stats

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/arcade/internal/adapters/repository"
	"github.com/okian/arcade/internal/domain/achievement"
	"github.com/okian/arcade/internal/domain/types"
	"github.com/okian/arcade/pkg/logger"
	"github.com/okian/arcade/pkg/metrics"
)

const (
	component = "stats"

	// Key is the store key of the statistics document.
	Key = "stats"

	// DefaultPlayer replaces an empty player name on a session.
	DefaultPlayer = "Player"

	day = 24 * time.Hour

	// maxWindowDays is the widest window time.Duration can express; wider
	// windows include the whole log.
	maxWindowDays = int(math.MaxInt64 / int64(day))
)

// Aggregator records sessions and answers statistics queries.
type Aggregator struct {
	mu    sync.RWMutex
	store repository.Store
	doc   document
	dirty bool

	status  types.ReadStatus
	loadErr error

	now           func() time.Time
	defaultPlayer string
	logger        logger.Logger
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithDefaultPlayer sets the name used when a session has no player.
func WithDefaultPlayer(name string) Option {
	return func(a *Aggregator) {
		if name = strings.TrimSpace(name); name != "" {
			a.defaultPlayer = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(a *Aggregator) {
		if lg != nil {
			a.logger = lg
		}
	}
}

// Open loads the statistics document from store. A missing document starts
// empty; a corrupt or unreadable one also starts empty, is reported by
// LoadStatus, and is overwritten by the next successful write.
func Open(ctx context.Context, store repository.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:         store,
		now:           time.Now,
		defaultPlayer: DefaultPlayer,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.load(ctx)
	return a
}

func (a *Aggregator) load(ctx context.Context) {
	a.doc = newDocument()

	data, err := a.store.Read(ctx, Key)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		a.status = types.StatusMissing
		return
	case err != nil:
		a.degraded(ctx, types.StatusUnreadable, err)
		return
	}

	doc, migrated, skipped, err := decode(data, a.now().Location())
	if err != nil {
		a.degraded(ctx, types.StatusCorrupt, types.WrapKind("stats.load", types.ErrCorruptData, err))
		return
	}
	a.doc = doc
	a.dirty = migrated
	a.status = types.StatusOK
	if skipped > 0 {
		metrics.RecordDroppedRecords(component, skipped)
		a.logger.Warn(ctx, "dropped sessions with unreadable timestamps",
			logger.Int("dropped", skipped),
			logger.Int("kept", len(doc.Sessions)),
		)
	}
	if migrated {
		a.logger.Info(ctx, "statistics document upgraded in memory",
			logger.Int("sessions", len(doc.Sessions)),
			logger.Int("schema_version", schemaVersion),
		)
	}
	metrics.UpdateSessionTotals(len(a.doc.Sessions), a.gamesPlayed())
}

func (a *Aggregator) degraded(ctx context.Context, status types.ReadStatus, err error) {
	a.status = status
	a.loadErr = err
	metrics.RecordDegradedRead(component, string(status))
	a.logger.Warn(ctx, "statistics unavailable, starting empty",
		logger.String("status", string(status)),
		logger.Error(err),
	)
}

// LoadStatus reports how the document was obtained at Open.
func (a *Aggregator) LoadStatus() (types.ReadStatus, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status, a.loadErr
}

// RecordSession appends a session and updates the aggregates, then writes
// the whole document. Invalid input fails with types.ErrValidation; a
// failed write fails with types.ErrPersistence and changes nothing.
func (a *Aggregator) RecordSession(ctx context.Context, gameID, gameName string, score int, duration float64, player string) error {
	const op = "stats.record_session"

	switch {
	case !types.ValidGameID(gameID):
		metrics.RecordValidationError(component)
		return types.Invalid(op, "invalid game id %q", gameID)
	case score < 0:
		metrics.RecordValidationError(component)
		return types.Invalid(op, "score %d is negative", score)
	case duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0):
		metrics.RecordValidationError(component)
		return types.Invalid(op, "duration %v is not a non-negative number", duration)
	}
	if player = strings.TrimSpace(player); player == "" {
		player = a.defaultPlayer
	}
	if gameName = strings.TrimSpace(gameName); gameName == "" {
		gameName = gameID
	}

	now := a.now()
	rec := types.SessionRecord{
		ID:         uuid.NewString(),
		GameID:     gameID,
		GameName:   gameName,
		Score:      score,
		Duration:   duration,
		PlayerName: player,
		Timestamp:  now.UTC(),
		Date:       now.Format(types.DateLayout),
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.doc.clone()
	next.apply(rec)
	if err := a.commit(ctx, next); err != nil {
		return types.WrapKind(op, types.ErrPersistence, err)
	}

	metrics.RecordSession(gameID)
	a.logger.Info(ctx, "session recorded",
		logger.String("game", gameID),
		logger.String("player", player),
		logger.Int("score", score),
		logger.Float64("duration", duration),
	)
	return nil
}

// commit writes next and, on success, makes it the current state.
// Callers hold a.mu.
func (a *Aggregator) commit(ctx context.Context, next document) error {
	next.SchemaVersion = schemaVersion
	next.LastUpdated = a.now().UTC()

	data, err := encode(next)
	if err != nil {
		return err
	}
	if err := a.store.Write(ctx, Key, data); err != nil {
		metrics.RecordPersistenceError(component)
		a.logger.Error(ctx, "failed to save statistics", logger.Error(err))
		return err
	}

	a.doc = next
	a.dirty = false
	a.status = types.StatusOK
	a.loadErr = nil
	metrics.UpdateSessionTotals(len(a.doc.Sessions), a.gamesPlayed())
	return nil
}

// Rebuild recomputes every aggregate from the session log and persists the
// result.
func (a *Aggregator) Rebuild(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.doc.clone()
	next.rebuild()
	if err := a.commit(ctx, next); err != nil {
		return types.WrapKind("stats.rebuild", types.ErrPersistence, err)
	}
	return nil
}

// Flush writes the document if loading upgraded or repaired it and no
// session has been recorded since.
func (a *Aggregator) Flush(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.dirty {
		return nil
	}
	if err := a.commit(ctx, a.doc.clone()); err != nil {
		return types.WrapKind("stats.flush", types.ErrPersistence, err)
	}
	return nil
}

// GetGameStats returns gameID's aggregate, or an empty one for unknown games.
func (a *Aggregator) GetGameStats(gameID string) types.GameAggregate {
	a.mu.RLock()
	defer a.mu.RUnlock()

	g, ok := a.doc.Games[gameID]
	if !ok {
		return types.GameAggregate{Scores: []int{}, Playtimes: []float64{}}
	}
	return g.Clone()
}

// GetGlobalStats computes the cross-game snapshot.
func (a *Aggregator) GetGlobalStats() types.GlobalStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.globalStats()
}

func (a *Aggregator) globalStats() types.GlobalStats {
	gs := types.GlobalStats{
		TotalGamesPlayed:   a.gamesPlayed(),
		TotalSessions:      a.doc.Performance.TotalSessions,
		TotalPlaytime:      a.doc.Performance.TotalPlaytime,
		AverageSessionTime: a.doc.Performance.AverageSessionTime,
	}
	for _, g := range a.doc.Games {
		gs.TotalScore += g.TotalScore
		if g.BestScore > gs.BestOverallScore {
			gs.BestOverallScore = g.BestScore
		}
	}
	return gs
}

func (a *Aggregator) gamesPlayed() int {
	n := 0
	for _, g := range a.doc.Games {
		if g.TotalSessions > 0 {
			n++
		}
	}
	return n
}

// GetRecentSessions returns sessions from the last days days, in log order.
func (a *Aggregator) GetRecentSessions(days int) []types.SessionRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cutoff := a.cutoff(days)
	out := make([]types.SessionRecord, 0)
	for _, s := range a.doc.Sessions {
		if !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// GetScoreProgression returns gameID's sessions from the last days days as
// points sorted by date ascending.
func (a *Aggregator) GetScoreProgression(gameID string, days int) []types.ProgressionPoint {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cutoff := a.cutoff(days)
	out := make([]types.ProgressionPoint, 0)
	for _, s := range a.doc.Sessions {
		if s.GameID != gameID || s.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, types.ProgressionPoint{Date: s.Timestamp, Score: s.Score, Duration: s.Duration})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (a *Aggregator) cutoff(days int) time.Time {
	if days < 0 {
		days = 0
	}
	if days >= maxWindowDays {
		return time.Time{}
	}
	return a.now().Add(-time.Duration(days) * day)
}

// GetAchievements returns the unlocked achievements in catalog order.
func (a *Aggregator) GetAchievements() []types.Achievement {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return achievement.Unlocked(a.achievementState())
}

// AllAchievements returns the whole catalog with unlock flags.
func (a *Aggregator) AllAchievements() []types.Achievement {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return achievement.All(a.achievementState())
}

func (a *Aggregator) achievementState() achievement.State {
	s := achievement.State{Global: a.globalStats()}
	if len(a.doc.Sessions) > 0 {
		first := a.doc.Sessions[0].Timestamp
		s.FirstSession = &first
	}
	return s
}

// MostPlayedGame returns the game with the most sessions. Ties go to the
// lexically smallest id.
func (a *Aggregator) MostPlayedGame() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bestBy(func(g types.GameAggregate) float64 { return float64(g.TotalSessions) })
}

// BestPerformingGame returns the game with the highest average score. Ties
// go to the lexically smallest id.
func (a *Aggregator) BestPerformingGame() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bestBy(func(g types.GameAggregate) float64 { return g.AverageScore })
}

func (a *Aggregator) bestBy(key func(types.GameAggregate) float64) (string, bool) {
	best, found := "", false
	var bestVal float64
	for id, g := range a.doc.Games {
		if g.TotalSessions == 0 {
			continue
		}
		v := key(g)
		if !found || v > bestVal || (v == bestVal && id < best) {
			best, bestVal, found = id, v, true
		}
	}
	return best, found
}

// SessionCount returns the number of logged sessions.
func (a *Aggregator) SessionCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.doc.Sessions)
}

// LastUpdated returns the time of the last successful write.
func (a *Aggregator) LastUpdated() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.doc.LastUpdated
}

// FormatDuration renders seconds for display.
func (a *Aggregator) FormatDuration(seconds float64) string {
	return FormatDuration(seconds)
}
