// Package ledger keeps the bounded, ranked best scores of every game.
//
// Every call re-reads the board from the store: another process's write is
// always visible and nothing is cached between calls. Reads favour
// availability (a corrupt or unreadable board reads as empty) while writes
// surface their failures.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/okian/arcade/internal/adapters/repository"
	"github.com/okian/arcade/internal/domain/types"
	"github.com/okian/arcade/pkg/logger"
	"github.com/okian/arcade/pkg/metrics"
)

// DefaultCapacity is the number of entries a leaderboard keeps.
const DefaultCapacity = 10

const (
	component = "ledger"
	keyPrefix = "scores/"
)

// Snapshot is the typed result of loading a leaderboard. Status tells the
// caller whether Entries came from storage or from the empty fallback.
type Snapshot struct {
	Entries []types.ScoreEntry
	Status  types.ReadStatus
	Err     error
}

// Ledger records and ranks scores per game.
type Ledger struct {
	mu       sync.Mutex
	store    repository.Store
	capacity int
	logger   logger.Logger
}

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithCapacity sets how many entries each leaderboard keeps.
func WithCapacity(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithLogger sets the logger used for degraded reads and failed writes.
func WithLogger(lg logger.Logger) Option {
	return func(l *Ledger) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// New returns a ledger persisting into store.
func New(store repository.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		capacity: DefaultCapacity,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Capacity returns the leaderboard bound.
func (l *Ledger) Capacity() int { return l.capacity }

// Record inserts a score into gameID's leaderboard, keeping only the best
// Capacity entries. Invalid input fails with types.ErrValidation before any
// I/O; a failed write fails with types.ErrPersistence.
func (l *Ledger) Record(ctx context.Context, gameID, player string, score int) error {
	const op = "ledger.record"

	player = strings.TrimSpace(player)
	switch {
	case !types.ValidGameID(gameID):
		metrics.RecordValidationError(component)
		return types.Invalid(op, "invalid game id %q", gameID)
	case player == "":
		metrics.RecordValidationError(component)
		return types.Invalid(op, "player name is empty")
	case score < 0:
		metrics.RecordValidationError(component)
		return types.Invalid(op, "score %d is negative", score)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.load(ctx, gameID)
	entries := Insert(snap.Entries, types.ScoreEntry{Player: player, Score: score}, l.capacity)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return types.WrapKind(op, types.ErrPersistence, err)
	}
	if err := l.store.Write(ctx, keyPrefix+gameID, data); err != nil {
		metrics.RecordPersistenceError(component)
		l.logger.Error(ctx, "failed to save score",
			logger.String("game", gameID),
			logger.String("player", player),
			logger.Int("score", score),
			logger.Error(err),
		)
		return types.WrapKind(op, types.ErrPersistence, err)
	}

	metrics.RecordScore(gameID, len(entries))
	l.logger.Debug(ctx, "score recorded",
		logger.String("game", gameID),
		logger.String("player", player),
		logger.Int("score", score),
	)
	return nil
}

// Load reads gameID's leaderboard and reports how it was obtained.
func (l *Ledger) Load(ctx context.Context, gameID string) Snapshot {
	if !types.ValidGameID(gameID) {
		return Snapshot{Entries: []types.ScoreEntry{}, Status: types.StatusMissing}
	}
	return l.load(ctx, gameID)
}

// GetLeaderboard returns gameID's entries, best first. Missing or damaged
// storage yields an empty slice.
func (l *Ledger) GetLeaderboard(ctx context.Context, gameID string) []types.ScoreEntry {
	return l.Load(ctx, gameID).Entries
}

// GetHighScore returns the best entry, or false when the board is empty.
func (l *Ledger) GetHighScore(ctx context.Context, gameID string) (types.ScoreEntry, bool) {
	entries := l.GetLeaderboard(ctx, gameID)
	if len(entries) == 0 {
		return types.ScoreEntry{}, false
	}
	return entries[0], true
}

func (l *Ledger) load(ctx context.Context, gameID string) Snapshot {
	data, err := l.store.Read(ctx, keyPrefix+gameID)
	if errors.Is(err, repository.ErrNotFound) {
		return Snapshot{Entries: []types.ScoreEntry{}, Status: types.StatusMissing}
	}
	if err != nil {
		return l.degraded(ctx, gameID, types.StatusUnreadable, err)
	}

	entries, err := decode(data)
	if err != nil {
		return l.degraded(ctx, gameID, types.StatusCorrupt, types.WrapKind("ledger.load", types.ErrCorruptData, err))
	}
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	return Snapshot{Entries: entries, Status: types.StatusOK}
}

func (l *Ledger) degraded(ctx context.Context, gameID string, status types.ReadStatus, err error) Snapshot {
	metrics.RecordDegradedRead(component, string(status))
	l.logger.Warn(ctx, "leaderboard unavailable, treating as empty",
		logger.String("game", gameID),
		logger.String("status", string(status)),
		logger.Error(err),
	)
	return Snapshot{Entries: []types.ScoreEntry{}, Status: status, Err: err}
}

// decode parses a stored board, dropping malformed rows and restoring the
// ranking order in case the file was edited by hand.
func decode(data []byte) ([]types.ScoreEntry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	entries := make([]types.ScoreEntry, 0, len(raw))
	for _, r := range raw {
		var e types.ScoreEntry
		if err := json.Unmarshal(r, &e); err != nil {
			continue
		}
		e.Player = strings.TrimSpace(e.Player)
		if e.Player == "" || e.Score < 0 {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries, nil
}

// Insert appends e, stable-sorts by score descending and truncates to
// capacity. Equal scores keep arrival order, so a newcomer ranks below
// existing entries with the same score. The input slice is not modified.
func Insert(entries []types.ScoreEntry, e types.ScoreEntry, capacity int) []types.ScoreEntry {
	out := make([]types.ScoreEntry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, e)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > capacity {
		out = out[:capacity]
	}
	return out
}
