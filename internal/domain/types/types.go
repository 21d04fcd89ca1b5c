// Package types contains common types used across the application
package types

import (
	"regexp"
	"time"
)

// DateLayout is the calendar-day format stored on session records.
const DateLayout = "2006-01-02"

// ScoreEntry is one row of a game's leaderboard.
type ScoreEntry struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// RankedEntry is the read shape of a leaderboard row with its 1-based rank.
type RankedEntry struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// Rank numbers entries in the order given.
func Rank(entries []ScoreEntry) []RankedEntry {
	out := make([]RankedEntry, len(entries))
	for i, e := range entries {
		out[i] = RankedEntry{Rank: i + 1, Player: e.Player, Score: e.Score}
	}
	return out
}

// SessionRecord is one completed play-through. Never edited once appended.
type SessionRecord struct {
	ID         string    `json:"id"`
	GameID     string    `json:"game_id"`
	GameName   string    `json:"game_name"`
	Score      int       `json:"score"`
	Duration   float64   `json:"duration"`
	PlayerName string    `json:"player_name"`
	Timestamp  time.Time `json:"timestamp"`
	Date       string    `json:"date"`
}

// GameAggregate summarises every session of one game.
type GameAggregate struct {
	Name          string    `json:"name"`
	TotalSessions int       `json:"total_sessions"`
	TotalScore    int       `json:"total_score"`
	BestScore     int       `json:"best_score"`
	AverageScore  float64   `json:"average_score"`
	TotalPlaytime float64   `json:"total_playtime"`
	Scores        []int     `json:"scores"`
	Playtimes     []float64 `json:"playtimes"`
}

// Add folds one session into the aggregate. AverageScore is always derived
// from the totals.
func (g *GameAggregate) Add(name string, score int, duration float64) {
	if name != "" {
		g.Name = name
	}
	g.TotalSessions++
	g.TotalScore += score
	g.TotalPlaytime += duration
	g.Scores = append(g.Scores, score)
	g.Playtimes = append(g.Playtimes, duration)
	if score > g.BestScore {
		g.BestScore = score
	}
	g.AverageScore = float64(g.TotalScore) / float64(g.TotalSessions)
}

// Clone returns a deep copy. Empty histories come back as empty, non-nil
// slices so they encode as [] rather than null.
func (g GameAggregate) Clone() GameAggregate {
	g.Scores = append(make([]int, 0, len(g.Scores)), g.Scores...)
	g.Playtimes = append(make([]float64, 0, len(g.Playtimes)), g.Playtimes...)
	return g
}

// GlobalAggregate holds running totals over all games.
type GlobalAggregate struct {
	TotalPlaytime      float64 `json:"total_playtime"`
	TotalSessions      int     `json:"total_sessions"`
	AverageSessionTime float64 `json:"average_session_time"`
}

// Add folds one session duration into the totals.
func (p *GlobalAggregate) Add(duration float64) {
	p.TotalPlaytime += duration
	p.TotalSessions++
	p.AverageSessionTime = p.TotalPlaytime / float64(p.TotalSessions)
}

// GlobalStats is the computed cross-game snapshot.
type GlobalStats struct {
	TotalGamesPlayed   int     `json:"total_games_played"`
	TotalSessions      int     `json:"total_sessions"`
	TotalPlaytime      float64 `json:"total_playtime"`
	AverageSessionTime float64 `json:"average_session_time"`
	TotalScore         int     `json:"total_score"`
	BestOverallScore   int     `json:"best_overall_score"`
}

// Summary is GlobalStats plus the headline games. Game ids are empty when
// nothing has been played.
type Summary struct {
	GlobalStats
	MostPlayedGame     string    `json:"most_played_game,omitempty"`
	BestPerformingGame string    `json:"best_performing_game,omitempty"`
	LastUpdated        time.Time `json:"last_updated"`
}

// ProgressionPoint is one sample of a game's score history.
type ProgressionPoint struct {
	Date     time.Time `json:"date"`
	Score    int       `json:"score"`
	Duration float64   `json:"duration"`
}

// Achievement is a named condition over aggregate state.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// ReadStatus reports how a persisted value was obtained.
type ReadStatus string

const (
	StatusOK         ReadStatus = "ok"
	StatusMissing    ReadStatus = "missing"
	StatusCorrupt    ReadStatus = "corrupt"
	StatusUnreadable ReadStatus = "unreadable"
)

// Degraded reports whether the read fell back to an empty value for a
// reason other than the value simply not existing yet.
func (s ReadStatus) Degraded() bool {
	return s == StatusCorrupt || s == StatusUnreadable
}

var gameIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidGameID reports whether id can be used as a storage key.
func ValidGameID(id string) bool {
	return gameIDPattern.MatchString(id)
}
