// Package achievement declares the fixed achievement catalog and evaluates
// it against aggregate state. Nothing here is persisted: every query
// re-evaluates the predicates, so an achievement can lock again if the
// underlying totals regress.
package achievement

import (
	"time"

	"github.com/okian/arcade/internal/domain/types"
)

// Achievement identifiers.
const (
	FirstGame = "first_game"
	TenGames  = "ten_games"
	HighScore = "high_score"
	OneHour   = "one_hour"
)

// Thresholds used by the predicates.
const (
	tenGamesSessions = 10
	highScoreMinimum = 100
	oneHourPlaytime  = 3600.0
)

// State is the aggregate snapshot the predicates read.
type State struct {
	Global       types.GlobalStats
	FirstSession *time.Time
}

type definition struct {
	id          string
	name        string
	description string
	icon        string
	unlocked    func(State) bool
	unlockedAt  func(State) *time.Time
}

// catalog is evaluated in declaration order.
var catalog = []definition{
	{
		id:          FirstGame,
		name:        "First Steps",
		description: "Played your first game",
		icon:        "🎮",
		unlocked:    func(s State) bool { return s.Global.TotalSessions >= 1 },
		unlockedAt:  func(s State) *time.Time { return s.FirstSession },
	},
	{
		id:          TenGames,
		name:        "Regular Player",
		description: "Played 10 games",
		icon:        "🏆",
		unlocked:    func(s State) bool { return s.Global.TotalSessions >= tenGamesSessions },
	},
	{
		id:          HighScore,
		name:        "High Scorer",
		description: "Reached a score of 100",
		icon:        "⭐",
		unlocked:    func(s State) bool { return s.Global.BestOverallScore >= highScoreMinimum },
	},
	{
		id:          OneHour,
		name:        "Enthusiast",
		description: "Played for more than an hour",
		icon:        "⏰",
		unlocked:    func(s State) bool { return s.Global.TotalPlaytime >= oneHourPlaytime },
	},
}

// All evaluates every catalog entry, locked ones included.
func All(s State) []types.Achievement {
	out := make([]types.Achievement, 0, len(catalog))
	for _, d := range catalog {
		a := types.Achievement{
			ID:          d.id,
			Name:        d.name,
			Description: d.description,
			Icon:        d.icon,
			Unlocked:    d.unlocked(s),
		}
		if a.Unlocked && d.unlockedAt != nil {
			a.UnlockedAt = d.unlockedAt(s)
		}
		out = append(out, a)
	}
	return out
}

// Unlocked returns only the achievements whose predicate holds.
func Unlocked(s State) []types.Achievement {
	all := All(s)
	out := make([]types.Achievement, 0, len(all))
	for _, a := range all {
		if a.Unlocked {
			out = append(out, a)
		}
	}
	return out
}

// IDs lists the catalog identifiers in evaluation order.
func IDs() []string {
	out := make([]string, len(catalog))
	for i, d := range catalog {
		out[i] = d.id
	}
	return out
}
