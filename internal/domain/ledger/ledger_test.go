package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/arcade/internal/adapters/repository"
	"github.com/okian/arcade/internal/domain/ledger"
	"github.com/okian/arcade/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// flakyStore wraps a Store and injects read/write failures.
type flakyStore struct {
	repository.Store
	mu       sync.Mutex
	readErr  error
	writeErr error
	writes   int
}

func (f *flakyStore) Read(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	err := f.readErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Store.Read(ctx, key)
}

func (f *flakyStore) Write(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	f.writes++
	err := f.writeErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Write(ctx, key, data)
}

func newFileLedger(t *testing.T, opts ...ledger.Option) (*ledger.Ledger, *flakyStore, string) {
	root := t.TempDir()
	fs, err := repository.NewFileStore(root)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	store := &flakyStore{Store: fs}
	return ledger.New(store, opts...), store, root
}

func TestLedger_Record(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		ctx := context.Background()
		l, store, root := newFileLedger(t)

		Convey("When three players record scores", func() {
			So(l.Record(ctx, "typer_game", "Alice", 50), ShouldBeNil)
			So(l.Record(ctx, "typer_game", "Bob", 80), ShouldBeNil)
			So(l.Record(ctx, "typer_game", "Carol", 30), ShouldBeNil)

			Convey("Then the board is ranked by score", func() {
				So(l.GetLeaderboard(ctx, "typer_game"), ShouldResemble, []types.ScoreEntry{
					{Player: "Bob", Score: 80},
					{Player: "Alice", Score: 50},
					{Player: "Carol", Score: 30},
				})
			})

			Convey("And the high score is Bob's", func() {
				best, ok := l.GetHighScore(ctx, "typer_game")
				So(ok, ShouldBeTrue)
				So(best, ShouldResemble, types.ScoreEntry{Player: "Bob", Score: 80})
			})

			Convey("And a fresh ledger over the same directory sees the same board", func() {
				fs, err := repository.NewFileStore(root)
				So(err, ShouldBeNil)
				again := ledger.New(fs)
				So(again.GetLeaderboard(ctx, "typer_game"), ShouldResemble, l.GetLeaderboard(ctx, "typer_game"))
			})
		})

		Convey("When player names carry whitespace", func() {
			So(l.Record(ctx, "g", "  Dana  ", 5), ShouldBeNil)

			Convey("Then the stored name is trimmed", func() {
				So(l.GetLeaderboard(ctx, "g")[0].Player, ShouldEqual, "Dana")
			})
		})

		Convey("When games are recorded separately", func() {
			So(l.Record(ctx, "game1", "P1", 100), ShouldBeNil)
			So(l.Record(ctx, "game2", "P2", 200), ShouldBeNil)

			Convey("Then boards do not mix", func() {
				So(l.GetLeaderboard(ctx, "game1"), ShouldResemble, []types.ScoreEntry{{Player: "P1", Score: 100}})
				So(l.GetLeaderboard(ctx, "game2"), ShouldResemble, []types.ScoreEntry{{Player: "P2", Score: 200}})
			})
		})

		Convey("When input is invalid", func() {
			So(l.Record(ctx, "g", "Seed", 10), ShouldBeNil)
			writes := store.writes

			errEmpty := l.Record(ctx, "g", "", 10)
			errBlank := l.Record(ctx, "g", "   ", 10)
			errNeg := l.Record(ctx, "g", "x", -1)
			errGame := l.Record(ctx, "../g", "x", 1)

			Convey("Then each fails with a validation error", func() {
				So(errors.Is(errEmpty, types.ErrValidation), ShouldBeTrue)
				So(errors.Is(errBlank, types.ErrValidation), ShouldBeTrue)
				So(errors.Is(errNeg, types.ErrValidation), ShouldBeTrue)
				So(errors.Is(errGame, types.ErrValidation), ShouldBeTrue)
			})

			Convey("And storage was never touched", func() {
				So(store.writes, ShouldEqual, writes)
				So(l.GetLeaderboard(ctx, "g"), ShouldResemble, []types.ScoreEntry{{Player: "Seed", Score: 10}})
			})
		})

		Convey("When the board has no entries", func() {
			_, ok := l.GetHighScore(ctx, "nothing_here")

			Convey("Then there is no high score", func() {
				So(ok, ShouldBeFalse)
				So(l.GetLeaderboard(ctx, "nothing_here"), ShouldBeEmpty)
				So(l.Load(ctx, "nothing_here").Status, ShouldEqual, types.StatusMissing)
			})
		})
	})
}

func TestLedger_Bounds(t *testing.T) {
	Convey("Given a full board", t, func() {
		ctx := context.Background()
		l, _, _ := newFileLedger(t)
		for i := 0; i < 10; i++ {
			So(l.Record(ctx, "g", fmt.Sprintf("P%d", i), 100+i*10), ShouldBeNil)
		}
		full := l.GetLeaderboard(ctx, "g")
		So(len(full), ShouldEqual, 10)

		Convey("When a score lower than all entries arrives", func() {
			So(l.Record(ctx, "g", "Low", 1), ShouldBeNil)

			Convey("Then the board is unchanged", func() {
				So(l.GetLeaderboard(ctx, "g"), ShouldResemble, full)
			})
		})

		Convey("When a new maximum arrives", func() {
			So(l.Record(ctx, "g", "Top", 1000), ShouldBeNil)

			Convey("Then it becomes the high score and the lowest is evicted", func() {
				best, ok := l.GetHighScore(ctx, "g")
				So(ok, ShouldBeTrue)
				So(best.Score, ShouldEqual, 1000)
				board := l.GetLeaderboard(ctx, "g")
				So(len(board), ShouldEqual, 10)
				So(board[9].Score, ShouldEqual, 110)
			})
		})

		Convey("When a tie with the lowest entry arrives", func() {
			So(l.Record(ctx, "g", "Tie", 100), ShouldBeNil)

			Convey("Then the earlier entry keeps its place and the newcomer is dropped", func() {
				board := l.GetLeaderboard(ctx, "g")
				So(board[9], ShouldResemble, types.ScoreEntry{Player: "P0", Score: 100})
			})
		})
	})

	Convey("Given random sequences of scores", t, func() {
		ctx := context.Background()
		l, _, _ := newFileLedger(t, ledger.WithCapacity(10))
		r := rand.New(rand.NewSource(42))

		for i := 0; i < 60; i++ {
			So(l.Record(ctx, "rnd", "p", r.Intn(500)), ShouldBeNil)
			board := l.GetLeaderboard(ctx, "rnd")
			So(len(board), ShouldBeLessThanOrEqualTo, 10)
			for j := 1; j < len(board); j++ {
				So(board[j-1].Score, ShouldBeGreaterThanOrEqualTo, board[j].Score)
			}
		}
	})

	Convey("Given a custom capacity", t, func() {
		ctx := context.Background()
		l, _, _ := newFileLedger(t, ledger.WithCapacity(3))
		for i := 0; i < 5; i++ {
			So(l.Record(ctx, "g", "p", i), ShouldBeNil)
		}
		So(l.Capacity(), ShouldEqual, 3)
		So(len(l.GetLeaderboard(ctx, "g")), ShouldEqual, 3)
	})
}

func TestLedger_Degraded(t *testing.T) {
	Convey("Given a corrupt leaderboard file", t, func() {
		ctx := context.Background()
		l, _, root := newFileLedger(t)
		So(os.MkdirAll(filepath.Join(root, "scores"), 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(root, "scores", "g.json"), []byte("{not json"), 0o644), ShouldBeNil)

		Convey("When loading it", func() {
			snap := l.Load(ctx, "g")

			Convey("Then the read degrades to empty and says why", func() {
				So(snap.Status, ShouldEqual, types.StatusCorrupt)
				So(errors.Is(snap.Err, types.ErrCorruptData), ShouldBeTrue)
				So(snap.Entries, ShouldBeEmpty)
				So(l.GetLeaderboard(ctx, "g"), ShouldBeEmpty)
			})
		})

		Convey("When a score is recorded over it", func() {
			So(l.Record(ctx, "g", "Healer", 7), ShouldBeNil)

			Convey("Then the file self-heals", func() {
				snap := l.Load(ctx, "g")
				So(snap.Status, ShouldEqual, types.StatusOK)
				So(snap.Entries, ShouldResemble, []types.ScoreEntry{{Player: "Healer", Score: 7}})
			})
		})
	})

	Convey("Given a file with some malformed rows", t, func() {
		ctx := context.Background()
		l, _, root := newFileLedger(t)
		So(os.MkdirAll(filepath.Join(root, "scores"), 0o755), ShouldBeNil)
		content := `[{"player":"A","score":5},{"player":"","score":9},{"score":"x"},{"player":"B","score":-3},{"player":"C","score":12}]`
		So(os.WriteFile(filepath.Join(root, "scores", "g.json"), []byte(content), 0o644), ShouldBeNil)

		Convey("Then only valid rows are kept, in rank order", func() {
			snap := l.Load(ctx, "g")
			So(snap.Status, ShouldEqual, types.StatusOK)
			So(snap.Entries, ShouldResemble, []types.ScoreEntry{{Player: "C", Score: 12}, {Player: "A", Score: 5}})
		})
	})

	Convey("Given a store that cannot be read", t, func() {
		ctx := context.Background()
		l, store, _ := newFileLedger(t)
		store.readErr = errors.New("permission denied")

		Convey("Then reads degrade to unreadable", func() {
			snap := l.Load(ctx, "g")
			So(snap.Status, ShouldEqual, types.StatusUnreadable)
			So(snap.Status.Degraded(), ShouldBeTrue)
			So(snap.Entries, ShouldBeEmpty)
		})
	})

	Convey("Given a store that cannot be written", t, func() {
		ctx := context.Background()
		l, store, _ := newFileLedger(t)
		So(l.Record(ctx, "g", "Before", 10), ShouldBeNil)
		store.writeErr = errors.New("disk full")

		Convey("When recording", func() {
			err := l.Record(ctx, "g", "After", 20)

			Convey("Then a persistence error surfaces and the board is unchanged", func() {
				So(errors.Is(err, types.ErrPersistence), ShouldBeTrue)
				So(errors.Is(err, types.ErrValidation), ShouldBeFalse)
				store.writeErr = nil
				So(l.GetLeaderboard(ctx, "g"), ShouldResemble, []types.ScoreEntry{{Player: "Before", Score: 10}})
			})
		})
	})
}

func TestInsert(t *testing.T) {
	Convey("Given an existing slice", t, func() {
		in := []types.ScoreEntry{{Player: "A", Score: 3}, {Player: "B", Score: 1}}

		Convey("When inserting", func() {
			out := ledger.Insert(in, types.ScoreEntry{Player: "C", Score: 2}, 10)

			Convey("Then the input is untouched and the output is ranked", func() {
				So(in, ShouldResemble, []types.ScoreEntry{{Player: "A", Score: 3}, {Player: "B", Score: 1}})
				So(out, ShouldResemble, []types.ScoreEntry{{Player: "A", Score: 3}, {Player: "C", Score: 2}, {Player: "B", Score: 1}})
			})
		})
	})
}

func TestLedger_Bolt(t *testing.T) {
	Convey("Given a ledger over a bolt store", t, func() {
		ctx := context.Background()
		store, err := repository.OpenBoltStore(filepath.Join(t.TempDir(), "arcade.db"))
		So(err, ShouldBeNil)
		defer store.Close()
		l := ledger.New(store)

		So(l.Record(ctx, "typer_game", "Alice", 50), ShouldBeNil)
		So(l.Record(ctx, "typer_game", "Bob", 80), ShouldBeNil)

		Convey("Then it behaves like the file-backed ledger", func() {
			So(l.GetLeaderboard(ctx, "typer_game"), ShouldResemble, []types.ScoreEntry{
				{Player: "Bob", Score: 80},
				{Player: "Alice", Score: 50},
			})
		})
	})
}
