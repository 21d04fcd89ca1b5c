package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	service "github.com/okian/arcade/internal/app"
	"github.com/okian/arcade/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	for _, backend := range []string{service.BackendFile, service.BackendBolt} {
		Convey("Given a "+backend+" backed service", t, func() {
			ctx := context.Background()
			dir := t.TempDir()
			opts := []service.Option{
				service.WithDataDir(dir),
				service.WithBackend(backend, "arcade.db"),
				service.WithLogger(logger.Get()),
			}
			svc := service.New(opts...)
			So(svc.Start(ctx), ShouldBeNil)

			So(svc.RecordScore(ctx, "typer_game", "ana", 42), ShouldBeNil)
			So(svc.RecordSession(ctx, "typer_game", "Typer", 42, 61.5, "ana"), ShouldBeNil)

			Convey("When the service is restarted", func() {
				svc.Stop()
				again := service.New(opts...)
				So(again.Start(ctx), ShouldBeNil)
				defer again.Stop()

				Convey("Then scores and statistics survive", func() {
					top, err := again.HighScore(ctx, "typer_game")
					So(err, ShouldBeNil)
					So(top.Player, ShouldEqual, "ana")
					So(top.Score, ShouldEqual, 42)

					g, err := again.GameStats(ctx, "typer_game")
					So(err, ShouldBeNil)
					So(g.TotalSessions, ShouldEqual, 1)
					So(g.TotalPlaytime, ShouldEqual, 61.5)
				})
			})

			Convey("When stopping twice", func() {
				svc.Stop()
				svc.Stop()

				Convey("Then the service reports stopped", func() {
					So(svc.GetStats()["started"], ShouldEqual, false)
				})
			})
		})
	}
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a service with concurrent writers", t, func() {
		ctx := context.Background()
		svc := newStarted(t, service.WithLeaderboardSize(5))
		defer svc.Stop()

		const writers = 8
		const perWriter = 5

		var wg sync.WaitGroup
		errs := make(chan error, writers*perWriter*2)
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					player := fmt.Sprintf("p%d", w)
					score := w*perWriter + i
					errs <- svc.RecordScore(ctx, "calc", player, score)
					errs <- svc.RecordSession(ctx, "calc", "Calc", score, 1, player)
				}
			}(w)
		}
		wg.Wait()
		close(errs)

		Convey("Then every write succeeds", func() {
			for err := range errs {
				So(err, ShouldBeNil)
			}
		})

		Convey("And no session is lost", func() {
			g, err := svc.GameStats(ctx, "calc")
			So(err, ShouldBeNil)
			So(g.TotalSessions, ShouldEqual, writers*perWriter)
			So(g.BestScore, ShouldEqual, writers*perWriter-1)
		})

		Convey("And the leaderboard holds the global top five", func() {
			board, err := svc.Leaderboard(ctx, "calc")
			So(err, ShouldBeNil)
			So(len(board), ShouldEqual, 5)
			So(board[0].Score, ShouldEqual, writers*perWriter-1)
			So(board[4].Score, ShouldEqual, writers*perWriter-5)
		})
	})
}
