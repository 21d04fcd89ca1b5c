package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/arcade/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DataDir, convey.ShouldEqual, "data")
			convey.So(cfg.Backend, convey.ShouldEqual, config.BackendFile)
			convey.So(cfg.LeaderboardSize, convey.ShouldEqual, 10)
			convey.So(cfg.DefaultPlayer, convey.ShouldEqual, "Player")
			convey.So(cfg.RecentDays, convey.ShouldEqual, 7)
			convey.So(cfg.ProgressionDays, convey.ShouldEqual, 30)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the backend is unknown", func() {
			cfg.Backend = "sqlite"
			err := cfg.Validate()

			convey.Convey("Then it wraps ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "sqlite")
			})
		})

		convey.Convey("When bolt is selected without a file name", func() {
			cfg.Backend = config.BackendBolt
			cfg.BoltFile = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the leaderboard size is zero", func() {
			cfg.LeaderboardSize = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the default player is blank", func() {
			cfg.DefaultPlayer = "   "
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a window is negative", func() {
			cfg.RecentDays = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
