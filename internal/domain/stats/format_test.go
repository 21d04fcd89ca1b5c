package stats

import (
	"math"
	"testing"

	"github.com/okian/arcade/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFormatDuration(t *testing.T) {
	Convey("FormatDuration", t, func() {
		cases := []struct {
			in   float64
			want string
		}{
			{0, "0s"},
			{45.9, "45s"},
			{59, "59s"},
			{60, "1m 0s"},
			{61, "1m 1s"},
			{125, "2m 5s"},
			{3599, "59m 59s"},
			{3600, "1h 0m"},
			{3661, "1h 1m"},
			{7325.5, "2h 2m"},
			{-5, "0s"},
			{math.NaN(), "0s"},
			{math.Inf(-1), "0s"},
			{math.Inf(1), "2501999792983h 36m"},
			{1e300, "2501999792983h 36m"},
		}
		for _, c := range cases {
			So(FormatDuration(c.in), ShouldEqual, c.want)
		}
	})
}

func TestDocument(t *testing.T) {
	Convey("Given a document with one session", t, func() {
		doc := newDocument()
		doc.apply(sessionFor("g", 10, 5))

		Convey("When a clone is modified", func() {
			next := doc.clone()
			next.apply(sessionFor("g", 20, 5))

			Convey("Then the original is untouched", func() {
				So(len(doc.Sessions), ShouldEqual, 1)
				So(doc.Games["g"].TotalSessions, ShouldEqual, 1)
				So(doc.Games["g"].Scores, ShouldResemble, []int{10})
				So(next.Games["g"].Scores, ShouldResemble, []int{10, 20})
				So(doc.Performance.TotalSessions, ShouldEqual, 1)
			})
		})

		Convey("When an aggregate drifts from the log", func() {
			g := doc.Games["g"]
			g.TotalSessions = 7
			doc.Games["g"] = g
			So(doc.consistent(), ShouldBeFalse)

			Convey("Then rebuild restores it", func() {
				doc.rebuild()
				So(doc.consistent(), ShouldBeTrue)
				So(doc.Games["g"].TotalSessions, ShouldEqual, 1)
			})
		})
	})
}

func sessionFor(game string, score int, duration float64) types.SessionRecord {
	return types.SessionRecord{ID: game, GameID: game, GameName: game, Score: score, Duration: duration}
}
