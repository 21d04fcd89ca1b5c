package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// storeContract runs the behaviour every Store must share.
func storeContract(ctx context.Context, s Store) {
	Convey("When reading a key that was never written", func() {
		_, err := s.Read(ctx, "scores/none")

		Convey("Then it should report ErrNotFound", func() {
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When writing and reading back", func() {
		So(s.Write(ctx, "scores/typer_game", []byte(`[{"player":"Bob","score":80}]`)), ShouldBeNil)
		data, err := s.Read(ctx, "scores/typer_game")

		Convey("Then the bytes round-trip", func() {
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `[{"player":"Bob","score":80}]`)
		})
	})

	Convey("When overwriting a key", func() {
		So(s.Write(ctx, "stats", []byte("old")), ShouldBeNil)
		So(s.Write(ctx, "stats", []byte("new")), ShouldBeNil)
		data, err := s.Read(ctx, "stats")

		Convey("Then only the new value is visible", func() {
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "new")
		})
	})

	Convey("When using keys that escape the root", func() {
		for _, key := range []string{"", "../x", "/abs", "a//b", `a\b`, "a/./b"} {
			So(errors.Is(s.Write(ctx, key, []byte("x")), ErrInvalidKey), ShouldBeTrue)
			_, err := s.Read(ctx, key)
			So(errors.Is(err, ErrInvalidKey), ShouldBeTrue)
		}
	})

	Convey("When the context is already cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("Then operations fail fast", func() {
			So(errors.Is(s.Write(cctx, "stats", []byte("x")), context.Canceled), ShouldBeTrue)
			_, err := s.Read(cctx, "stats")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestFileStore(t *testing.T) {
	Convey("Given a file store", t, func() {
		ctx := context.Background()
		root := t.TempDir()
		s, err := NewFileStore(root, WithFileMode(0o600), WithSyncDir(true))
		So(err, ShouldBeNil)
		defer s.Close()

		storeContract(ctx, s)

		Convey("When writing a nested key", func() {
			So(s.Write(ctx, "scores/slot_machine", []byte("[]")), ShouldBeNil)

			Convey("Then it lands under the root with a json extension", func() {
				info, err := os.Stat(filepath.Join(root, "scores", "slot_machine.json"))
				So(err, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
			})

			Convey("And no temporary files are left behind", func() {
				entries, err := os.ReadDir(filepath.Join(root, "scores"))
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When the target directory cannot be created", func() {
			// A regular file where the directory should be.
			So(os.WriteFile(filepath.Join(root, "blocked"), []byte("x"), 0o644), ShouldBeNil)
			err := s.Write(ctx, "blocked/key", []byte("x"))

			Convey("Then the write fails and the old file is untouched", func() {
				So(err, ShouldNotBeNil)
				data, rerr := os.ReadFile(filepath.Join(root, "blocked"))
				So(rerr, ShouldBeNil)
				So(string(data), ShouldEqual, "x")
			})
		})

		Convey("When the store is closed", func() {
			So(s.Close(), ShouldBeNil)

			Convey("Then further calls return ErrClosed", func() {
				So(errors.Is(s.Write(ctx, "stats", nil), ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestBoltStore(t *testing.T) {
	Convey("Given a bolt store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "data", "arcade.db")
		s, err := OpenBoltStore(path, WithBucket("test"), WithOpenTimeout(0))
		So(err, ShouldBeNil)
		defer s.Close()

		storeContract(ctx, s)

		Convey("When values are written and the store reopened", func() {
			So(s.Write(ctx, "stats", []byte(`{"schema_version":2}`)), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			reopened, err := OpenBoltStore(path, WithBucket("test"))
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then the value survives", func() {
				data, err := reopened.Read(ctx, "stats")
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"schema_version":2}`)
			})
		})
	})
}
