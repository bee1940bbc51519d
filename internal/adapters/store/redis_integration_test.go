package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/jury/internal/adapters/store"
	"github.com/okian/jury/internal/domain/model"
	"github.com/okian/jury/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// Requires a reachable Redis; set JURY_TEST_REDIS_ADDR to run.
func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("JURY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JURY_TEST_REDIS_ADDR not set; skipping Redis integration test")
	}
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	Convey("Given a Redis-backed store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, err := store.NewRedisStore(ctx,
			store.WithAddr(addr),
			store.WithNamespace("jury-test-"+time.Now().UTC().Format("150405.000")),
		)
		So(err, ShouldBeNil)
		defer func() { _ = s.Close() }()

		Convey("When watching judgments and writing a record", func() {
			ch, err := s.WatchJudgments(ctx)
			So(err, ShouldBeNil)

			initial, ok := receive(ch)
			So(ok, ShouldBeTrue)
			So(initial, ShouldBeEmpty)

			rec := model.JudgmentRecord{
				JudgeID:        "j1",
				EntryID:        "e1",
				CriteriaScores: map[string]int{"innovation": 12},
				UpdatedAt:      time.Now().UTC(),
			}
			So(s.UpsertJudgment(ctx, rec), ShouldBeNil)

			Convey("Then the full set is redelivered", func() {
				snap, ok := receive(ch)
				So(ok, ShouldBeTrue)
				So(len(snap), ShouldEqual, 1)
				So(snap[0].CriteriaScores["innovation"], ShouldEqual, 12)
			})

			Convey("Then deleting twice stays a no-op", func() {
				So(s.DeleteJudgment(ctx, rec.Key()), ShouldBeNil)
				So(s.DeleteJudgment(ctx, rec.Key()), ShouldBeNil)
			})
		})
	})
}
