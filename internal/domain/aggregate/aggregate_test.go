package aggregate_test

import (
	"testing"

	"github.com/okian/jury/internal/domain/aggregate"
	"github.com/okian/jury/internal/domain/criteria"
	"github.com/okian/jury/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComputeTotals(t *testing.T) {
	Convey("Given three entries and two judges who both scored E1", t, func() {
		engine := aggregate.NewEngine(criteria.Default(), nil)
		entries := []model.Entry{
			{ID: "e1", Name: "E1"},
			{ID: "e2", Name: "E2"},
			{ID: "e3", Name: "E3"},
		}
		judgments := []model.JudgmentRecord{
			{
				JudgeID: "j1", EntryID: "e1",
				CriteriaScores: map[string]int{"innovation": 20, "technical": 30, "presentation": 25, "usability": 25},
			},
			{
				JudgeID: "j2", EntryID: "e1",
				CriteriaScores: map[string]int{"innovation": 10, "technical": 10, "presentation": 10, "usability": 10},
			},
		}

		Convey("When computing the aggregate", func() {
			res := engine.Compute(entries, judgments, nil)

			Convey("Then E1 sums both judges additively", func() {
				So(res.Entries[0].Total, ShouldEqual, 140)
				So(res.Entries[0].VoteCount, ShouldEqual, 2)
			})

			Convey("Then per-criterion averages span the scoring judges", func() {
				So(res.Entries[0].AvgPerCriterion["innovation"], ShouldEqual, 15.0)
				So(res.Entries[0].AvgPerCriterion["technical"], ShouldEqual, 20.0)
			})

			Convey("Then unjudged entries aggregate to zero without error", func() {
				So(res.Entries[1].Total, ShouldEqual, 0)
				So(res.Entries[1].VoteCount, ShouldEqual, 0)
				So(res.Entries[1].AvgPerCriterion["innovation"], ShouldEqual, 0.0)
			})

			Convey("Then entry order follows the input", func() {
				So(res.Entries[0].Entry.ID, ShouldEqual, "e1")
				So(res.Entries[1].Entry.ID, ShouldEqual, "e2")
				So(res.Entries[2].Entry.ID, ShouldEqual, "e3")
			})
		})

		Convey("When a third judge adds a record for E1", func() {
			before := engine.Compute(entries, judgments, nil).Entries[0].Total
			judgments = append(judgments, model.JudgmentRecord{
				JudgeID: "j3", EntryID: "e1",
				CriteriaScores: map[string]int{"innovation": 5},
			})
			after := engine.Compute(entries, judgments, nil).Entries[0].Total

			Convey("Then the total never decreases", func() {
				So(after, ShouldBeGreaterThanOrEqualTo, before)
				So(after, ShouldEqual, 145)
			})
		})
	})
}

func TestComputeOrphans(t *testing.T) {
	Convey("Given a judgment referencing a deleted entry", t, func() {
		engine := aggregate.NewEngine(criteria.Default(), nil)
		entries := []model.Entry{{ID: "e1", Name: "E1"}}
		judgments := []model.JudgmentRecord{
			{JudgeID: "j1", EntryID: "gone", CriteriaScores: map[string]int{"innovation": 20}},
			{JudgeID: "j1", EntryID: "e1", CriteriaScores: map[string]int{"innovation": 10}},
		}

		Convey("When computing the aggregate", func() {
			res := engine.Compute(entries, judgments, nil)

			Convey("Then the orphan is excluded and contributes nothing", func() {
				So(len(res.Entries), ShouldEqual, 1)
				So(res.Entries[0].Total, ShouldEqual, 10)
				So(res.Entries[0].VoteCount, ShouldEqual, 1)
			})
		})
	})
}

func TestComputeAverages(t *testing.T) {
	Convey("Given judges with uneven criterion coverage", t, func() {
		list := criteria.List{{ID: "a", MaxScore: 10}}
		engine := aggregate.NewEngine(list, nil)
		entries := []model.Entry{{ID: "e1"}}
		judgments := []model.JudgmentRecord{
			{JudgeID: "j1", EntryID: "e1", CriteriaScores: map[string]int{"a": 3}},
			{JudgeID: "j2", EntryID: "e1", CriteriaScores: map[string]int{"a": 4}},
			{JudgeID: "j3", EntryID: "e1", CriteriaScores: map[string]int{}},
		}

		Convey("When computing the aggregate", func() {
			res := engine.Compute(entries, judgments, nil)

			Convey("Then the mean spans only the judges who set the criterion", func() {
				So(res.Entries[0].AvgPerCriterion["a"], ShouldEqual, 3.5)
			})

			Convey("Then all three records still count toward the entry", func() {
				So(res.Entries[0].VoteCount, ShouldEqual, 3)
			})
		})
	})
}

func TestCategoryTally(t *testing.T) {
	Convey("Given a fixed category set and mixed votes", t, func() {
		engine := aggregate.NewEngine(criteria.Default(), []string{"web", "mobile", "game"})
		votes := []model.VoteRecord{
			{VoterID: "v1", Category: "web"},
			{VoterID: "v2", Category: "web"},
			{VoterID: "v3", Category: "retro"}, // added after data existed
		}

		Convey("When computing the tally", func() {
			res := engine.Compute(nil, nil, votes)

			Convey("Then configured categories appear even with zero votes", func() {
				So(res.CategoryTally["mobile"], ShouldEqual, 0)
				So(res.CategoryTally["game"], ShouldEqual, 0)
			})

			Convey("Then votes are counted per category", func() {
				So(res.CategoryTally["web"], ShouldEqual, 2)
			})

			Convey("Then unknown categories are preserved under their literal value", func() {
				So(res.CategoryTally["retro"], ShouldEqual, 1)
			})
		})
	})
}
