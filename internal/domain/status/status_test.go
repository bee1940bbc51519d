package status_test

import (
	"testing"

	"github.com/okian/jury/internal/domain/criteria"
	"github.com/okian/jury/internal/domain/model"
	"github.com/okian/jury/internal/domain/status"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCriteriaClassifier(t *testing.T) {
	Convey("Given a classifier over innovation(20) and technical(30)", t, func() {
		list := criteria.List{
			{ID: "innovation", MaxScore: 20},
			{ID: "technical", MaxScore: 30},
		}
		classifier := status.NewCriteriaClassifier(list)

		Convey("When no record exists", func() {
			So(classifier.Classify(nil), ShouldEqual, status.Unjudged)
		})

		Convey("When only some criteria are set", func() {
			rec := &model.JudgmentRecord{
				CriteriaScores: map[string]int{"innovation": 15},
			}
			So(classifier.Classify(rec), ShouldEqual, status.Partial)
		})

		Convey("When every criterion is set", func() {
			rec := &model.JudgmentRecord{
				CriteriaScores: map[string]int{"innovation": 15, "technical": 20},
			}
			So(classifier.Classify(rec), ShouldEqual, status.Complete)
		})

		Convey("When a criterion is explicitly zero", func() {
			rec := &model.JudgmentRecord{
				CriteriaScores: map[string]int{"innovation": 0, "technical": 0},
			}

			Convey("Then zero counts as set, not missing", func() {
				So(classifier.Classify(rec), ShouldEqual, status.Complete)
			})
		})

		Convey("When a record only carries stray keys", func() {
			rec := &model.JudgmentRecord{
				CriteriaScores: map[string]int{"style": 5},
			}
			So(classifier.Classify(rec), ShouldEqual, status.Partial)
		})
	})
}

func TestTwoAxisClassifier(t *testing.T) {
	Convey("Given the presence-based classifier", t, func() {
		classifier := status.NewTwoAxisClassifier()

		Convey("When no record exists", func() {
			So(classifier.Classify(nil), ShouldEqual, status.Unjudged)
		})

		Convey("When any record exists", func() {
			rec := &model.JudgmentRecord{CriteriaScores: map[string]int{"behavior": 0}}
			So(classifier.Classify(rec), ShouldEqual, status.Complete)
		})
	})
}
