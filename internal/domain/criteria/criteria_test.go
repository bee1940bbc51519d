package criteria_test

import (
	"errors"
	"testing"

	"github.com/okian/jury/internal/domain/criteria"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClamp(t *testing.T) {
	Convey("Given a criterion bound of 20", t, func() {
		const max = 20

		Convey("When clamping in-range values", func() {
			So(criteria.Clamp(0, max), ShouldEqual, 0)
			So(criteria.Clamp(13, max), ShouldEqual, 13)
			So(criteria.Clamp(20, max), ShouldEqual, 20)
		})

		Convey("When clamping out-of-range values", func() {
			So(criteria.Clamp(-5, max), ShouldEqual, 0)
			So(criteria.Clamp(21, max), ShouldEqual, 20)
			So(criteria.Clamp(1000, max), ShouldEqual, 20)
		})

		Convey("Then clamping should be idempotent for any input", func() {
			for _, v := range []int{-100, -1, 0, 7, 20, 21, 9999} {
				once := criteria.Clamp(v, max)
				So(criteria.Clamp(once, max), ShouldEqual, once)
			}
		})
	})
}

func TestList(t *testing.T) {
	Convey("Given the default criteria list", t, func() {
		list := criteria.Default()

		Convey("Then it should carry the four standard axes", func() {
			So(list.IDs(), ShouldResemble, []string{"innovation", "technical", "presentation", "usability"})
			So(list.TotalMax(), ShouldEqual, 100)
		})

		Convey("Then lookups should resolve known ids only", func() {
			c, ok := list.Lookup("technical")
			So(ok, ShouldBeTrue)
			So(c.MaxScore, ShouldEqual, 30)

			_, ok = list.Lookup("style")
			So(ok, ShouldBeFalse)
		})

		Convey("Then it should validate", func() {
			So(list.Validate(), ShouldBeNil)
		})
	})

	Convey("Given the two-axis preset", t, func() {
		list := criteria.TwoAxis()

		Convey("Then both sliders should share one bound", func() {
			So(list.IDs(), ShouldResemble, []string{"behavior", "work"})
			So(list.TotalMax(), ShouldEqual, 20)
			So(list.Validate(), ShouldBeNil)
		})
	})

	Convey("Given malformed lists", t, func() {
		Convey("Then an empty list should be rejected", func() {
			So(errors.Is(criteria.List{}.Validate(), criteria.ErrEmptyList), ShouldBeTrue)
		})

		Convey("Then a duplicate id should be rejected", func() {
			list := criteria.List{
				{ID: "a", MaxScore: 10},
				{ID: "a", MaxScore: 10},
			}
			So(errors.Is(list.Validate(), criteria.ErrInvalidCriterion), ShouldBeTrue)
		})

		Convey("Then a non-positive bound should be rejected", func() {
			list := criteria.List{{ID: "a", MaxScore: 0}}
			So(errors.Is(list.Validate(), criteria.ErrInvalidCriterion), ShouldBeTrue)
		})
	})
}
