package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/jury/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRowJSON(t *testing.T) {
	Convey("Given a leaderboard row", t, func() {
		row := types.Row{
			Rank:     1,
			EntryID:  "e1",
			Name:     "Alpha",
			Owner:    "Team One",
			Votes:    2,
			Total:    140,
			Averages: map[string]float64{"innovation": 15},
			Status:   "complete",
		}

		Convey("When marshalling to JSON", func() {
			data, err := json.Marshal(row)

			Convey("Then it should use the wire field names", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"entry_id":"e1"`)
				So(string(data), ShouldContainSubstring, `"total":140`)
				So(string(data), ShouldContainSubstring, `"status":"complete"`)
			})

			Convey("Then empty categories are omitted", func() {
				So(string(data), ShouldNotContainSubstring, `"category"`)
			})
		})
	})
}
