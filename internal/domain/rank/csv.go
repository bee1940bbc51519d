package rank

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/jury/internal/domain/criteria"
)

// WriteCSV renders rows in their current order, one line per entry. It is a
// pure read-side projection: every number comes from the rows as given, no
// aggregation is redone here.
func WriteCSV(w io.Writer, list criteria.List, rows []Row) error {
	cw := csv.NewWriter(w)

	header := []string{"rank", "name", "owner", "votes", "total"}
	for _, criterion := range list {
		header = append(header, "avg_"+criterion.ID)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		line := []string{
			strconv.Itoa(row.Rank),
			row.Entry.Name,
			row.Entry.Owner,
			strconv.Itoa(row.VoteCount),
			strconv.Itoa(row.Total),
		}
		for _, criterion := range list {
			line = append(line, strconv.FormatFloat(row.AvgPerCriterion[criterion.ID], 'f', 1, 64))
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
