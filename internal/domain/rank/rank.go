// Package rank projects aggregates into ordered, filtered leaderboards.
package rank

import (
	"sort"
	"strings"

	"github.com/okian/jury/internal/domain/aggregate"
	"github.com/okian/jury/internal/domain/model"
	"github.com/okian/jury/internal/domain/status"
)

// SortKey selects the ordering of a projection.
type SortKey string

const (
	// ByScore orders by total score, descending.
	ByScore SortKey = "score"
	// ByVotes orders by judgment count, descending.
	ByVotes SortKey = "votes"
	// ByName orders by entry name, ascending lexicographic.
	ByName SortKey = "name"
)

// StatusFilter restricts a projection by the caller's own judging status.
type StatusFilter string

const (
	// FilterAll keeps every entry.
	FilterAll StatusFilter = "all"
	// FilterMine keeps entries the caller has completely judged.
	FilterMine StatusFilter = "scored-by-me"
	// FilterNotMine keeps entries the caller has not completely judged.
	FilterNotMine StatusFilter = "not-scored-by-me"
)

// Query describes one projection request.
type Query struct {
	Sort   SortKey
	Filter StatusFilter
	// Search is a case-sensitive substring matched against name and owner.
	Search string
	// Limit caps the output length; zero or negative means uncapped.
	Limit int
}

// Row is one positioned leaderboard line.
type Row struct {
	Rank int
	aggregate.EntryAggregate
	// Status is the calling judge's own status for the entry.
	Status status.Status
}

// Projector orders and filters aggregation results for presentation.
type Projector struct {
	classifier status.Classifier
}

// NewProjector creates a projector using the given completeness strategy.
func NewProjector(classifier status.Classifier) *Projector {
	return &Projector{classifier: classifier}
}

// Project filters, sorts and numbers the aggregate view. mine holds the
// calling judge's records keyed by entry id and drives the status column and
// filter. Sorting is stable: entries with equal keys keep their relative
// order from the unsorted input.
func (p *Projector) Project(res aggregate.Result, mine map[string]model.JudgmentRecord, q Query) []Row {
	rows := make([]Row, 0, len(res.Entries))
	for _, agg := range res.Entries {
		st := status.Unjudged
		if rec, ok := mine[agg.Entry.ID]; ok {
			st = p.classifier.Classify(&rec)
		}
		if !matches(agg.Entry, st, q) {
			continue
		}
		rows = append(rows, Row{EntryAggregate: agg, Status: st})
	}

	switch q.Sort {
	case ByVotes:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].VoteCount > rows[j].VoteCount
		})
	case ByName:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Entry.Name < rows[j].Entry.Name
		})
	default: // ByScore
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Total > rows[j].Total
		})
	}

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func matches(entry model.Entry, st status.Status, q Query) bool {
	if q.Search != "" &&
		!strings.Contains(entry.Name, q.Search) &&
		!strings.Contains(entry.Owner, q.Search) {
		return false
	}
	switch q.Filter {
	case FilterMine:
		return st == status.Complete
	case FilterNotMine:
		return st != status.Complete
	default:
		return true
	}
}
