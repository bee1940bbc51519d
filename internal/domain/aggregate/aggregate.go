// Package aggregate folds full collection snapshots into per-entry totals
// and global category tallies.
//
// The computation is a pure function of the current entries, judgments and
// votes. It carries no state between deliveries: deletions are
// indistinguishable from "not yet seen" without a full recompute, so every
// snapshot rebuilds the whole result from scratch.
package aggregate

import (
	"math"

	"github.com/okian/jury/internal/domain/criteria"
	"github.com/okian/jury/internal/domain/model"
)

// EntryAggregate is the computed rollup for one entry across all judges.
type EntryAggregate struct {
	Entry model.Entry
	// VoteCount is the number of judgment records referencing the entry.
	VoteCount int
	// Total is the straight sum of every judge's total for the entry.
	// Multiple judges' scores are additive, not averaged.
	Total int
	// AvgPerCriterion is the arithmetic mean over the judges who set that
	// criterion, rounded to one decimal; zero when nobody scored it yet.
	AvgPerCriterion map[string]float64
}

// Result is one full aggregation pass.
type Result struct {
	// Entries holds one aggregate per live entry, in input order.
	Entries []EntryAggregate
	// CategoryTally maps each category to its vote count. Configured
	// categories always appear, zero votes included; unknown category
	// strings in vote records are counted under their literal value.
	CategoryTally map[string]int
}

// Engine computes aggregates for a fixed criteria list and category set.
type Engine struct {
	list       criteria.List
	categories []string
}

// NewEngine creates an engine. The configuration is injected once and never
// mutated afterwards.
func NewEngine(list criteria.List, categories []string) *Engine {
	return &Engine{list: list, categories: categories}
}

// Compute aggregates the given snapshots. It is total: entries with zero
// judgments produce a zero aggregate, and judgment or vote records that
// reference a deleted entry are skipped rather than failing the pass.
func (e *Engine) Compute(entries []model.Entry, judgments []model.JudgmentRecord, votes []model.VoteRecord) Result {
	live := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		live[entry.ID] = struct{}{}
	}

	type rollup struct {
		count         int
		total         int
		criterionSum  map[string]int
		criterionSeen map[string]int
	}
	byEntry := make(map[string]*rollup, len(entries))

	for _, rec := range judgments {
		if _, ok := live[rec.EntryID]; !ok {
			// Orphaned record for a deleted entry; contributes nothing.
			continue
		}
		r, ok := byEntry[rec.EntryID]
		if !ok {
			r = &rollup{
				criterionSum:  make(map[string]int, len(e.list)),
				criterionSeen: make(map[string]int, len(e.list)),
			}
			byEntry[rec.EntryID] = r
		}
		r.count++
		r.total += rec.Total()
		for _, criterion := range e.list {
			if val, set := rec.CriteriaScores[criterion.ID]; set {
				r.criterionSum[criterion.ID] += val
				r.criterionSeen[criterion.ID]++
			}
		}
	}

	out := Result{
		Entries:       make([]EntryAggregate, 0, len(entries)),
		CategoryTally: make(map[string]int, len(e.categories)),
	}
	for _, entry := range entries {
		agg := EntryAggregate{
			Entry:           entry,
			AvgPerCriterion: make(map[string]float64, len(e.list)),
		}
		r := byEntry[entry.ID]
		for _, criterion := range e.list {
			avg := 0.0
			if r != nil && r.criterionSeen[criterion.ID] > 0 {
				avg = round1(float64(r.criterionSum[criterion.ID]) / float64(r.criterionSeen[criterion.ID]))
			}
			agg.AvgPerCriterion[criterion.ID] = avg
		}
		if r != nil {
			agg.VoteCount = r.count
			agg.Total = r.total
		}
		out.Entries = append(out.Entries, agg)
	}

	for _, category := range e.categories {
		out.CategoryTally[category] = 0
	}
	for _, vote := range votes {
		out.CategoryTally[vote.Category]++
	}

	return out
}

// round1 rounds to one decimal place for display.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
