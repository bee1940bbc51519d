// Package model contains domain models passed between layers.
package model

import "time"

// Entry represents a judgeable project in the shared catalog.
// Entries are created by an operator and never mutated except delete.
type Entry struct {
	ID        string    // store-assigned document id
	Name      string    // display name
	Owner     string    // team or owner label
	Category  string    // optional grouping label
	CreatedAt time.Time // ordering key
}

// JudgmentRecord is one judge's persisted judgment of one entry. Exactly one
// record exists per (judge, entry) pair at any time; Key is the deterministic
// composite that enforces this without a read-before-write.
type JudgmentRecord struct {
	JudgeID        string
	EntryID        string
	CriteriaScores map[string]int // criterion id -> score; key presence means "set"
	Review         string
	UpdatedAt      time.Time
}

// JudgmentKey builds the composite document key for a (judge, entry) pair.
// Re-submissions map onto the same key and replace the prior record.
func JudgmentKey(judgeID, entryID string) string {
	return judgeID + "/" + entryID
}

// Key returns the composite document key for this record.
func (r JudgmentRecord) Key() string {
	return JudgmentKey(r.JudgeID, r.EntryID)
}

// Total sums the scores that are set. Unset criteria contribute nothing;
// completeness is the status classifier's concern, not Total's.
func (r JudgmentRecord) Total() int {
	sum := 0
	for _, v := range r.CriteriaScores {
		sum += v
	}
	return sum
}

// Clone returns a deep copy. Records cross goroutine boundaries between the
// snapshot mirrors and the read side, so shared score maps are never handed out.
func (r JudgmentRecord) Clone() JudgmentRecord {
	out := r
	out.CriteriaScores = make(map[string]int, len(r.CriteriaScores))
	for k, v := range r.CriteriaScores {
		out.CriteriaScores[k] = v
	}
	return out
}

// VoteRecord is one voter's categorical vote, keyed by voter id.
// Re-voting replaces the record rather than appending a new one.
type VoteRecord struct {
	VoterID   string
	VoterName string
	Category  string
	CastAt    time.Time
}
