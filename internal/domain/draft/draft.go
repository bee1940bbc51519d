// Package draft holds unsaved per-entry edit overlays and reconciles them
// with persisted judgment records.
//
// An overlay tracks only the fields the judge has touched since the last
// successful submit. Reconciliation is field-level: every field resolves
// independently to draft value, else persisted value, else default. Overlays
// live purely in process memory and are never cleared by an inbound snapshot,
// so a remote delivery can never discard unsaved input.
//
// Input policy for numeric fields: cleared input means "unset" (the field is
// removed from the overlay), never zero; numeric input is clamped into
// [0, max] before it enters the overlay; non-numeric input is rejected at the
// transport boundary and never reaches this package.
package draft

import (
	"fmt"
	"sync"
	"time"

	"github.com/okian/jury/internal/domain/criteria"
	"github.com/okian/jury/internal/domain/model"
)

// edit is the unsaved overlay for one (judge, entry) pair.
type edit struct {
	scores map[string]int
	review *string
}

func (e *edit) empty() bool {
	return len(e.scores) == 0 && e.review == nil
}

// View is the display-time reconciliation of an overlay with the last
// persisted record: draft field if present, else persisted, else default.
type View struct {
	Scores map[string]int // set fields only; absence means unset
	Review string
	Total  int  // running display total; unset criteria contribute zero
	Dirty  bool // true when unsaved edits exist for the entry
}

// Reconciler tracks the current judge's overlays, keyed by entry id.
type Reconciler struct {
	mu    sync.Mutex
	list  criteria.List
	edits map[string]*edit
}

// NewReconciler creates a reconciler bound to the configured criteria list.
func NewReconciler(list criteria.List) *Reconciler {
	return &Reconciler{
		list:  list,
		edits: make(map[string]*edit),
	}
}

// SetScore records a clamped score edit for one criterion. Other fields'
// draft status is left untouched. Unknown criterion ids are rejected before
// anything enters the overlay.
func (r *Reconciler) SetScore(entryID, criterionID string, value int) error {
	criterion, ok := r.list.Lookup(criterionID)
	if !ok {
		return fmt.Errorf("%w: %s", criteria.ErrUnknownCriterion, criterionID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.edit(entryID)
	e.scores[criterionID] = criteria.Clamp(value, criterion.MaxScore)
	return nil
}

// ClearScore removes a criterion from the overlay. Clearing means "unset",
// not zero: a cleared field falls back to the persisted value on display and
// is excluded from the next submit's touched set.
func (r *Reconciler) ClearScore(entryID, criterionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.edits[entryID]
	if !ok {
		return
	}
	delete(e.scores, criterionID)
	if e.empty() {
		delete(r.edits, entryID)
	}
}

// SetReview records a review text edit.
func (r *Reconciler) SetReview(entryID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edit(entryID).review = &text
}

// View resolves the display value for every field of an entry. persisted may
// be nil when the judge has not submitted yet.
func (r *Reconciler) View(entryID string, persisted *model.JudgmentRecord) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := View{Scores: make(map[string]int, len(r.list))}
	e := r.edits[entryID]

	for _, criterion := range r.list {
		if e != nil {
			if val, set := e.scores[criterion.ID]; set {
				v.Scores[criterion.ID] = val
				continue
			}
		}
		if persisted != nil {
			if val, set := persisted.CriteriaScores[criterion.ID]; set {
				v.Scores[criterion.ID] = val
			}
		}
	}
	for _, val := range v.Scores {
		v.Total += val
	}

	switch {
	case e != nil && e.review != nil:
		v.Review = *e.review
	case persisted != nil:
		v.Review = persisted.Review
	}
	v.Dirty = e != nil && !e.empty()
	return v
}

// Merged builds the submit payload for an entry: for each field, the draft
// value if set, else the previously persisted value. A partial edit never
// erases fields the judge did not touch in this session.
func (r *Reconciler) Merged(judgeID, entryID string, persisted *model.JudgmentRecord) model.JudgmentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := model.JudgmentRecord{
		JudgeID:        judgeID,
		EntryID:        entryID,
		CriteriaScores: make(map[string]int, len(r.list)),
		UpdatedAt:      time.Now().UTC(),
	}
	if persisted != nil {
		for k, val := range persisted.CriteriaScores {
			if _, known := r.list.Lookup(k); known {
				rec.CriteriaScores[k] = val
			}
		}
		rec.Review = persisted.Review
	}
	if e, ok := r.edits[entryID]; ok {
		for k, val := range e.scores {
			rec.CriteriaScores[k] = val
		}
		if e.review != nil {
			rec.Review = *e.review
		}
	}
	return rec
}

// Pending captures the overlay's current fields and values. Callers take
// this snapshot before a submit so that CommitSubmitted can clear exactly
// the fields that went out, and nothing edited since.
func (r *Reconciler) Pending(entryID string) (scores map[string]int, review *string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.edits[entryID]
	if !ok {
		return nil, nil
	}
	scores = make(map[string]int, len(e.scores))
	for id, val := range e.scores {
		scores[id] = val
	}
	if e.review != nil {
		text := *e.review
		review = &text
	}
	return scores, review
}

// CommitSubmitted clears the fields included in a successful submit, but
// only where the overlay still holds the submitted value. A field re-edited
// while the submit was in flight keeps its newer draft value.
func (r *Reconciler) CommitSubmitted(entryID string, scores map[string]int, review *string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.edits[entryID]
	if !ok {
		return
	}
	for id, submitted := range scores {
		if current, set := e.scores[id]; set && current == submitted {
			delete(e.scores, id)
		}
	}
	if review != nil && e.review != nil && *e.review == *review {
		e.review = nil
	}
	if e.empty() {
		delete(r.edits, entryID)
	}
}

// Discard drops the whole overlay for an entry. Used when the judge
// navigates away; an outstanding submit is unaffected because its payload
// was captured at call time.
func (r *Reconciler) Discard(entryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edits, entryID)
}

// HasEdits reports whether unsaved edits exist for an entry.
func (r *Reconciler) HasEdits(entryID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.edits[entryID]
	return ok && !e.empty()
}

// Size returns the number of entries with unsaved edits.
func (r *Reconciler) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.edits)
}

// edit returns the overlay for entryID, creating it if needed.
// Callers must hold r.mu.
func (r *Reconciler) edit(entryID string) *edit {
	e, ok := r.edits[entryID]
	if !ok {
		e = &edit{scores: make(map[string]int)}
		r.edits[entryID] = e
	}
	return e
}
