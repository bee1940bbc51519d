package service

import (
	"sync"

	"github.com/okian/jury/internal/domain/aggregate"
	"github.com/okian/jury/internal/domain/model"
)

// registry mirrors the three watched collections plus the aggregate computed
// from them. Every watch delivery is a complete set, so updates replace the
// mirror wholesale instead of patching it.
type registry struct {
	mu        sync.RWMutex
	entries   []model.Entry
	entrySet  map[string]struct{}
	judgments []model.JudgmentRecord
	byKey     map[string]model.JudgmentRecord
	votes     []model.VoteRecord
	result    aggregate.Result
}

func newRegistry() *registry {
	return &registry{
		entrySet: make(map[string]struct{}),
		byKey:    make(map[string]model.JudgmentRecord),
	}
}

func (r *registry) replaceEntries(entries []model.Entry) {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e.ID] = struct{}{}
	}
	r.mu.Lock()
	r.entries = entries
	r.entrySet = set
	r.mu.Unlock()
}

func (r *registry) replaceJudgments(judgments []model.JudgmentRecord) {
	byKey := make(map[string]model.JudgmentRecord, len(judgments))
	for _, rec := range judgments {
		byKey[rec.Key()] = rec
	}
	r.mu.Lock()
	r.judgments = judgments
	r.byKey = byKey
	r.mu.Unlock()
}

func (r *registry) replaceVotes(votes []model.VoteRecord) {
	r.mu.Lock()
	r.votes = votes
	r.mu.Unlock()
}

// snapshot returns the current mirror of all three collections.
func (r *registry) snapshot() ([]model.Entry, []model.JudgmentRecord, []model.VoteRecord) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries, r.judgments, r.votes
}

func (r *registry) setResult(res aggregate.Result) {
	r.mu.Lock()
	r.result = res
	r.mu.Unlock()
}

func (r *registry) aggregateResult() aggregate.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result
}

func (r *registry) hasEntry(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entrySet[id]
	return ok
}

// record returns the persisted judgment for one composite key, or nil.
func (r *registry) record(judgeID, entryID string) *model.JudgmentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.byKey[model.JudgmentKey(judgeID, entryID)]; ok {
		clone := rec.Clone()
		return &clone
	}
	return nil
}

// mine returns the judge's persisted records keyed by entry id.
func (r *registry) mine(judgeID string) map[string]model.JudgmentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.JudgmentRecord)
	for _, rec := range r.judgments {
		if rec.JudgeID == judgeID {
			out[rec.EntryID] = rec.Clone()
		}
	}
	return out
}

func (r *registry) counts() (entries, judgments, votes int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), len(r.judgments), len(r.votes)
}
