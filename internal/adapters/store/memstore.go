package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jury/internal/domain/model"
)

// Watch channels hold one pending snapshot. A newer delivery displaces an
// unconsumed one; that is safe because every delivery is complete.
const watchBuffer = 1

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// MemStore is the in-memory reference implementation of Store. It backs
// tests and single-process deployments; the snapshot fan-out follows the
// same full-redelivery contract as the remote implementations.
type MemStore struct {
	mu sync.Mutex

	seq       int64
	entries   map[string]model.Entry
	entrySeq  map[string]int64
	judgments map[string]model.JudgmentRecord
	votes     map[string]model.VoteRecord

	nextWatcher   int
	entryWatchers map[int]chan []model.Entry
	judgeWatchers map[int]chan []model.JudgmentRecord
	voteWatchers  map[int]chan []model.VoteRecord

	closed bool
	now    func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		entries:       make(map[string]model.Entry),
		entrySeq:      make(map[string]int64),
		judgments:     make(map[string]model.JudgmentRecord),
		votes:         make(map[string]model.VoteRecord),
		entryWatchers: make(map[int]chan []model.Entry),
		judgeWatchers: make(map[int]chan []model.JudgmentRecord),
		voteWatchers:  make(map[int]chan []model.VoteRecord),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEntry implements Store.
func (s *MemStore) CreateEntry(ctx context.Context, e model.Entry) (model.Entry, error) {
	if e.Name == "" {
		return model.Entry{}, ErrInvalidEntry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Entry{}, ErrClosed
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	s.seq++
	s.entries[e.ID] = e
	s.entrySeq[e.ID] = s.seq
	s.notifyEntriesLocked()
	return e, nil
}

// DeleteEntry implements Store. Deleting a missing entry is a no-op.
// Judgments referencing the entry are not cascaded.
func (s *MemStore) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.entries[id]; !ok {
		return nil
	}
	delete(s.entries, id)
	delete(s.entrySeq, id)
	s.notifyEntriesLocked()
	return nil
}

// UpsertJudgment implements Store.
func (s *MemStore) UpsertJudgment(ctx context.Context, rec model.JudgmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.judgments[rec.Key()] = rec.Clone()
	s.notifyJudgmentsLocked()
	return nil
}

// DeleteJudgment implements Store. Deleting a missing record is a no-op.
func (s *MemStore) DeleteJudgment(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.judgments[key]; !ok {
		return nil
	}
	delete(s.judgments, key)
	s.notifyJudgmentsLocked()
	return nil
}

// Judgments implements Store.
func (s *MemStore) Judgments(ctx context.Context) ([]model.JudgmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.judgmentSnapshotLocked(), nil
}

// UpsertVote implements Store.
func (s *MemStore) UpsertVote(ctx context.Context, rec model.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.votes[rec.VoterID] = rec
	s.notifyVotesLocked()
	return nil
}

// DeleteVote implements Store. Deleting a missing vote is a no-op.
func (s *MemStore) DeleteVote(ctx context.Context, voterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.votes[voterID]; !ok {
		return nil
	}
	delete(s.votes, voterID)
	s.notifyVotesLocked()
	return nil
}

// Votes implements Store.
func (s *MemStore) Votes(ctx context.Context) ([]model.VoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.voteSnapshotLocked(), nil
}

// WatchEntries implements Store.
func (s *MemStore) WatchEntries(ctx context.Context) (<-chan []model.Entry, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	id := s.nextWatcher
	s.nextWatcher++
	ch := make(chan []model.Entry, watchBuffer)
	ch <- s.entrySnapshotLocked()
	s.entryWatchers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.entryWatchers[id]; ok {
			delete(s.entryWatchers, id)
			close(c)
		}
	}()
	return ch, nil
}

// WatchJudgments implements Store.
func (s *MemStore) WatchJudgments(ctx context.Context) (<-chan []model.JudgmentRecord, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	id := s.nextWatcher
	s.nextWatcher++
	ch := make(chan []model.JudgmentRecord, watchBuffer)
	ch <- s.judgmentSnapshotLocked()
	s.judgeWatchers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.judgeWatchers[id]; ok {
			delete(s.judgeWatchers, id)
			close(c)
		}
	}()
	return ch, nil
}

// WatchVotes implements Store.
func (s *MemStore) WatchVotes(ctx context.Context) (<-chan []model.VoteRecord, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	id := s.nextWatcher
	s.nextWatcher++
	ch := make(chan []model.VoteRecord, watchBuffer)
	ch <- s.voteSnapshotLocked()
	s.voteWatchers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.voteWatchers[id]; ok {
			delete(s.voteWatchers, id)
			close(c)
		}
	}()
	return ch, nil
}

// Close implements Store.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.entryWatchers {
		delete(s.entryWatchers, id)
		close(ch)
	}
	for id, ch := range s.judgeWatchers {
		delete(s.judgeWatchers, id)
		close(ch)
	}
	for id, ch := range s.voteWatchers {
		delete(s.voteWatchers, id)
		close(ch)
	}
	return nil
}

// entrySnapshotLocked returns entries in creation order. Callers hold s.mu.
func (s *MemStore) entrySnapshotLocked() []model.Entry {
	out := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return s.entrySeq[out[i].ID] < s.entrySeq[out[j].ID]
	})
	return out
}

func (s *MemStore) judgmentSnapshotLocked() []model.JudgmentRecord {
	out := make([]model.JudgmentRecord, 0, len(s.judgments))
	for _, rec := range s.judgments {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func (s *MemStore) voteSnapshotLocked() []model.VoteRecord {
	out := make([]model.VoteRecord, 0, len(s.votes))
	for _, rec := range s.votes {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterID < out[j].VoterID })
	return out
}

func (s *MemStore) notifyEntriesLocked() {
	snap := s.entrySnapshotLocked()
	for _, ch := range s.entryWatchers {
		deliver(ch, snap)
	}
}

func (s *MemStore) notifyJudgmentsLocked() {
	snap := s.judgmentSnapshotLocked()
	for _, ch := range s.judgeWatchers {
		deliver(ch, snap)
	}
}

func (s *MemStore) notifyVotesLocked() {
	snap := s.voteSnapshotLocked()
	for _, ch := range s.voteWatchers {
		deliver(ch, snap)
	}
}

// deliver pushes a snapshot without blocking. When the watcher still holds
// an unconsumed snapshot, the stale one is displaced by the newer complete
// set.
func deliver[T any](ch chan T, snap T) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

var _ Store = (*MemStore)(nil)
