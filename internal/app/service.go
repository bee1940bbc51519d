// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
//
// The service mirrors the shared directory store through its watch streams,
// recomputes the full aggregate on every delivery, and layers the calling
// judge's local draft edits on top of the persisted state.
package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/okian/jury/internal/adapters/identity"
	"github.com/okian/jury/internal/adapters/judgment"
	"github.com/okian/jury/internal/adapters/store"
	"github.com/okian/jury/internal/domain/aggregate"
	"github.com/okian/jury/internal/domain/criteria"
	"github.com/okian/jury/internal/domain/draft"
	"github.com/okian/jury/internal/domain/model"
	"github.com/okian/jury/internal/domain/rank"
	"github.com/okian/jury/internal/domain/status"
	"github.com/okian/jury/internal/domain/types"
	"github.com/okian/jury/pkg/logger"
	"github.com/okian/jury/pkg/metrics"
)

// Service implements the API dependencies for the judging system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      store.Store
	writer     *judgment.Adapter
	identity   identity.Provider
	drafts     *draft.Reconciler
	engine     *aggregate.Engine
	projector  *rank.Projector
	classifier status.Classifier
	reg        *registry

	// Configuration
	list             criteria.List
	twoAxis          bool
	categories       []string
	maxLimit         int
	resetParallelism int

	// State
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing directory store. Required.
func WithStore(st store.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithIdentity sets the identity provider for the session.
func WithIdentity(p identity.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.identity = p
		}
	}
}

// WithCriteria replaces the default criteria list.
func WithCriteria(list criteria.List) Option {
	return func(s *Service) {
		if len(list) > 0 {
			s.list = list
		}
	}
}

// WithTwoAxis switches completeness to the two-axis rubric, where any
// persisted record counts as complete.
func WithTwoAxis(enabled bool) Option {
	return func(s *Service) {
		s.twoAxis = enabled
	}
}

// WithCategories sets the configured popular vote categories.
func WithCategories(categories []string) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = categories
		}
	}
}

// WithMaxLimit caps leaderboard query limits.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithResetParallelism bounds the reset sweep's concurrent deletes.
func WithResetParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.resetParallelism = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		list: criteria.Default(),
		categories: []string{
			"best_overall",
			"most_innovative",
			"best_design",
			"crowd_favorite",
		},
		maxLimit:         100,
		resetParallelism: 8,
		reg:              newRegistry(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start wires the components and begins mirroring the store. The watch
// streams live until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.identity == nil {
		s.identity = identity.NewAnonymous()
	}
	if err := s.list.Validate(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting judging service...")

	s.writer = judgment.New(s.store,
		judgment.WithLogger(s.logger.Named("writer")),
		judgment.WithResetParallelism(s.resetParallelism),
	)
	if s.twoAxis {
		s.classifier = status.NewTwoAxisClassifier()
	} else {
		s.classifier = status.NewCriteriaClassifier(s.list)
	}
	s.drafts = draft.NewReconciler(s.list)
	s.engine = aggregate.NewEngine(s.list, s.categories)
	s.projector = rank.NewProjector(s.classifier)

	wctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	entriesCh, err := s.store.WatchEntries(wctx)
	if err != nil {
		cancel()
		return err
	}
	judgmentsCh, err := s.store.WatchJudgments(wctx)
	if err != nil {
		cancel()
		return err
	}
	votesCh, err := s.store.WatchVotes(wctx)
	if err != nil {
		cancel()
		return err
	}

	s.wg.Add(3)
	go mirror(s, "entries", entriesCh, s.reg.replaceEntries)
	go mirror(s, "judgments", judgmentsCh, s.reg.replaceJudgments)
	go mirror(s, "votes", votesCh, s.reg.replaceVotes)

	s.started = true
	s.logger.Info(ctx, "judging service started",
		logger.Int("criteria", len(s.list)),
		logger.Int("categories", len(s.categories)),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping judging service...")
	s.cancel()
	s.wg.Wait()
	s.started = false
	s.logger.Info(context.Background(), "judging service stopped")
}

// mirror consumes one watch stream, replaces the registry's copy of the
// collection and recomputes the aggregate. Each delivery is a complete set.
func mirror[T any](s *Service, collection string, ch <-chan []T, replace func([]T)) {
	defer s.wg.Done()
	for snap := range ch {
		replace(snap)
		metrics.IncSnapshotApplied(collection)
		s.recompute()
	}
}

// recompute rebuilds the aggregate from the mirrored snapshots. A full
// rebuild per delivery keeps deletions correct without tracking deltas.
func (s *Service) recompute() {
	entries, judgments, votes := s.reg.snapshot()
	start := time.Now()
	res := s.engine.Compute(entries, judgments, votes)
	s.reg.setResult(res)

	metrics.ObserveRebuildDuration(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.SetEntries(len(entries))
	metrics.SetJudgments(len(judgments))
	metrics.SetVotes(len(votes))
	metrics.SetDrafts(s.drafts.Size())
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) subject(ctx context.Context) (string, error) {
	return s.identity.SubjectID(ctx)
}

// SetScore records a draft score for one criterion of one entry. The value
// is clamped to the criterion's range; nothing is persisted until Submit.
func (s *Service) SetScore(ctx context.Context, entryID, criterionID string, value int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !s.reg.hasEntry(entryID) {
		return ErrUnknownEntry
	}
	if err := s.drafts.SetScore(entryID, criterionID, value); err != nil {
		return err
	}
	metrics.SetDrafts(s.drafts.Size())
	return nil
}

// ClearScore removes a draft score, returning the field to unset. Clearing
// is not the same as scoring zero: an unset field blocks completeness.
func (s *Service) ClearScore(ctx context.Context, entryID, criterionID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.drafts.ClearScore(entryID, criterionID)
	metrics.SetDrafts(s.drafts.Size())
	return nil
}

// SetReview records a draft review text for one entry.
func (s *Service) SetReview(ctx context.Context, entryID, text string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.drafts.SetReview(entryID, text)
	metrics.SetDrafts(s.drafts.Size())
	return nil
}

// Discard drops every draft edit for one entry.
func (s *Service) Discard(ctx context.Context, entryID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.drafts.Discard(entryID)
	metrics.SetDrafts(s.drafts.Size())
	return nil
}

// Display returns the reconciled judgment view for one entry: draft fields
// where edited, persisted fields otherwise.
func (s *Service) Display(ctx context.Context, entryID string) (types.Judgment, error) {
	if err := s.ready(); err != nil {
		return types.Judgment{}, err
	}
	judgeID, err := s.subject(ctx)
	if err != nil {
		return types.Judgment{}, err
	}

	persisted := s.reg.record(judgeID, entryID)
	view := s.drafts.View(entryID, persisted)
	merged := s.drafts.Merged(judgeID, entryID, persisted)

	return types.Judgment{
		EntryID: entryID,
		Scores:  view.Scores,
		Review:  view.Review,
		Total:   view.Total,
		Status:  string(s.classifier.Classify(&merged)),
		Dirty:   view.Dirty,
	}, nil
}

// Submit persists the merged judgment for one entry, then clears the draft
// fields that made it into the write. A field re-edited while the write was
// in flight keeps its newer draft value.
func (s *Service) Submit(ctx context.Context, entryID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !s.reg.hasEntry(entryID) {
		return ErrUnknownEntry
	}
	judgeID, err := s.subject(ctx)
	if err != nil {
		return err
	}

	persisted := s.reg.record(judgeID, entryID)
	merged := s.drafts.Merged(judgeID, entryID, persisted)
	if s.classifier.Classify(&merged) != status.Complete {
		return ErrIncomplete
	}

	scores, review := s.drafts.Pending(entryID)
	if err := s.writer.Submit(ctx, merged); err != nil {
		return err
	}
	s.drafts.CommitSubmitted(entryID, scores, review)
	metrics.SetDrafts(s.drafts.Size())
	return nil
}

// Counts reports how much of the catalog the caller has fully judged,
// counting local draft edits toward completeness.
func (s *Service) Counts(ctx context.Context) (types.Progress, error) {
	if err := s.ready(); err != nil {
		return types.Progress{}, err
	}
	judgeID, err := s.subject(ctx)
	if err != nil {
		return types.Progress{}, err
	}

	entries, _, _ := s.reg.snapshot()
	p := types.Progress{All: len(entries)}
	for _, e := range entries {
		merged := s.drafts.Merged(judgeID, e.ID, s.reg.record(judgeID, e.ID))
		if s.classifier.Classify(&merged) == status.Complete {
			p.Complete++
		}
	}
	p.Remaining = p.All - p.Complete
	return p, nil
}

// Retract removes the caller's persisted judgment for one entry.
func (s *Service) Retract(ctx context.Context, entryID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	judgeID, err := s.subject(ctx)
	if err != nil {
		return err
	}
	return s.writer.Retract(ctx, judgeID, entryID)
}

// CastVote records the caller's single popular vote. Voting again moves the
// vote; it never adds a second one.
func (s *Service) CastVote(ctx context.Context, voterName, category string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !s.knownCategory(category) {
		return ErrUnknownCategory
	}
	voterID, err := s.subject(ctx)
	if err != nil {
		return err
	}
	return s.writer.CastVote(ctx, model.VoteRecord{
		VoterID:   voterID,
		VoterName: voterName,
		Category:  category,
	})
}

// RetractVote removes the caller's vote, if any.
func (s *Service) RetractVote(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	voterID, err := s.subject(ctx)
	if err != nil {
		return err
	}
	return s.writer.RetractVote(ctx, voterID)
}

// MyVote returns the caller's current vote, or nil when none stands.
func (s *Service) MyVote(ctx context.Context) (*model.VoteRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	voterID, err := s.subject(ctx)
	if err != nil {
		return nil, err
	}
	_, _, votes := s.reg.snapshot()
	for _, v := range votes {
		if v.VoterID == voterID {
			vote := v
			return &vote, nil
		}
	}
	return nil, nil
}

func (s *Service) knownCategory(category string) bool {
	for _, c := range s.categories {
		if c == category {
			return true
		}
	}
	return false
}

// Categories returns the configured popular vote categories.
func (s *Service) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Criteria returns the configured criteria list.
func (s *Service) Criteria() criteria.List {
	out := make(criteria.List, len(s.list))
	copy(out, s.list)
	return out
}

// VoteTally returns the per-category vote counts from the last aggregation.
func (s *Service) VoteTally(ctx context.Context) (map[string]int, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	tally := s.reg.aggregateResult().CategoryTally
	out := make(map[string]int, len(tally))
	for k, v := range tally {
		out[k] = v
	}
	return out, nil
}

// Rankings projects the current aggregate through the caller's query.
func (s *Service) Rankings(ctx context.Context, q rank.Query) ([]types.Row, error) {
	rows, err := s.projection(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]types.Row, len(rows))
	for i, row := range rows {
		out[i] = types.Row{
			Rank:     row.Rank,
			EntryID:  row.Entry.ID,
			Name:     row.Entry.Name,
			Owner:    row.Entry.Owner,
			Category: row.Entry.Category,
			Votes:    row.VoteCount,
			Total:    row.Total,
			Averages: row.AvgPerCriterion,
			Status:   string(row.Status),
		}
	}
	return out, nil
}

// ExportCSV writes the projected leaderboard as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, q rank.Query) error {
	rows, err := s.projection(ctx, q)
	if err != nil {
		return err
	}
	return rank.WriteCSV(w, s.list, rows)
}

func (s *Service) projection(ctx context.Context, q rank.Query) ([]rank.Row, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	judgeID, err := s.subject(ctx)
	if err != nil {
		return nil, err
	}
	if s.maxLimit > 0 && (q.Limit <= 0 || q.Limit > s.maxLimit) {
		q.Limit = s.maxLimit
	}
	return s.projector.Project(s.reg.aggregateResult(), s.reg.mine(judgeID), q), nil
}

// Entries returns the catalog in newest-first order for display.
func (s *Service) Entries(ctx context.Context) ([]types.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	entries, _, _ := s.reg.snapshot()
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = types.Entry(e)
	}
	return out, nil
}

// CreateEntry adds an entry to the shared catalog.
func (s *Service) CreateEntry(ctx context.Context, name, owner, category string) (types.Entry, error) {
	if err := s.ready(); err != nil {
		return types.Entry{}, err
	}
	created, err := s.store.CreateEntry(ctx, model.Entry{
		Name:     name,
		Owner:    owner,
		Category: category,
	})
	if err != nil {
		return types.Entry{}, err
	}
	return types.Entry(created), nil
}

// DeleteEntry removes an entry from the shared catalog. Judgments and votes
// referencing it become orphans and drop out of the aggregate.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.DeleteEntry(ctx, id)
}

// Reset deletes every judgment and every vote while preserving entries.
// Local draft edits survive: they were never persisted, so the sweep has no
// claim on them.
func (s *Service) Reset(ctx context.Context) (judgment.ResetSummary, error) {
	if err := s.ready(); err != nil {
		return judgment.ResetSummary{}, err
	}
	return s.writer.ResetAll(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    started,
		"criteria":   len(s.list),
		"categories": len(s.categories),
	}
	if started {
		entries, judgments, votes := s.reg.counts()
		stats["entries"] = entries
		stats["judgments"] = judgments
		stats["votes"] = votes
		stats["drafts"] = s.drafts.Size()
	}
	return stats
}
