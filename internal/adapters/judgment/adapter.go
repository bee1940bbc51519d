// Package judgment is the write path for judge and voter actions. It
// serializes concurrent writes to the same record and runs the bulk reset
// sweep. Reads flow through the store watches, never through this package.
package judgment

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/jury/internal/adapters/store"
	"github.com/okian/jury/internal/domain/model"
	"github.com/okian/jury/pkg/logger"
	"github.com/okian/jury/pkg/metrics"
)

// Adapter writes judgments and votes to the backing store. Writes to the
// same composite key are serialized: a second submit for a key waits for
// the in-flight one instead of racing it.
type Adapter struct {
	store  store.Store
	logger logger.Logger

	mu       sync.Mutex
	inflight map[string]chan struct{}

	resetParallelism int
}

// New creates a judgment write adapter over the given store.
func New(st store.Store, opts ...Option) *Adapter {
	a := &Adapter{
		store:            st,
		inflight:         make(map[string]chan struct{}),
		resetParallelism: defaultResetParallelism,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("judgment")
	}
	return a
}

// acquire blocks until no write for the key is in flight, then claims the
// key. The caller must release it when the write finishes.
func (a *Adapter) acquire(ctx context.Context, key string) error {
	for {
		a.mu.Lock()
		ch, busy := a.inflight[key]
		if !busy {
			a.inflight[key] = make(chan struct{})
			a.mu.Unlock()
			return nil
		}
		a.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *Adapter) release(key string) {
	a.mu.Lock()
	ch := a.inflight[key]
	delete(a.inflight, key)
	a.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// Submit persists one judge's record for one entry, replacing any previous
// record under the same composite key.
func (a *Adapter) Submit(ctx context.Context, rec model.JudgmentRecord) error {
	key := rec.Key()
	if err := a.acquire(ctx, key); err != nil {
		return err
	}
	defer a.release(key)

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	if err := a.store.UpsertJudgment(ctx, rec); err != nil {
		metrics.IncSubmitErrors()
		a.logger.Warn(ctx, "judgment submit failed",
			logger.String("key", key),
			logger.Error(err),
		)
		return fmt.Errorf("%w: submit %s: %v", ErrPersistence, key, err)
	}
	metrics.IncSubmits()
	return nil
}

// Retract deletes one judge's record for one entry. Retracting a record
// that does not exist is a no-op.
func (a *Adapter) Retract(ctx context.Context, judgeID, entryID string) error {
	key := model.JudgmentKey(judgeID, entryID)
	if err := a.acquire(ctx, key); err != nil {
		return err
	}
	defer a.release(key)

	if err := a.store.DeleteJudgment(ctx, key); err != nil {
		return fmt.Errorf("%w: retract %s: %v", ErrPersistence, key, err)
	}
	return nil
}

// CastVote records one popular vote per voter, replacing any earlier vote
// by the same voter.
func (a *Adapter) CastVote(ctx context.Context, rec model.VoteRecord) error {
	key := "vote/" + rec.VoterID
	if err := a.acquire(ctx, key); err != nil {
		return err
	}
	defer a.release(key)

	if rec.CastAt.IsZero() {
		rec.CastAt = time.Now().UTC()
	}
	if err := a.store.UpsertVote(ctx, rec); err != nil {
		a.logger.Warn(ctx, "vote cast failed",
			logger.String("voter", rec.VoterID),
			logger.Error(err),
		)
		return fmt.Errorf("%w: cast vote %s: %v", ErrPersistence, rec.VoterID, err)
	}
	metrics.IncVotesCast()
	return nil
}

// RetractVote removes a voter's ballot. Idempotent.
func (a *Adapter) RetractVote(ctx context.Context, voterID string) error {
	key := "vote/" + voterID
	if err := a.acquire(ctx, key); err != nil {
		return err
	}
	defer a.release(key)

	if err := a.store.DeleteVote(ctx, voterID); err != nil {
		return fmt.Errorf("%w: retract vote %s: %v", ErrPersistence, voterID, err)
	}
	return nil
}

// ResetSummary reports the outcome of a reset sweep.
type ResetSummary struct {
	JudgmentsDeleted int
	VotesDeleted     int
	Failures         int
}

// ResetAll deletes every judgment and every vote. Entries are deliberately
// left alone. The sweep is best-effort: a failed delete is counted and the
// sweep continues, so a partial failure never blocks the rest.
func (a *Adapter) ResetAll(ctx context.Context) (ResetSummary, error) {
	judgments, err := a.store.Judgments(ctx)
	if err != nil {
		return ResetSummary{}, fmt.Errorf("%w: list judgments: %v", ErrReset, err)
	}
	votes, err := a.store.Votes(ctx)
	if err != nil {
		return ResetSummary{}, fmt.Errorf("%w: list votes: %v", ErrReset, err)
	}

	var deletedJudgments, deletedVotes, failures int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.resetParallelism)
	for _, rec := range judgments {
		key := rec.Key()
		g.Go(func() error {
			if err := a.store.DeleteJudgment(gctx, key); err != nil {
				atomic.AddInt64(&failures, 1)
				a.logger.Warn(gctx, "reset: judgment delete failed",
					logger.String("key", key),
					logger.Error(err),
				)
				return nil
			}
			atomic.AddInt64(&deletedJudgments, 1)
			return nil
		})
	}
	for _, rec := range votes {
		voterID := rec.VoterID
		g.Go(func() error {
			if err := a.store.DeleteVote(gctx, voterID); err != nil {
				atomic.AddInt64(&failures, 1)
				a.logger.Warn(gctx, "reset: vote delete failed",
					logger.String("voter", voterID),
					logger.Error(err),
				)
				return nil
			}
			atomic.AddInt64(&deletedVotes, 1)
			return nil
		})
	}
	_ = g.Wait()

	sum := ResetSummary{
		JudgmentsDeleted: int(atomic.LoadInt64(&deletedJudgments)),
		VotesDeleted:     int(atomic.LoadInt64(&deletedVotes)),
		Failures:         int(atomic.LoadInt64(&failures)),
	}
	metrics.AddResetDeletes(sum.JudgmentsDeleted + sum.VotesDeleted)
	if sum.Failures > 0 {
		metrics.AddResetFailures(sum.Failures)
		return sum, fmt.Errorf("%w: %d of %d deletes failed",
			ErrReset, sum.Failures, len(judgments)+len(votes))
	}
	a.logger.Info(ctx, "reset complete",
		logger.Int("judgments", sum.JudgmentsDeleted),
		logger.Int("votes", sum.VotesDeleted),
	)
	return sum, nil
}
