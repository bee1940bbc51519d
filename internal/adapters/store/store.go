// Package store defines the directory store contract consumed by the engine.
//
// The directory store is a multi-writer document store with push
// subscriptions. Every watch delivery is the full current set for that
// collection, not a delta: any single document change causes redelivery of
// the complete collection, and consumers replace their mirror wholesale. The
// three collections are watched on independent streams with no ordering
// guarantee between them.
package store

import (
	"context"

	"github.com/okian/jury/internal/domain/model"
)

// Store provides read/write access to the three shared collections.
// All deletes are idempotent: removing a missing document is a no-op.
type Store interface {
	// CreateEntry adds an entry to the catalog, assigning an id when the
	// caller left it empty, and returns the stored document.
	CreateEntry(ctx context.Context, e model.Entry) (model.Entry, error)
	// DeleteEntry removes an entry. Judgments referencing it are not
	// cascaded; the aggregation layer tolerates the orphans.
	DeleteEntry(ctx context.Context, id string) error

	// UpsertJudgment stores a record under its composite (judge, entry)
	// key, replacing any prior record for the same pair.
	UpsertJudgment(ctx context.Context, rec model.JudgmentRecord) error
	// DeleteJudgment removes the record stored under key.
	DeleteJudgment(ctx context.Context, key string) error
	// Judgments returns the full current judgment set.
	Judgments(ctx context.Context) ([]model.JudgmentRecord, error)

	// UpsertVote stores a vote under its voter id, replacing any prior vote.
	UpsertVote(ctx context.Context, rec model.VoteRecord) error
	// DeleteVote removes the vote stored for voterID.
	DeleteVote(ctx context.Context, voterID string) error
	// Votes returns the full current vote set.
	Votes(ctx context.Context) ([]model.VoteRecord, error)

	// WatchEntries delivers the current entry set immediately, then again
	// after every change, until ctx is done or the store closes.
	WatchEntries(ctx context.Context) (<-chan []model.Entry, error)
	// WatchJudgments is the judgment-collection counterpart of WatchEntries.
	WatchJudgments(ctx context.Context) (<-chan []model.JudgmentRecord, error)
	// WatchVotes is the vote-collection counterpart of WatchEntries.
	WatchVotes(ctx context.Context) (<-chan []model.VoteRecord, error)

	// Close releases the store and terminates all watch streams.
	Close() error
}
