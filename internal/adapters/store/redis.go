package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/okian/jury/internal/domain/model"
	"github.com/okian/jury/pkg/logger"
)

// Default Redis store configuration constants.
const (
	defaultRedisAddr = "localhost:6379"
	defaultNamespace = "jury"
)

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*RedisStore)

// WithAddr sets the Redis server address.
func WithAddr(addr string) RedisOption {
	return func(s *RedisStore) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithPassword sets the Redis password.
func WithPassword(password string) RedisOption {
	return func(s *RedisStore) {
		s.password = password
	}
}

// WithDB selects the Redis logical database.
func WithDB(db int) RedisOption {
	return func(s *RedisStore) {
		if db >= 0 {
			s.db = db
		}
	}
}

// WithNamespace prefixes every key and channel, isolating one judging
// session from others sharing the server.
func WithNamespace(ns string) RedisOption {
	return func(s *RedisStore) {
		if ns != "" {
			s.ns = ns
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) RedisOption {
	return func(s *RedisStore) {
		if log != nil {
			s.logger = log
		}
	}
}

// RedisStore implements Store on Redis: one hash per collection, documents
// as JSON fields, and a pub/sub channel per collection for change
// notification. A notification only says "something changed"; watchers
// re-read the whole hash, preserving the full-snapshot delivery contract.
type RedisStore struct {
	client   *redis.Client
	logger   logger.Logger
	addr     string
	password string
	db       int
	ns       string
}

// Wire shapes for the stored JSON documents.
type entryDoc struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type judgmentDoc struct {
	JudgeID        string         `json:"judge_id"`
	EntryID        string         `json:"entry_id"`
	CriteriaScores map[string]int `json:"criteria_scores"`
	Review         string         `json:"review"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type voteDoc struct {
	VoterID   string    `json:"voter_id"`
	VoterName string    `json:"voter_name"`
	Category  string    `json:"category"`
	CastAt    time.Time `json:"cast_at"`
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts ...RedisOption) (*RedisStore, error) {
	s := &RedisStore{
		addr: defaultRedisAddr,
		ns:   defaultNamespace,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("redis-store")
	}

	s.client = redis.NewClient(&redis.Options{
		Addr:     s.addr,
		Password: s.password,
		DB:       s.db,
	})
	if _, err := s.client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return s, nil
}

func (s *RedisStore) key(collection string) string     { return s.ns + ":" + collection }
func (s *RedisStore) channel(collection string) string { return s.ns + ":changes:" + collection }

// CreateEntry implements Store.
func (s *RedisStore) CreateEntry(ctx context.Context, e model.Entry) (model.Entry, error) {
	if e.Name == "" {
		return model.Entry{}, ErrInvalidEntry
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	doc := entryDoc(e)
	if err := s.put(ctx, "entries", e.ID, doc); err != nil {
		return model.Entry{}, err
	}
	return e, nil
}

// DeleteEntry implements Store.
func (s *RedisStore) DeleteEntry(ctx context.Context, id string) error {
	return s.del(ctx, "entries", id)
}

// UpsertJudgment implements Store.
func (s *RedisStore) UpsertJudgment(ctx context.Context, rec model.JudgmentRecord) error {
	doc := judgmentDoc(rec)
	return s.put(ctx, "judgments", rec.Key(), doc)
}

// DeleteJudgment implements Store.
func (s *RedisStore) DeleteJudgment(ctx context.Context, key string) error {
	return s.del(ctx, "judgments", key)
}

// Judgments implements Store.
func (s *RedisStore) Judgments(ctx context.Context) ([]model.JudgmentRecord, error) {
	return s.readJudgments(ctx)
}

// UpsertVote implements Store.
func (s *RedisStore) UpsertVote(ctx context.Context, rec model.VoteRecord) error {
	doc := voteDoc(rec)
	return s.put(ctx, "votes", rec.VoterID, doc)
}

// DeleteVote implements Store.
func (s *RedisStore) DeleteVote(ctx context.Context, voterID string) error {
	return s.del(ctx, "votes", voterID)
}

// Votes implements Store.
func (s *RedisStore) Votes(ctx context.Context) ([]model.VoteRecord, error) {
	return s.readVotes(ctx)
}

// WatchEntries implements Store.
func (s *RedisStore) WatchEntries(ctx context.Context) (<-chan []model.Entry, error) {
	snap, err := s.readEntries(ctx)
	if err != nil {
		return nil, err
	}
	ch := make(chan []model.Entry, watchBuffer)
	ch <- snap
	go watchInto(ctx, s, "entries", ch, s.readEntries)
	return ch, nil
}

// WatchJudgments implements Store.
func (s *RedisStore) WatchJudgments(ctx context.Context) (<-chan []model.JudgmentRecord, error) {
	snap, err := s.readJudgments(ctx)
	if err != nil {
		return nil, err
	}
	ch := make(chan []model.JudgmentRecord, watchBuffer)
	ch <- snap
	go watchInto(ctx, s, "judgments", ch, s.readJudgments)
	return ch, nil
}

// WatchVotes implements Store.
func (s *RedisStore) WatchVotes(ctx context.Context) (<-chan []model.VoteRecord, error) {
	snap, err := s.readVotes(ctx)
	if err != nil {
		return nil, err
	}
	ch := make(chan []model.VoteRecord, watchBuffer)
	ch <- snap
	go watchInto(ctx, s, "votes", ch, s.readVotes)
	return ch, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// put stores one JSON document and notifies the collection channel.
func (s *RedisStore) put(ctx context.Context, collection, field string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", collection, err)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(collection), field, data)
	pipe.Publish(ctx, s.channel(collection), field)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write %s: %w", collection, err)
	}
	return nil
}

// del removes one document; removing a missing field is a no-op in Redis,
// which matches the idempotent-delete contract.
func (s *RedisStore) del(ctx context.Context, collection, field string) error {
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, s.key(collection), field)
	pipe.Publish(ctx, s.channel(collection), field)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete %s: %w", collection, err)
	}
	return nil
}

// watch re-reads the full collection on every notification and delivers it.
// A failed re-read is logged and skipped: the consumer keeps its last good
// snapshot and the loop resumes on the next notification.
func watchInto[T any](ctx context.Context, s *RedisStore, collection string, out chan T, read func(context.Context) (T, error)) {
	defer close(out)
	sub := s.client.Subscribe(ctx, s.channel(collection))
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Channel():
			if !ok {
				return
			}
			snap, err := read(ctx)
			if err != nil {
				s.logger.Warn(ctx, "snapshot re-read failed; keeping last good snapshot",
					logger.String("collection", collection),
					logger.Error(err),
				)
				continue
			}
			deliver(out, snap)
		}
	}
}

func (s *RedisStore) readEntries(ctx context.Context) ([]model.Entry, error) {
	raw, err := s.client.HGetAll(ctx, s.key("entries")).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read entries: %w", err)
	}
	out := make([]model.Entry, 0, len(raw))
	for field, data := range raw {
		var doc entryDoc
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			s.logger.Warn(ctx, "skipping malformed entry document", logger.String("id", field), logger.Error(err))
			continue
		}
		out = append(out, model.Entry(doc))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *RedisStore) readJudgments(ctx context.Context) ([]model.JudgmentRecord, error) {
	raw, err := s.client.HGetAll(ctx, s.key("judgments")).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read judgments: %w", err)
	}
	out := make([]model.JudgmentRecord, 0, len(raw))
	for field, data := range raw {
		var doc judgmentDoc
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			s.logger.Warn(ctx, "skipping malformed judgment document", logger.String("key", field), logger.Error(err))
			continue
		}
		out = append(out, model.JudgmentRecord(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func (s *RedisStore) readVotes(ctx context.Context) ([]model.VoteRecord, error) {
	raw, err := s.client.HGetAll(ctx, s.key("votes")).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read votes: %w", err)
	}
	out := make([]model.VoteRecord, 0, len(raw))
	for field, data := range raw {
		var doc voteDoc
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			s.logger.Warn(ctx, "skipping malformed vote document", logger.String("voter", field), logger.Error(err))
			continue
		}
		out = append(out, model.VoteRecord(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterID < out[j].VoterID })
	return out, nil
}

var _ Store = (*RedisStore)(nil)
