// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults, Load(ctx) to layer
//     file and environment sources on top.
//   - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/okian/jury/internal/domain/criteria"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// StoreBackend selects the directory store implementation.
	StoreBackend string `koanf:"store_backend" validate:"oneof=memory redis"`

	// RedisAddr, RedisPassword and RedisDB configure the redis backend.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`

	// Namespace isolates one judging session's keys from others sharing
	// the same redis server.
	Namespace string `koanf:"namespace" validate:"required"`

	// SubjectID pins the session's judge/voter identity. Empty means an
	// anonymous per-process identity.
	SubjectID string `koanf:"subject_id"`

	// TwoAxis switches to the two-axis rubric where any saved record
	// counts as complete.
	TwoAxis bool `koanf:"two_axis"`

	// Criteria is the scoring rubric. Empty means the default rubric.
	Criteria []criteria.Criterion `koanf:"criteria" validate:"dive"`

	// Categories lists the popular vote categories.
	Categories []string `koanf:"categories" validate:"min=1,dive,required"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"gt=0"`

	// ResetParallelism bounds concurrent deletes during an event reset.
	ResetParallelism int `koanf:"reset_parallelism" validate:"gt=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":9080",
		StoreBackend: "memory",
		RedisAddr:    "localhost:6379",
		Namespace:    "jury",
		Criteria:     criteria.Default(),
		Categories: []string{
			"best_overall",
			"most_innovative",
			"best_design",
			"crowd_favorite",
		},
		MaxLeaderboardLimit: 100,
		ResetParallelism:    8,
	}
}

// CriteriaList returns the configured rubric as a criteria.List.
func (c *Config) CriteriaList() criteria.List {
	if len(c.Criteria) == 0 {
		return criteria.Default()
	}
	return criteria.List(c.Criteria)
}
