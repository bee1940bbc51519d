package judgment

import "github.com/okian/jury/pkg/logger"

// Default adapter configuration constants.
const (
	defaultResetParallelism = 8
)

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithLogger sets a custom logger for the adapter.
func WithLogger(log logger.Logger) Option {
	return func(a *Adapter) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithResetParallelism bounds how many deletes a reset sweep runs at once.
func WithResetParallelism(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.resetParallelism = n
		}
	}
}
