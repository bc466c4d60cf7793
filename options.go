package tokengraph

import (
	"log/slog"
	"runtime"
)

// Option configures a Pipeline.
type Option func(*config)

type config struct {
	padID        int32
	concurrency  int
	caseFold     bool
	unicodeForm  string
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		padID:       0,
		concurrency: runtime.NumCPU(),
		logger:      slog.Default(),
	}
}

// WithPadID sets the default_value used when padding ragged token id rows
// to a dense matrix (default: 0).
func WithPadID(id int32) Option {
	return func(c *config) {
		c.padID = id
	}
}

// WithConcurrency bounds how many rows of a batch are normalized in
// parallel (default: runtime.NumCPU()). It does not change the Encoder's
// own parallelism.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithCaseFold enables Unicode case folding before splitting/encoding
// (default: disabled).
func WithCaseFold(enabled bool) Option {
	return func(c *config) {
		c.caseFold = enabled
	}
}

// WithUnicodeForm applies the named normalization form (NFD, NFC, NFKD,
// NFKC) before splitting/encoding (default: none).
func WithUnicodeForm(form string) Option {
	return func(c *config) {
		c.unicodeForm = form
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
