package tokengraph

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
// Several operator packages define their own narrower sentinels; these cover
// the top-level Pipeline's own failure modes.
var (
	// ErrNoEncoder indicates a Pipeline was built without a subword encoder.
	ErrNoEncoder = errors.New("tokengraph: pipeline has no subword encoder configured")

	// ErrEmptyBatch indicates EncodeDense was called with zero input rows.
	ErrEmptyBatch = errors.New("tokengraph: empty input batch")
)
