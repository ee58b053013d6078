package models

import "errors"

// Engine error taxonomy. Per-strategy failures map to
// ErrRetrievalUnavailable and are absorbed by the orchestrator; only
// ErrInvalidConfig and ErrAllStrategiesFailed ever reach the caller.
var (
	// ErrRetrievalUnavailable means one strategy's backing store failed or
	// timed out. Recoverable: the strategy is excluded from fusion.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrAllStrategiesFailed means every enabled strategy failed. Surfaced
	// to the caller as "no results available", not a fatal error.
	ErrAllStrategiesFailed = errors.New("all retrieval strategies failed")

	// ErrInvalidConfig rejects a malformed search config before any
	// retrieval work begins.
	ErrInvalidConfig = errors.New("invalid search config")

	// ErrCacheCorruption marks a cache read that failed structural
	// validation. The entry is evicted and the read treated as a miss.
	ErrCacheCorruption = errors.New("cache entry failed validation")
)
