package domain

import "errors"

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

var (
	// ErrNoFreshData is returned by the aggregator when every reading for a
	// symbol was dropped by the freshness filter.
	ErrNoFreshData = errors.New("no fresh data for symbol")

	// ErrSourceUnavailable describes a source denied by the breaker. The
	// scheduler skips a denied source's cycle without producing this error.
	ErrSourceUnavailable = errors.New("source unavailable: circuit open")

	// ErrInvalidReading describes a reading that fails the entry filter
	// (non-positive price). The aggregator drops such readings without
	// returning this error.
	ErrInvalidReading = errors.New("invalid reading: non-positive price")

	// ErrFetchFailed wraps any transient adapter-level failure (timeout,
	// non-2xx status, malformed payload).
	ErrFetchFailed = errors.New("source fetch failed")

	// ErrPublishFailed wraps a KV/PubSub backend error encountered while
	// publishing an aggregate quote.
	ErrPublishFailed = errors.New("publish failed")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// transientErrors collects sentinel errors that represent a retryable,
// non-fatal failure in the ingestion path.
var transientErrors = []error{
	ErrSourceUnavailable,
	ErrFetchFailed,
	ErrPublishFailed,
}

// IsTransient returns true when err (or any error in its chain) represents
// a transient failure the scheduler should simply retry on the next cycle.
func IsTransient(err error) bool {
	for _, target := range transientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
