package core

import (
	"context"
	"errors"
	"time"
)

// ErrPayloadNotFound is returned by HandoffStore.Consume when the id is
// unknown, expired, or already consumed. Callers treat it as an idle
// state, never a fault: stale activation links and double deliveries
// are expected occurrences.
var ErrPayloadNotFound = errors.New("share payload not found")

// TrustedContacts answers whether a raw sender identity is pre-approved
// to bypass content scoring. Implementations must never fail: absence
// of trust information degrades to "not trusted".
type TrustedContacts interface {
	IsTrusted(rawSender string) bool
}

// ContactDirectory is a slower live lookup against the system contacts
// directory. It is optional and must not be consulted from
// time-budget-constrained contexts such as the filter extension.
type ContactDirectory interface {
	Lookup(ctx context.Context, normalizedNumber string) (bool, error)
}

// HandoffStore holds short-lived share payloads in durable storage
// shared between the producer and consumer processes.
type HandoffStore interface {
	// Put inserts the payload under its id. Last write wins on id
	// collision; ids carry enough entropy that collisions are
	// practically impossible.
	Put(ctx context.Context, payload *SharePayload) error

	// Consume atomically looks up, age-checks, and deletes the payload.
	// Expired entries are deleted and reported as ErrPayloadNotFound.
	// At most one concurrent caller ever receives a given payload.
	Consume(ctx context.Context, id string, maxAge time.Duration) (*SharePayload, error)

	// CleanupExpired deletes all entries older than maxAge. Intended to
	// run opportunistically at process startup to bound growth from
	// orphaned payloads.
	CleanupExpired(ctx context.Context, maxAge time.Duration) error
}

// ContactCache persists the synced trusted-contact set in shared storage.
type ContactCache interface {
	// LoadTrusted returns all cached normalized numbers.
	LoadTrusted(ctx context.Context) ([]string, error)

	// ReplaceTrusted swaps the cached set for the given numbers.
	ReplaceTrusted(ctx context.Context, numbers []string) error
}

// SettingsStore persists user-facing flags shared across processes.
type SettingsStore interface {
	// FilterEnabled reports whether the user has confirmed message
	// filtering. Defaults to false when never set.
	FilterEnabled(ctx context.Context) (bool, error)

	// SetFilterEnabled records the user's filtering choice.
	SetFilterEnabled(ctx context.Context, enabled bool) error
}

// SharedStore is the full shared-storage surface used across processes.
type SharedStore interface {
	HandoffStore
	ContactCache
	SettingsStore
}

// ScamAnalyzer is the remote scam-analysis service, consumed as an
// opaque network call. It is never invoked from the filter extension.
type ScamAnalyzer interface {
	AnalyzeText(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error)
}
