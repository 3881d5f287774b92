package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors:
//   - ErrNotFound: no row for the given key, or the row belongs to another owner
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrReferenced: the row is still referenced by dependent rows
//   - ErrExpired: a session or token is past its expiry
//   - ErrUnavailable: a backing service is temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrReferenced  = errors.New("referenced")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
