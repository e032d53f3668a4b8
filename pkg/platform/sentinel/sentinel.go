package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: document or form session does not exist in the store
// - ErrConflict: concurrent writer changed the entry first
// - ErrExpired: form session passed its TTL
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation failures (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
