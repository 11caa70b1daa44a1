package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, artifact readers and
// publishers return these (optionally wrapped) so services can translate
// them into domain errors.
//
// - ErrNotFound: audit, report or artifact does not exist
// - ErrConflict: a record for the run already exists with different content
// - ErrUnavailable: backing service (database, cache, broker) is unreachable
// - ErrCorrupt: a persisted artifact exists but cannot be decoded
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrCorrupt     = errors.New("corrupt artifact")
)
