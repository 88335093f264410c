package ports

// MarkerStore persists the readiness flag as a marker file so that health
// checks running in another process can observe it.
//
// Both operations are idempotent. Errors are reported so the caller can log
// them; they must never change the in-memory readiness value.
type MarkerStore interface {
	// SetReady writes the marker, overwriting any previous content.
	SetReady() error

	// Clear removes the marker if present.
	Clear() error
}
