package mesi

// Status is the MESI state of a cache entry. The zero value is
// StatusInvalid, matching the invariant that an absent or just-created
// entry holds nothing valid yet.
type Status int

const (
	// StatusInvalid means no valid copy is held. Entries are never stored
	// in this state; they are removed from the cache map instead (§3).
	StatusInvalid Status = iota

	// StatusShared means a clean copy is held, and zero or more other
	// workers may also hold a Shared copy of the same key.
	StatusShared

	// StatusExclusive means a clean copy is held and no other worker
	// holds the key.
	StatusExclusive

	// StatusModified means a dirty copy is held, exclusively, that has
	// not yet been written back to the store.
	StatusModified
)

// String implements fmt.Stringer for log output and test failure
// messages. Every Status value is listed explicitly; an unrecognised
// value is a programming error, not a new protocol state, so it panics
// rather than silently printing a number.
func (s Status) String() string {
	switch s {
	case StatusInvalid:
		return "Invalid"
	case StatusShared:
		return "Shared"
	case StatusExclusive:
		return "Exclusive"
	case StatusModified:
		return "Modified"
	default:
		panic(&ProtocolViolationError{Detail: "unrecognised Status value"})
	}
}
