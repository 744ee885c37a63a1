package mesi

// entry is one cache line held by a controller: a value plus its MESI
// status (§3), and a touched counter used only for approximate-LRU
// eviction ordering (SPEC_FULL.md Open Question decision 1). entry is
// never kept at StatusInvalid — when handle transitions it to Invalid it
// also reports eviction, and the controller removes the map entry.
type entry struct {
	value   string
	status  Status
	touched uint64
}

// handle applies the transition table of §4.3 for a single remote event
// against the entry's current status, returning whether the caller must
// evict (remove) the entry afterward. It does not itself flush
// Modified data to the store — the listener does that, using the
// "wasModified" return to decide whether a write-back precedes the
// status change this call already performed.
//
// Per §4.3's table: a RemoteRead downgrades Modified/Exclusive/Shared to
// Shared and never evicts; a RemoteWrite invalidates (evicts) from any
// of those three statuses. Invalid entries are never handled — they do
// not exist in a controller's map.
func (e *entry) handle(kind EventKind) (evict bool, wasModified bool) {
	if e.status == StatusInvalid {
		panic(&ProtocolViolationError{Detail: "handle called on an Invalid entry"})
	}
	wasModified = e.status == StatusModified
	switch kind {
	case RemoteRead:
		e.status = StatusShared
		return false, wasModified
	case RemoteWrite:
		e.status = StatusInvalid
		return true, wasModified
	default:
		panic(&ProtocolViolationError{Detail: "handle received an unrecognised EventKind"})
	}
}
