package mesi

// EventKind distinguishes the two coherence events the directory can
// broadcast to a peer holder (§4.3).
type EventKind int

const (
	// RemoteRead signals that another worker is about to read the key.
	RemoteRead EventKind = iota

	// RemoteWrite signals that another worker is about to write the key.
	RemoteWrite
)

func (k EventKind) String() string {
	switch k {
	case RemoteRead:
		return "RemoteRead"
	case RemoteWrite:
		return "RemoteWrite"
	default:
		panic(&ProtocolViolationError{Detail: "unrecognised EventKind value"})
	}
}

// Msg is the closed set of messages that flow over a Pair (§4.2). Only
// EventMsg and AckMsg implement it; a listener or directory that
// receives any other dynamic type — which cannot happen through this
// package's own API, but could via a caller's mistaken reuse of the
// generic Pair for something else — fails a type switch and is treated
// as a protocol violation (§7) rather than silently misbehaving.
type Msg interface {
	isMsg()
}

// EventMsg is sent by the directory to a peer holder's listener.
type EventMsg struct {
	Kind EventKind
	Key  string
}

func (EventMsg) isMsg() {}

// AckMsg is sent by a listener back to the directory in reply to an
// EventMsg, reporting whether handling it evicted the local entry.
type AckMsg struct {
	WorkerID    int
	Invalidated bool
}

func (AckMsg) isMsg() {}
