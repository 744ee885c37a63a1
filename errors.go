package mesi

import "fmt"

// ProtocolViolationError indicates a coherence-protocol invariant was
// broken: a listener received an acknowledgment instead of an event, a
// directory received an event instead of an acknowledgment, or a holder
// list referenced a worker that was never registered. Per §7, these
// indicate a bug in the core and are never recoverable mid-protocol.
type ProtocolViolationError struct {
	Detail string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("mesi: protocol violation: %s", e.Detail)
}

// InfrastructureError wraps a failure from an out-of-scope collaborator
// (the store, or the OS, e.g. a failed thread/goroutine spawn). Per §7
// and §4.6, such failures are fatal and not retried.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("mesi: infrastructure failure during %s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// fatal is the single point through which this package treats an
// unrecoverable error as what §4.6 calls "fatal to the process". It
// logs at emergency level (if a logger is configured) and panics with
// err, so a top-level recover (in an embedding process, or in a test
// harness probing this exact behavior) can still classify the failure
// with errors.As.
func fatal(log diagnosticsLogger, err error) {
	if log != nil {
		log.Emergency(err)
	}
	panic(err)
}

// diagnosticsLogger is the minimal surface fatal needs; satisfied by
// *telemetry.Logger without this package importing it directly into
// the signature, keeping errors.go free of the telemetry dependency.
type diagnosticsLogger interface {
	Emergency(err error)
}
