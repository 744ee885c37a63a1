package mesi

// Endpoint is one end of the bidirectional, blocking, point-to-point
// channel pair (built by NewPair) between the directory and one worker's
// listener (§4.2). It is
// generic over the message type the same way microbatch.Batcher[Job]
// is generic over its job type — here, Msg is the closed coherence
// message sum type (event.go), but the type itself enforces nothing
// about request/reply ordering: that shape is a convention the
// directory and listener both follow, not something Endpoint checks.
type Endpoint[M any] struct {
	send chan<- M
	recv <-chan M
}

// NewPair constructs a fresh channel pair. Sends on endpoint a's send
// side are received on b's receive side, and vice versa — a true
// full-duplex pair built from two independent unbuffered channels, the
// same shape as thread_socket.rs's ThreadSocket pair.
func NewPair[M any]() (a, b *Endpoint[M]) {
	ab := make(chan M)
	ba := make(chan M)
	return &Endpoint[M]{send: ab, recv: ba}, &Endpoint[M]{send: ba, recv: ab}
}

// Send blocks until the message is received on the other endpoint. It
// never drops a message.
func (e *Endpoint[M]) Send(m M) {
	e.send <- m
}

// Receive blocks until a message arrives. Delivery is FIFO per sender.
func (e *Endpoint[M]) Receive() M {
	return <-e.recv
}
