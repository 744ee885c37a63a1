package mesi

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-mesi/internal/telemetry"
)

// Controller is one worker's cache controller (§4.4): a client-facing
// Get/Set over a private map of entries, backed by a dedicated listener
// goroutine that services coherence requests from the Directory. T is
// the cached value type; toString/fromString supply the conversions
// §6/§9 require ("T must be convertible to/from string") without this
// package committing to any particular codec.
type Controller[T any] struct {
	id        int
	endpoint  *Endpoint[Msg]
	directory *Directory
	log       *telemetry.Logger

	toString   func(T) string
	fromString func(string) T

	mu    sync.Mutex
	cache map[string]*entry
	clock uint64

	hits atomic.Uint64
	ops  atomic.Uint64

	highWaterMark int
	evictionBatch int
}

// NewController registers with directory, receiving a worker identity
// and endpoint, then spawns the listener goroutine. Per §9's
// "fire-and-forget" design note, the Controller holds the Directory but
// the listener never calls back into it except via Directory.WriteBack,
// which touches no directory lock.
func NewController[T any](directory *Directory, toString func(T) string, fromString func(string) T, opts ...ControllerOption) *Controller[T] {
	cfg := resolveControllerOptions(opts)
	id, endpoint := directory.Register()
	c := &Controller[T]{
		id:            id,
		endpoint:      endpoint,
		directory:     directory,
		log:           cfg.logger,
		toString:      toString,
		fromString:    fromString,
		cache:         make(map[string]*entry),
		highWaterMark: cfg.highWaterMark,
		evictionBatch: cfg.evictionBatch,
	}
	go c.listen()
	return c
}

// ID returns the dense worker identity assigned at registration.
func (c *Controller[T]) ID() int {
	return c.id
}

// listen runs forever, servicing one coherence event at a time (§4.4,
// §5 "the listener loop has no exit condition"). It owns the endpoint
// exclusively — no other goroutine ever calls Send/Receive on it.
func (c *Controller[T]) listen() {
	for {
		msg := c.endpoint.Receive()
		ev, ok := msg.(EventMsg)
		if !ok {
			fatal(c.log, &ProtocolViolationError{Detail: "listener received a non-EventMsg"})
		}
		invalidated := c.handleRemoteEvent(ev)
		c.endpoint.Send(Msg(AckMsg{WorkerID: c.id, Invalidated: invalidated}))
	}
}

// handleRemoteEvent applies the flush-then-handle rule of §4.3 to the
// local entry for ev.Key, removing it if handle says to evict, then runs
// the shared high-water eviction check before releasing the cache lock.
func (c *Controller[T]) handleRemoteEvent(ev EventMsg) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache[ev.Key]
	if !ok {
		// The directory only broadcasts to registered holders, but a
		// holder may have already evicted the key under high-water
		// pressure; nothing to invalidate here.
		return false
	}

	evict, wasModified := e.handle(ev.Kind)
	if wasModified {
		c.directory.WriteBack(ev.Key, e.value)
	}
	if evict {
		delete(c.cache, ev.Key)
	}

	c.evictIfNeededLocked()
	return evict
}

// Get implements §4.4's get: a local hit never calls the directory
// (Open Question decision 2); a miss calls Directory.Read and caches the
// result as Exclusive or Shared depending on whether any other worker
// currently holds the key.
func (c *Controller[T]) Get(key string) T {
	c.mu.Lock()
	if e, ok := c.cache[key]; ok && e.status != StatusInvalid {
		e.touched = c.nextTouchLocked()
		value := e.value
		c.ops.Add(1)
		c.hits.Add(1)
		c.mu.Unlock()
		return c.fromString(value)
	}
	c.mu.Unlock()

	value, sharerCount := c.directory.Read(c.id, key)

	status := StatusShared
	if sharerCount == 0 {
		status = StatusExclusive
	}

	c.mu.Lock()
	c.cache[key] = &entry{value: value, status: status, touched: c.nextTouchLocked()}
	c.ops.Add(1)
	c.evictIfNeededLocked()
	c.mu.Unlock()

	return c.fromString(value)
}

// Set implements §4.4's set: Directory.Write broadcasts RemoteWrite and
// claims sole ownership of the key before the local entry is upserted as
// Modified.
func (c *Controller[T]) Set(key string, value T) {
	c.directory.Write(c.id, key)

	str := c.toString(value)

	c.mu.Lock()
	_, existed := c.cache[key]
	c.cache[key] = &entry{value: str, status: StatusModified, touched: c.nextTouchLocked()}
	c.ops.Add(1)
	if existed {
		c.hits.Add(1)
	}
	c.evictIfNeededLocked()
	c.mu.Unlock()
}

// Collect returns the observability counters of §3/§6: total operations
// and cache hits since construction.
func (c *Controller[T]) Collect() (hits, ops uint64) {
	return c.hits.Load(), c.ops.Load()
}

// Close logs a terminal summary of this controller's counters (the
// supplemented feature in SPEC_FULL.md standing in for the original's
// Drop-time print), throttled per worker through Logger.Allow.
// It does not stop the listener goroutine — per §5, worker lifetime is
// process lifetime.
func (c *Controller[T]) Close() {
	if c.log == nil || !c.log.Allow(c.id) {
		return
	}
	hits, ops := c.Collect()
	if b := c.log.Info(); b != nil {
		b.Int("worker", c.id).Uint64("hits", hits).Uint64("ops", ops).Log("controller closing")
	}
}

func (c *Controller[T]) nextTouchLocked() uint64 {
	c.clock++
	return c.clock
}

// evictIfNeededLocked implements the high-water bulk eviction of §4.4,
// run from both the listener path and the client path (Open Question
// decision 3). It must be called with mu held. The evictionBatch
// lowest-touched entries are selected via a bounded scan and sort
// (Open Question decision 1); any Modified entry among them is flushed
// first (Open Question decision 4), preserving invariant 4.
func (c *Controller[T]) evictIfNeededLocked() {
	if len(c.cache) <= c.highWaterMark {
		return
	}

	type candidate struct {
		key     string
		touched uint64
	}
	candidates := make([]candidate, 0, len(c.cache))
	for k, e := range c.cache {
		candidates = append(candidates, candidate{key: k, touched: e.touched})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].touched < candidates[j].touched })

	n := c.evictionBatch
	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		key := candidates[i].key
		e := c.cache[key]
		if e.status == StatusModified {
			c.directory.WriteBack(key, e.value)
		}
		delete(c.cache, key)
	}
}
