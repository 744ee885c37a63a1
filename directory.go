package mesi

import (
	"context"
	"sync"

	"github.com/joeycumines/go-mesi/internal/telemetry"
	"github.com/joeycumines/go-mesi/store"
	"github.com/joeycumines/go-microbatch"
)

// keyState is the per-key holder list plus the lock guarding it — lock
// ordering position 1 (§5). It is created lazily, on first reference to
// a key, and never removed (a key with an empty holder list is simply
// uninteresting, not absent).
type keyState struct {
	mu      sync.Mutex
	holders []int
}

// writeBackJob is one pending flush of a Modified entry's value,
// submitted to the Directory's write-back batcher (SPEC_FULL.md DOMAIN
// STACK) instead of calling the store directly.
type writeBackJob struct {
	key   string
	value string
}

// Directory is the process-wide, shared coherence bookkeeper of §4.5.
// It owns the holder lists, the per-worker endpoint table, and the
// store handle; every method is safe for concurrent use by any number
// of controllers and listeners.
type Directory struct {
	log   *telemetry.Logger
	store store.Store

	endpointsMu sync.Mutex // lock ordering position 2
	endpoints   map[int]*Endpoint[Msg]
	nextID      int

	keysMu sync.Mutex // guards creation of entries in keys, not the entries themselves
	keys   map[string]*keyState

	writeBack *microbatch.Batcher[writeBackJob]
}

// NewDirectory constructs a Directory backed by s. Per §4.1 the caller
// is responsible for s already being cleared (store.NewMemory always
// is; store.NewBolt clears its bucket at open).
func NewDirectory(s store.Store, opts ...Option) *Directory {
	cfg := resolveDirectoryOptions(opts)
	d := &Directory{
		log:       cfg.logger,
		store:     s,
		endpoints: make(map[int]*Endpoint[Msg], cfg.workerCapacity),
		keys:      make(map[string]*keyState),
	}
	d.writeBack = microbatch.NewBatcher(&microbatch.BatcherConfig{
		MaxSize:       cfg.flushBatchLimit,
		FlushInterval: cfg.flushInterval,
	}, d.processWriteBack)
	return d
}

// Close stops the write-back batcher, flushing any pending jobs first.
func (d *Directory) Close() error {
	return d.writeBack.Close()
}

func (d *Directory) keyStateFor(key string) *keyState {
	d.keysMu.Lock()
	defer d.keysMu.Unlock()
	ks, ok := d.keys[key]
	if !ok {
		ks = &keyState{}
		d.keys[key] = ks
	}
	return ks
}

// Register assigns the next dense worker identity and returns the
// worker-side endpoint of a freshly constructed channel pair (§4.5).
// Registrations are serialized by endpointsMu.
func (d *Directory) Register() (workerID int, workerEndpoint *Endpoint[Msg]) {
	directoryEnd, workerEnd := NewPair[Msg]()
	d.endpointsMu.Lock()
	defer d.endpointsMu.Unlock()
	workerID = d.nextID
	d.nextID++
	d.endpoints[workerID] = directoryEnd
	return workerID, workerEnd
}

// Read implements §4.5's read: broadcast RemoteRead to other holders,
// fold in the origin worker, and return the store's value plus the
// count of other current holders.
func (d *Directory) Read(workerID int, key string) (value string, sharerCount int) {
	ks := d.keyStateFor(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if len(ks.holders) > 0 {
		invalidated := d.broadcast(workerID, EventMsg{Kind: RemoteRead, Key: key}, ks.holders)
		ks.holders = subtractInts(ks.holders, invalidated)
	}
	ks.holders = appendUnique(ks.holders, workerID)

	value, err := d.store.Get(key)
	if err != nil {
		fatal(d.log, &InfrastructureError{Op: "store.Get", Err: err})
	}
	return value, len(ks.holders) - 1
}

// Write implements §4.5's write: broadcast RemoteWrite to every other
// holder, then replace the holder list with just the origin.
func (d *Directory) Write(workerID int, key string) {
	ks := d.keyStateFor(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if len(ks.holders) > 0 {
		d.broadcast(workerID, EventMsg{Kind: RemoteWrite, Key: key}, ks.holders)
	}
	ks.holders = []int{workerID}
}

// broadcast implements §4.5's two-phase broadcast: every send to a
// non-origin holder is issued before any receive, so peer listeners
// process concurrently rather than one round trip at a time. The
// endpoint table lock is held only long enough to snapshot the relevant
// endpoints (lock ordering position 2) and is released before any send
// or receive.
func (d *Directory) broadcast(originID int, event EventMsg, holders []int) (invalidatedIDs []int) {
	peers := make([]int, 0, len(holders))
	for _, h := range holders {
		if h != originID {
			peers = append(peers, h)
		}
	}
	if len(peers) == 0 {
		return nil
	}

	d.endpointsMu.Lock()
	eps := make([]*Endpoint[Msg], len(peers))
	for i, h := range peers {
		ep, ok := d.endpoints[h]
		if !ok {
			d.endpointsMu.Unlock()
			fatal(d.log, &ProtocolViolationError{Detail: "holder list references an unregistered worker"})
		}
		eps[i] = ep
	}
	d.endpointsMu.Unlock()

	for _, ep := range eps {
		ep.Send(Msg(event))
	}
	for i, ep := range eps {
		msg := ep.Receive()
		ack, ok := msg.(AckMsg)
		if !ok {
			fatal(d.log, &ProtocolViolationError{Detail: "directory received a non-AckMsg reply to a broadcast"})
		}
		if ack.Invalidated {
			invalidatedIDs = append(invalidatedIDs, peers[i])
		}
	}
	return invalidatedIDs
}

// WriteBack flushes a Modified entry's value to the store (§4.5),
// submitting it to the write-back batcher so concurrent flushes from
// independent listener goroutines coalesce into shared store round
// trips (SPEC_FULL.md DOMAIN STACK) rather than each calling store.Set
// independently.
func (d *Directory) WriteBack(key, value string) {
	result, err := d.writeBack.Submit(context.Background(), writeBackJob{key: key, value: value})
	if err != nil {
		fatal(d.log, &InfrastructureError{Op: "write-back submit", Err: err})
	}
	if err := result.Wait(context.Background()); err != nil {
		fatal(d.log, &InfrastructureError{Op: "write-back", Err: err})
	}
}

// processWriteBack is the microbatch.BatchProcessor draining a batch of
// write-back jobs. It prefers the store's BatchSetter when available,
// collapsing the batch to one value per key (last write wins, matching
// store.Set's own overwrite semantics) before a single round trip.
func (d *Directory) processWriteBack(_ context.Context, jobs []writeBackJob) error {
	if bs, ok := d.store.(store.BatchSetter); ok {
		values := make(map[string]string, len(jobs))
		for _, j := range jobs {
			values[j.key] = j.value
		}
		return bs.SetBatch(values)
	}
	for _, j := range jobs {
		if err := d.store.Set(j.key, j.value); err != nil {
			return err
		}
	}
	return nil
}

func appendUnique(holders []int, id int) []int {
	for _, h := range holders {
		if h == id {
			return holders
		}
	}
	return append(holders, id)
}

func subtractInts(holders, remove []int) []int {
	if len(remove) == 0 {
		return holders
	}
	out := holders[:0]
	for _, h := range holders {
		skip := false
		for _, r := range remove {
			if h == r {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, h)
		}
	}
	return out
}
