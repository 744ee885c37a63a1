package mesi

import (
	"time"

	"github.com/joeycumines/go-mesi/internal/telemetry"
)

// Default configuration constants (§6).
const (
	DefaultHighWaterMark = 1024
	DefaultEvictionBatch = 128
)

// directoryOptions holds resolved configuration for a Directory.
type directoryOptions struct {
	logger          *telemetry.Logger
	workerCapacity  int
	flushInterval   time.Duration
	flushBatchLimit int
}

// Option configures a Directory constructed via NewDirectory.
type Option interface {
	applyDirectory(*directoryOptions)
}

type optionFunc func(*directoryOptions)

func (f optionFunc) applyDirectory(o *directoryOptions) { f(o) }

// WithLogger attaches a logger used for diagnostics and fatal errors. A
// nil logger (the default) disables logging entirely.
func WithLogger(log *telemetry.Logger) Option {
	return optionFunc(func(o *directoryOptions) { o.logger = log })
}

// WithWorkerCapacityHint preallocates the directory's endpoint table for
// hint workers, avoiding map growth during registration (§6, "initial
// worker capacity hint (optional)").
func WithWorkerCapacityHint(hint int) Option {
	return optionFunc(func(o *directoryOptions) { o.workerCapacity = hint })
}

// WithWriteBackBatching configures the microbatch.Batcher that coalesces
// concurrent write_back calls (SPEC_FULL.md DOMAIN STACK). interval is
// the maximum time a write-back job waits before its batch is flushed;
// limit is the maximum number of jobs per batch. Zero interval or limit
// falls back to microbatch's own defaults.
func WithWriteBackBatching(interval time.Duration, limit int) Option {
	return optionFunc(func(o *directoryOptions) {
		o.flushInterval = interval
		o.flushBatchLimit = limit
	})
}

func resolveDirectoryOptions(opts []Option) *directoryOptions {
	cfg := &directoryOptions{
		workerCapacity: 8,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyDirectory(cfg)
	}
	return cfg
}

// controllerOptions holds resolved configuration for a Controller.
type controllerOptions struct {
	logger        *telemetry.Logger
	highWaterMark int
	evictionBatch int
}

// ControllerOption configures a Controller constructed via NewController.
type ControllerOption interface {
	applyController(*controllerOptions)
}

type controllerOptionFunc func(*controllerOptions)

func (f controllerOptionFunc) applyController(o *controllerOptions) { f(o) }

// WithControllerLogger attaches a logger to a Controller and its
// listener goroutine.
func WithControllerLogger(log *telemetry.Logger) ControllerOption {
	return controllerOptionFunc(func(o *controllerOptions) { o.logger = log })
}

// WithHighWaterMark overrides the cache map size (§4.4, §6) above which
// the listener and client paths trigger bulk eviction. Must be positive.
func WithHighWaterMark(n int) ControllerOption {
	return controllerOptionFunc(func(o *controllerOptions) { o.highWaterMark = n })
}

// WithEvictionBatch overrides the number of entries removed per eviction
// pass (§4.4, §6). Must be positive.
func WithEvictionBatch(n int) ControllerOption {
	return controllerOptionFunc(func(o *controllerOptions) { o.evictionBatch = n })
}

func resolveControllerOptions(opts []ControllerOption) *controllerOptions {
	cfg := &controllerOptions{
		highWaterMark: DefaultHighWaterMark,
		evictionBatch: DefaultEvictionBatch,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyController(cfg)
	}
	if cfg.highWaterMark <= 0 {
		panic(&ProtocolViolationError{Detail: "high-water mark must be positive"})
	}
	if cfg.evictionBatch <= 0 {
		panic(&ProtocolViolationError{Detail: "eviction batch must be positive"})
	}
	return cfg
}
