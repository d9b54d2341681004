// Package pcb implements the process control structure: the single owner of
// the managed heap, the collector's bookkeeping and the marshalled argument
// list for one run.
package pcb

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/boot-runtime/errors"
	"github.com/wippyai/boot-runtime/heap"
)

// Config controls control structure creation.
type Config struct {
	// HeapLimit caps the heap in bytes. 0 means unlimited.
	HeapLimit int

	// InitialObjects pre-sizes the heap arena.
	InitialObjects int

	// TraceAllocations logs every heap allocation at debug level.
	TraceAllocations bool
}

// Stats is the collector's bookkeeping.
type Stats struct {
	Collections int
	CollectUser time.Duration
	CollectSys  time.Duration
}

// PCB is the process control structure.
type PCB struct {
	heap    *heap.Heap
	tracer  *allocTracer
	argList heap.Value
	stats   Stats
	created time.Time

	mu        sync.Mutex
	destroyed bool
}

// New creates a control structure with an empty heap. It performs no I/O.
func New(cfg Config) (*PCB, error) {
	if cfg.HeapLimit < 0 {
		return nil, errors.InvalidInput(errors.PhaseLifecycle, "heap limit must not be negative")
	}

	p := &PCB{
		heap: heap.New(heap.Config{
			Limit:          cfg.HeapLimit,
			InitialObjects: cfg.InitialObjects,
		}),
		argList: heap.Empty,
		created: time.Now(),
	}

	if cfg.TraceAllocations {
		p.tracer = &allocTracer{log: Logger()}
		p.heap.Subscribe(p.tracer)
	}

	Logger().Debug("control structure created",
		zap.Int("heap_limit", cfg.HeapLimit),
		zap.Bool("trace_allocations", cfg.TraceAllocations),
	)
	return p, nil
}

// Heap returns the managed heap.
func (p *PCB) Heap() *heap.Heap {
	return p.heap
}

// AllocString allocates a heap string.
func (p *PCB) AllocString(s string) (heap.Ref, error) {
	if p.Destroyed() {
		return heap.Ref{}, errors.Closed(errors.PhaseLifecycle, "control structure")
	}
	return p.heap.AllocString(s)
}

// AllocPair allocates a heap pair.
func (p *PCB) AllocPair(car, cdr heap.Value) (heap.Ref, error) {
	if p.Destroyed() {
		return heap.Ref{}, errors.Closed(errors.PhaseLifecycle, "control structure")
	}
	return p.heap.AllocPair(car, cdr)
}

// SetArgList stores the marshalled argument list.
func (p *PCB) SetArgList(list heap.Value) error {
	if list == nil {
		return errors.InvalidInput(errors.PhaseLifecycle, "argument list must be a heap value")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return errors.Closed(errors.PhaseLifecycle, "control structure")
	}
	p.argList = list
	return nil
}

// ArgList returns the marshalled argument list, heap.Empty until set.
func (p *PCB) ArgList() heap.Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.argList
}

// Args reads the argument list back as native strings.
func (p *PCB) Args() ([]string, error) {
	return p.heap.Strings(p.ArgList())
}

// RecordCollection adds one collection and its CPU times to the bookkeeping.
func (p *PCB) RecordCollection(user, sys time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Collections++
	p.stats.CollectUser += user
	p.stats.CollectSys += sys
}

// Stats returns a snapshot of the collector's bookkeeping.
func (p *PCB) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Destroyed reports whether Close has been called.
func (p *PCB) Destroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}

// Close destroys the control structure and releases its heap.
// Only the first call succeeds.
func (p *PCB) Close() error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return errors.Closed(errors.PhaseLifecycle, "control structure")
	}
	p.destroyed = true
	p.argList = heap.Empty
	stats := p.stats
	p.mu.Unlock()

	hs := p.heap.Stats()
	if err := p.heap.Close(); err != nil {
		return err
	}
	if p.tracer != nil {
		p.heap.Unsubscribe(p.tracer)
	}

	Logger().Debug("control structure destroyed",
		zap.Duration("lifetime", time.Since(p.created)),
		zap.Int("collections", stats.Collections),
		zap.Duration("collect_user", stats.CollectUser),
		zap.Duration("collect_sys", stats.CollectSys),
		zap.Int("heap_objects", hs.Objects),
		zap.Int("heap_bytes", hs.Bytes),
	)
	return nil
}

type allocTracer struct {
	log *zap.Logger
}

func (t *allocTracer) OnHeapEvent(e heap.Event) {
	switch e.Type {
	case heap.EventAllocated:
		t.log.Debug("heap allocation",
			zap.Stringer("tag", e.Ref.Tag()),
			zap.Uint32("handle", uint32(e.Ref.Handle())),
			zap.Int("size", e.Size),
		)
	case heap.EventClosed:
		t.log.Debug("heap released")
	}
}
