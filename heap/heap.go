package heap

import (
	"sync"

	"github.com/wippyai/boot-runtime/errors"
)

// Config controls heap creation.
type Config struct {
	// Limit caps the total charged bytes. 0 means unlimited.
	Limit int

	// InitialObjects pre-sizes the arena.
	InitialObjects int
}

// EventType identifies a heap lifecycle notification.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventClosed
)

// Event describes an allocation or the release of the arena.
type Event struct {
	Object Object
	Ref    Ref
	Size   int
	Type   EventType
}

// Observer receives heap lifecycle events.
type Observer interface {
	OnHeapEvent(Event)
}

// Stats summarizes heap usage.
type Stats struct {
	Objects int
	Pairs   int
	Strings int
	Bytes   int
}

// Heap is an arena of tagged objects.
type Heap struct {
	entries   []entry
	observers []Observer
	stats     Stats
	limit     int
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	obj Object
}

// New creates an empty heap.
func New(cfg Config) *Heap {
	n := cfg.InitialObjects
	if n <= 0 {
		n = 64
	}
	return &Heap{
		entries: make([]entry, 0, n),
		limit:   cfg.Limit,
	}
}

// AllocString copies s into a new heap string.
func (h *Heap) AllocString(s string) (Ref, error) {
	n, ok := MakeFixnum(int64(len(s)))
	if !ok {
		return Ref{}, errors.Overflow(errors.PhaseHeap, []string{"length"}, len(s), "fixnum")
	}
	return h.alloc(newString([]byte(s), n))
}

// AllocPair creates a new pair (car . cdr).
func (h *Heap) AllocPair(car, cdr Value) (Ref, error) {
	if car == nil || cdr == nil {
		return Ref{}, errors.InvalidInput(errors.PhaseHeap, "pair fields must be heap values")
	}
	return h.alloc(&Pair{Car: car, Cdr: cdr})
}

func (h *Heap) alloc(obj Object) (Ref, error) {
	size := obj.Size()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return Ref{}, errors.Closed(errors.PhaseHeap, "heap")
	}
	if h.limit > 0 && h.stats.Bytes+size > h.limit {
		h.mu.Unlock()
		return Ref{}, errors.AllocationFailed(errors.PhaseHeap, size, h.limit)
	}

	h.entries = append(h.entries, entry{obj: obj})
	ref := Ref{handle: Handle(len(h.entries)), tag: obj.Tag()}

	h.stats.Objects++
	h.stats.Bytes += size
	switch obj.(type) {
	case *Pair:
		h.stats.Pairs++
	case *String:
		h.stats.Strings++
	}
	h.mu.Unlock()

	h.notify(Event{
		Type:   EventAllocated,
		Ref:    ref,
		Object: obj,
		Size:   size,
	})

	return ref, nil
}

// Get retrieves the object behind r.
func (h *Heap) Get(r Ref) (Object, bool) {
	if r.handle == 0 {
		return nil, false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	idx := r.handle - 1
	if int(idx) >= len(h.entries) {
		return nil, false
	}
	obj := h.entries[idx].obj
	if obj == nil || obj.Tag() != r.tag {
		return nil, false
	}
	return obj, true
}

// Pair returns the pair behind v, if v references one.
func (h *Heap) Pair(v Value) (*Pair, bool) {
	r, ok := v.(Ref)
	if !ok || r.tag != TagPair {
		return nil, false
	}
	obj, ok := h.Get(r)
	if !ok {
		return nil, false
	}
	return obj.(*Pair), true
}

// String returns the string behind v, if v references one.
func (h *Heap) String(v Value) (*String, bool) {
	r, ok := v.(Ref)
	if !ok || r.tag != TagString {
		return nil, false
	}
	obj, ok := h.Get(r)
	if !ok {
		return nil, false
	}
	return obj.(*String), true
}

// Stats returns a snapshot of heap usage.
func (h *Heap) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

// Limit returns the configured byte limit, 0 when unlimited.
func (h *Heap) Limit() int {
	return h.limit
}

// Subscribe adds an observer for heap events.
func (h *Heap) Subscribe(o Observer) {
	h.obsMu.Lock()
	defer h.obsMu.Unlock()
	h.observers = append(h.observers, o)
}

// Unsubscribe removes an observer.
func (h *Heap) Unsubscribe(o Observer) {
	h.obsMu.Lock()
	defer h.obsMu.Unlock()
	for i, obs := range h.observers {
		if obs == o {
			h.observers = append(h.observers[:i], h.observers[i+1:]...)
			return
		}
	}
}

// Closed reports whether Close has been called.
func (h *Heap) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// Close releases the arena. Further allocations fail.
func (h *Heap) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.entries = nil
	h.mu.Unlock()

	h.notify(Event{Type: EventClosed})
	return nil
}

func (h *Heap) notify(e Event) {
	h.obsMu.RLock()
	defer h.obsMu.RUnlock()
	for _, o := range h.observers {
		o.OnHeapEvent(e)
	}
}
