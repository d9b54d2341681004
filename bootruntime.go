package bootruntime

import (
	"context"

	"github.com/wippyai/boot-runtime/heap"
)

// Allocator allocates objects in the managed heap
type Allocator interface {
	AllocString(s string) (heap.Ref, error)
	AllocPair(car, cdr heap.Value) (heap.Ref, error)
}

// Control is the view of the process control structure a loader needs.
type Control interface {
	Allocator
	Heap() *heap.Heap
	ArgList() heap.Value
}

// Loader deserializes a boot image and runs it to completion.
// LoadAndRun is synchronous; the control structure stays valid until it returns.
type Loader interface {
	LoadAndRun(ctx context.Context, c Control, path string) error
}

// ExitCoder is implemented by errors that carry a process exit status.
type ExitCoder interface {
	ExitCode() int
}
