// Package marshal converts native values into managed heap structures.
package marshal

import (
	"strconv"

	bootruntime "github.com/wippyai/boot-runtime"
	"github.com/wippyai/boot-runtime/errors"
	"github.com/wippyai/boot-runtime/heap"
)

// ArgListSetter stores a marshalled argument list.
type ArgListSetter interface {
	bootruntime.Allocator
	SetArgList(list heap.Value) error
}

// List builds a proper heap list of strings with the same order as items.
// Cells are prepended from the last item to the first.
func List(a bootruntime.Allocator, items []string) (heap.Value, error) {
	var acc heap.Value = heap.Empty
	for i := len(items) - 1; i >= 0; i-- {
		s, err := a.AllocString(items[i])
		if err != nil {
			return nil, wrap(err, i, "string")
		}
		cell, err := a.AllocPair(s, acc)
		if err != nil {
			return nil, wrap(err, i, "pair")
		}
		acc = cell
	}
	return acc, nil
}

// Args marshals the program arguments and records the list on the control
// structure. args must not include the invocation name.
func Args(c ArgListSetter, args []string) error {
	list, err := List(c, args)
	if err != nil {
		return err
	}
	return c.SetArgList(list)
}

func wrap(err error, index int, what string) error {
	if e, ok := errors.As(err); ok && e.Kind == errors.KindClosed {
		return err
	}
	return errors.New(errors.PhaseMarshal, errors.KindAllocation).
		Path("argv", strconv.Itoa(index)).
		Subject(what).
		Cause(err).
		Detail("marshal argument %d", index).
		Build()
}
