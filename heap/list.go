package heap

import (
	"strconv"

	"github.com/wippyai/boot-runtime/errors"
)

// Strings walks a proper list of heap strings and returns their contents in
// list order.
func (h *Heap) Strings(list Value) ([]string, error) {
	var out []string
	for i := 0; ; i++ {
		if IsNull(list) {
			return out, nil
		}
		p, ok := h.Pair(list)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseHeap, []string{"cdr", strconv.Itoa(i)}, tagName(list), "pair")
		}
		s, ok := h.String(p.Car)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseHeap, []string{"car", strconv.Itoa(i)}, tagName(p.Car), "string")
		}
		out = append(out, s.String())
		list = p.Cdr
	}
}

// Length returns the number of pairs in a proper list.
func (h *Heap) Length(list Value) (int, error) {
	n := 0
	for !IsNull(list) {
		p, ok := h.Pair(list)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseHeap, []string{"cdr", strconv.Itoa(n)}, tagName(list), "pair")
		}
		n++
		list = p.Cdr
	}
	return n, nil
}

func tagName(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Tag().String()
}
