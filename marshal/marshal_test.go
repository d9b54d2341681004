package marshal

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/boot-runtime/errors"
	"github.com/wippyai/boot-runtime/heap"
	"github.com/wippyai/boot-runtime/pcb"
)

func newPCB(t *testing.T, limit int) *pcb.PCB {
	t.Helper()
	p, err := pcb.New(pcb.Config{HeapLimit: limit})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestList_PreservesOrder(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{"empty", nil},
		{"single", []string{"x"}},
		{"three", []string{"x", "y", "z"}},
		{"empty strings", []string{"", "a", ""}},
		{"sentinel passthrough", []string{"--", "-b", "v"}},
		{"utf8", []string{"λ", "naïve"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPCB(t, 0)

			list, err := List(p, tt.items)
			if err != nil {
				t.Fatalf("List: %v", err)
			}

			n, err := p.Heap().Length(list)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(tt.items) {
				t.Errorf("length = %d, want %d", n, len(tt.items))
			}

			got, err := p.Heap().Strings(list)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.items, got, cmpEmpty); diff != "" {
				t.Errorf("list mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

var cmpEmpty = cmp.Transformer("nilToEmpty", func(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
})

func TestList_EmptyIsNull(t *testing.T) {
	p := newPCB(t, 0)
	list, err := List(p, []string{})
	if err != nil {
		t.Fatal(err)
	}
	if !heap.IsNull(list) {
		t.Errorf("List([]) = %v, want empty list", list)
	}
	if st := p.Heap().Stats(); st.Objects != 0 {
		t.Errorf("objects = %d, want 0", st.Objects)
	}
}

func TestList_Accounting(t *testing.T) {
	p := newPCB(t, 0)
	items := []string{"x", "yy", "zzz"}
	if _, err := List(p, items); err != nil {
		t.Fatal(err)
	}

	want := 0
	for _, s := range items {
		want += heap.StringSize(len(s)) + heap.PairSize
	}
	st := p.Heap().Stats()
	if st.Bytes != want {
		t.Errorf("bytes = %d, want %d", st.Bytes, want)
	}
	if st.Pairs != 3 || st.Strings != 3 {
		t.Errorf("pairs=%d strings=%d, want 3/3", st.Pairs, st.Strings)
	}
}

func TestList_AllocationFailure(t *testing.T) {
	p := newPCB(t, heap.StringSize(1)+heap.PairSize)

	_, err := List(p, []string{"a", "b"})
	if !errors.Matches(err, errors.PhaseMarshal, errors.KindAllocation) {
		t.Fatalf("expected marshal allocation error, got %v", err)
	}
	e, _ := errors.As(err)
	// the last item is allocated first, so the first item is the one that fails
	if diff := cmp.Diff([]string{"argv", "0"}, e.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if !errors.Matches(e.Cause, errors.PhaseHeap, errors.KindAllocation) {
		t.Errorf("cause = %v, want heap allocation error", e.Cause)
	}
}

func TestArgs(t *testing.T) {
	p := newPCB(t, 0)
	if err := Args(p, []string{"x", "y", "z"}); err != nil {
		t.Fatal(err)
	}

	got, err := p.Args()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestArgs_Destroyed(t *testing.T) {
	p, err := pcb.New(pcb.Config{})
	if err != nil {
		t.Fatal(err)
	}
	p.Close()

	if err := Args(p, []string{"x"}); !errors.Matches(err, errors.PhaseLifecycle, errors.KindClosed) {
		t.Fatalf("expected closed error, got %v", err)
	}
}
