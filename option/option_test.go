package option

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/boot-runtime/errors"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		args      Args
		wantValue string
		wantFound bool
		wantArgs  Args
	}{
		{
			name:      "flag first",
			args:      Args{"prog", "-b", "x.boot", "a", "b"},
			wantValue: "x.boot",
			wantFound: true,
			wantArgs:  Args{"prog", "a", "b"},
		},
		{
			name:      "flag in the middle keeps order",
			args:      Args{"prog", "a", "-b", "x.boot", "b", "c"},
			wantValue: "x.boot",
			wantFound: true,
			wantArgs:  Args{"prog", "a", "b", "c"},
		},
		{
			name:      "flag at the end with value",
			args:      Args{"prog", "a", "-b", "x.boot"},
			wantValue: "x.boot",
			wantFound: true,
			wantArgs:  Args{"prog", "a"},
		},
		{
			name:      "only first occurrence is taken",
			args:      Args{"prog", "-b", "one", "-b", "two"},
			wantValue: "one",
			wantFound: true,
			wantArgs:  Args{"prog", "-b", "two"},
		},
		{
			name:      "empty value is still a value",
			args:      Args{"prog", "-b", ""},
			wantValue: "",
			wantFound: true,
			wantArgs:  Args{"prog"},
		},
		{
			name:     "absent",
			args:     Args{"prog", "a", "b"},
			wantArgs: Args{"prog", "a", "b"},
		},
		{
			name:     "end of options hides the flag",
			args:     Args{"prog", "a", "--", "-b", "x.boot"},
			wantArgs: Args{"prog", "a", "--", "-b", "x.boot"},
		},
		{
			name:     "invocation name is never matched",
			args:     Args{"-b", "x"},
			wantArgs: Args{"-b", "x"},
		},
		{
			name:     "empty list",
			args:     Args{},
			wantArgs: Args{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			before := len(args)

			value, found, err := args.Extract("-b")
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if value != tt.wantValue {
				t.Fatalf("value = %q, want %q", value, tt.wantValue)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Fatalf("args mismatch (-want +got):\n%s", diff)
			}
			if found && len(args) != before-2 {
				t.Fatalf("len = %d, want %d", len(args), before-2)
			}
		})
	}
}

func TestExtract_MissingValue(t *testing.T) {
	args := Args{"prog", "a", "-b"}
	snapshot := append(Args(nil), args...)

	_, found, err := args.Extract("-b")
	if err == nil {
		t.Fatal("expected usage error")
	}
	if found {
		t.Fatal("found must be false on error")
	}
	if !errors.Matches(err, errors.PhaseOption, errors.KindMissingValue) {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(snapshot, args); diff != "" {
		t.Fatalf("args mutated on error (-want +got):\n%s", diff)
	}
}

func TestArgs_InvocationAndRest(t *testing.T) {
	args := Args{"./prog", "x", "y"}
	if args.Invocation() != "./prog" {
		t.Errorf("Invocation = %q", args.Invocation())
	}
	if diff := cmp.Diff([]string{"x", "y"}, args.Rest()); diff != "" {
		t.Errorf("Rest mismatch:\n%s", diff)
	}
	if Args(nil).Invocation() != "" || (Args{"p"}).Rest() != nil {
		t.Error("empty lists should yield zero values")
	}
}
