package resolve

import (
	"os"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/boot-runtime/errors"
)

func env(vars map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func fsWith(t *testing.T, files ...string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for _, name := range files {
		f, err := fs.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		f.Close()
	}
	return fs
}

func TestResolve_Explicit(t *testing.T) {
	r := New(fsWith(t), env(nil))

	res, err := r.Resolve(Request{Invocation: "prog", BootFile: "/nowhere/x.boot", HasBootFile: true})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Path != "/nowhere/x.boot" || res.Strategy != StrategyExplicit {
		t.Fatalf("got %+v", res)
	}
	if len(res.Probed) != 0 {
		t.Fatalf("explicit boot file must not be probed, got %v", res.Probed)
	}
}

func TestResolve_SearchPath(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		path       string
		wantPath   string
		wantProbed []string
	}{
		{
			name:       "first hit wins",
			files:      []string{"/b/prog"},
			path:       "/a:/b:/c",
			wantPath:   "/b/prog.boot",
			wantProbed: []string{"/a/prog", "/b/prog"},
		},
		{
			name:       "earlier segment beats later",
			files:      []string{"/a/prog", "/c/prog"},
			path:       "/a:/b:/c",
			wantPath:   "/a/prog.boot",
			wantProbed: []string{"/a/prog"},
		},
		{
			name:       "suffixed sibling is not what is probed",
			files:      []string{"/a/prog.boot", "/c/prog"},
			path:       "/a:/b:/c",
			wantPath:   "/c/prog.boot",
			wantProbed: []string{"/a/prog", "/b/prog", "/c/prog"},
		},
		{
			name:       "directories count as reachable entries",
			files:      []string{"/b/prog/inner"},
			path:       "/a:/b",
			wantPath:   "/b/prog.boot",
			wantProbed: []string{"/a/prog", "/b/prog"},
		},
		{
			name:       "empty segment builds a root candidate",
			files:      []string{"/prog"},
			path:       "/a::/b",
			wantPath:   "/prog.boot",
			wantProbed: []string{"/a/prog", "/prog"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(fsWith(t, tt.files...), env(map[string]string{SearchPathVar: tt.path}))

			res, err := r.Resolve(Request{Invocation: "prog"})
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", res.Path, tt.wantPath)
			}
			if res.Strategy != StrategySearchPath {
				t.Errorf("Strategy = %v, want %v", res.Strategy, StrategySearchPath)
			}
			if diff := cmp.Diff(tt.wantProbed, res.Probed); diff != "" {
				t.Errorf("probed mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_SearchPathDeterministic(t *testing.T) {
	r := New(fsWith(t, "/b/prog", "/c/prog"), env(map[string]string{SearchPathVar: "/a:/b:/c"}))

	first, err := r.Resolve(Request{Invocation: "prog"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := r.Resolve(Request{Invocation: "prog"})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestResolve_SearchPathErrors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		kind errors.Kind
	}{
		{"unset", nil, errors.KindEnvUnset},
		{"empty", map[string]string{SearchPathVar: ""}, errors.KindNotFound},
		{"exhausted", map[string]string{SearchPathVar: "/a:/b"}, errors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(fsWith(t, "/elsewhere/prog"), env(tt.vars))

			_, err := r.Resolve(Request{Invocation: "prog"})
			if !errors.Matches(err, errors.PhaseResolve, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestResolve_UnlocatableNamesInvocation(t *testing.T) {
	r := New(fsWith(t), env(map[string]string{SearchPathVar: "/a"}))

	_, err := r.Resolve(Request{Invocation: "prog"})
	e, ok := errors.As(err)
	if !ok {
		t.Fatalf("expected structured error, got %v", err)
	}
	if e.Message() != "unable to locate prog" {
		t.Fatalf("Message() = %q", e.Message())
	}
}

func TestResolve_PathQualified(t *testing.T) {
	probes := 0
	r := New(countingFS{Filesystem: fsWith(t), n: &probes}, env(map[string]string{SearchPathVar: "/a"}))

	for _, inv := range []string{"./prog", "/usr/local/bin/prog", "bin/prog"} {
		res, err := r.Resolve(Request{Invocation: inv})
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", inv, err)
		}
		if res.Path != inv+Suffix || res.Strategy != StrategyInvocation {
			t.Errorf("Resolve(%q) = %+v", inv, res)
		}
	}
	if probes != 0 {
		t.Fatalf("path-qualified resolution must not probe, saw %d stats", probes)
	}
}

func TestResolve_EmptyInvocation(t *testing.T) {
	r := New(fsWith(t), env(nil))
	if _, err := r.Resolve(Request{}); !errors.Matches(err, errors.PhaseResolve, errors.KindInvalidInput) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolve_WorkDirAnchorsRelativeSegments(t *testing.T) {
	r := New(fsWith(t, "/home/u/bin/prog"), env(map[string]string{SearchPathVar: "bin"}))
	r.workDir = "/home/u"

	res, err := r.Resolve(Request{Invocation: "prog"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Path != "bin/prog.boot" {
		t.Fatalf("Path = %q, want the segment-relative form", res.Path)
	}
}

func TestStrategy_String(t *testing.T) {
	if StrategySearchPath.String() != "search-path" || Strategy(9).String() != "strategy(9)" {
		t.Error("unexpected Strategy.String output")
	}
}

type countingFS struct {
	billy.Filesystem
	n *int
}

func (c countingFS) Stat(name string) (os.FileInfo, error) {
	*c.n++
	return c.Filesystem.Stat(name)
}
