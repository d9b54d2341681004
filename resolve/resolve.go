// Package resolve decides which boot image file a process runs.
//
// Three strategies are tried in strict priority order:
//
//  1. an explicit boot file given on the command line, used verbatim;
//  2. a bare invocation name (no '/'), looked up through the PATH search
//     path: the first segment where segment/name exists yields
//     segment/name.boot;
//  3. a path-qualified invocation name, which yields name.boot.
//
// Only strategy 2 touches the filesystem, and only to test existence of the
// unsuffixed candidate. The boot image sits next to the executable by naming
// convention and is not checked here.
package resolve

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/wippyai/boot-runtime/errors"
)

const (
	// SearchPathVar names the environment variable holding the search path.
	SearchPathVar = "PATH"

	// Suffix is appended to the executable name to form the boot image name.
	Suffix = ".boot"

	// Separator marks a path-qualified invocation name.
	Separator = "/"

	// ListSeparator splits the search path into segments.
	ListSeparator = ":"
)

// Strategy identifies how a boot image path was obtained.
type Strategy int

const (
	StrategyExplicit Strategy = iota + 1
	StrategySearchPath
	StrategyInvocation
)

func (s Strategy) String() string {
	switch s {
	case StrategyExplicit:
		return "explicit"
	case StrategySearchPath:
		return "search-path"
	case StrategyInvocation:
		return "invocation"
	default:
		return "strategy(" + strconv.Itoa(int(s)) + ")"
	}
}

// Request carries the inputs of a resolution.
type Request struct {
	// Invocation is argv[0].
	Invocation string

	// BootFile is the value of the boot-file flag, meaningful when HasBootFile is set.
	BootFile    string
	HasBootFile bool
}

// Result is a resolved boot image path.
type Result struct {
	Path     string
	Strategy Strategy

	// Probed lists the candidates tested for existence, in order.
	Probed []string
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// Resolver resolves boot image paths against a filesystem and environment.
type Resolver struct {
	fs        billy.Basic
	lookupEnv LookupEnv

	// workDir anchors relative candidates. Empty means the filesystem is
	// addressed with candidates as given.
	workDir string
}

// New creates a resolver over fs and lookupEnv.
func New(fs billy.Basic, lookupEnv LookupEnv) *Resolver {
	return &Resolver{fs: fs, lookupEnv: lookupEnv}
}

// NewOS creates a resolver over the host filesystem and process environment.
// Relative search-path segments are anchored at the current directory.
func NewOS() (*Resolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "determine working directory")
	}
	return &Resolver{
		fs:        osfs.New(string(filepath.Separator)),
		lookupEnv: os.LookupEnv,
		workDir:   wd,
	}, nil
}

// Resolve returns exactly one boot image path or a fatal resolution error.
func (r *Resolver) Resolve(req Request) (Result, error) {
	log := Logger()

	if req.HasBootFile {
		log.Debug("boot file given explicitly", zap.String("path", req.BootFile))
		return Result{Path: req.BootFile, Strategy: StrategyExplicit}, nil
	}

	if req.Invocation == "" {
		return Result{}, errors.InvalidInput(errors.PhaseResolve, "empty invocation name")
	}

	if strings.Contains(req.Invocation, Separator) {
		path := req.Invocation + Suffix
		log.Debug("boot file derived from invocation path", zap.String("path", path))
		return Result{Path: path, Strategy: StrategyInvocation}, nil
	}

	return r.search(req.Invocation)
}

func (r *Resolver) search(name string) (Result, error) {
	log := Logger()

	searchPath, ok := r.lookupEnv(SearchPathVar)
	if !ok {
		return Result{}, errors.SearchPathUnset(SearchPathVar)
	}
	if searchPath == "" {
		return Result{}, errors.Unlocatable(name, 0)
	}

	var probed []string
	for _, segment := range strings.Split(searchPath, ListSeparator) {
		var b strings.Builder
		b.Grow(len(segment) + len(Separator) + len(name) + len(Suffix))
		b.WriteString(segment)
		b.WriteString(Separator)
		b.WriteString(name)
		candidate := b.String()

		probed = append(probed, candidate)
		if !r.exists(candidate) {
			log.Debug("boot candidate missing", zap.String("candidate", candidate))
			continue
		}

		b.WriteString(Suffix)
		path := b.String()
		log.Debug("boot file found on search path",
			zap.String("executable", candidate),
			zap.String("path", path))
		return Result{Path: path, Strategy: StrategySearchPath, Probed: probed}, nil
	}

	return Result{}, errors.Unlocatable(name, len(probed))
}

func (r *Resolver) exists(name string) bool {
	if r.workDir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(r.workDir, name)
	}
	_, err := r.fs.Stat(name)
	return err == nil
}
