// Package loader runs WebAssembly boot images.
//
// A boot image is a core WebAssembly module exporting "_start" and "memory".
// It is executed through WASI preview1: the control structure's argument
// list becomes argv, with the image path as argv[0]. A nonzero proc_exit
// status is reported as an *ExitError.
package loader

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	bootruntime "github.com/wippyai/boot-runtime"
	"github.com/wippyai/boot-runtime/errors"
)

// Mount exposes a host directory to the program.
type Mount struct {
	Host     string
	Guest    string
	ReadOnly bool
}

// Config holds loader configuration.
type Config struct {
	// FS reads boot images. Defaults to the host filesystem.
	FS billy.Basic

	// MemoryLimitPages caps linear memory in 64 KiB pages. 0 means the
	// engine default.
	MemoryLimitPages uint32

	Mounts []Mount

	// Env is passed to the program as KEY=VALUE pairs.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ExitError reports a nonzero exit status of the program.
type ExitError struct {
	Path string
	Code uint32
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("boot image %s exited with code %d", e.Path, e.Code)
}

// ExitCode returns the program's exit status.
func (e *ExitError) ExitCode() int {
	return int(e.Code)
}

// WasmLoader loads and runs WebAssembly boot images.
type WasmLoader struct {
	cfg Config
}

var _ bootruntime.Loader = (*WasmLoader)(nil)

// New creates a loader. Unset stdio streams default to the process streams.
func New(cfg Config) *WasmLoader {
	if cfg.FS == nil {
		cfg.FS = osfs.New("/")
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &WasmLoader{cfg: cfg}
}

// LoadAndRun reads the boot image at path and runs it to completion.
func (l *WasmLoader) LoadAndRun(ctx context.Context, c bootruntime.Control, path string) error {
	args, err := c.Heap().Strings(c.ArgList())
	if err != nil {
		return errors.Load("read argument list", err)
	}

	bin, err := l.read(path)
	if err != nil {
		return errors.Load("read boot image "+path, err)
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if l.cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(l.cfg.MemoryLimitPages)
	}

	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	defer r.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		return errors.Load("instantiate WASI", err)
	}

	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		return errors.Load("compile boot image "+path, err)
	}

	Logger().Debug("boot image compiled",
		zap.String("path", path),
		zap.Int("size", len(bin)),
		zap.Int("args", len(args)),
	)

	mod, err := r.InstantiateModule(ctx, compiled, l.moduleConfig(path, args))
	if mod != nil {
		defer mod.Close(ctx)
	}
	if err != nil {
		return l.exitError(ctx, path, err)
	}

	Logger().Debug("boot image finished", zap.String("path", path))
	return nil
}

func (l *WasmLoader) read(path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = abs
	}
	return util.ReadFile(l.cfg.FS, path)
}

func (l *WasmLoader) moduleConfig(path string, args []string) wazero.ModuleConfig {
	modCfg := wazero.NewModuleConfig().
		WithName(filepath.Base(path)).
		WithArgs(append([]string{path}, args...)...).
		WithStdin(l.cfg.Stdin).
		WithStdout(l.cfg.Stdout).
		WithStderr(l.cfg.Stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)

	for _, kv := range l.cfg.Env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		modCfg = modCfg.WithEnv(k, v)
	}

	if len(l.cfg.Mounts) > 0 {
		fsCfg := wazero.NewFSConfig()
		for _, m := range l.cfg.Mounts {
			guest := m.Guest
			if guest == "" {
				guest = "/"
			}
			if m.ReadOnly {
				fsCfg = fsCfg.WithReadOnlyDirMount(m.Host, guest)
			} else {
				fsCfg = fsCfg.WithDirMount(m.Host, guest)
			}
		}
		modCfg = modCfg.WithFSConfig(fsCfg)
	}

	return modCfg
}

func (l *WasmLoader) exitError(ctx context.Context, path string, err error) error {
	var exit *sys.ExitError
	if !stderrors.As(err, &exit) {
		return errors.Load("run boot image "+path, err)
	}

	switch exit.ExitCode() {
	case 0:
		return nil
	case sys.ExitCodeContextCanceled, sys.ExitCodeDeadlineExceeded:
		cause := ctx.Err()
		if cause == nil {
			cause = err
		}
		return errors.Load("boot image "+path+" interrupted", cause)
	}

	Logger().Debug("boot image exited",
		zap.String("path", path),
		zap.Uint32("code", exit.ExitCode()),
	)
	return &ExitError{Path: path, Code: exit.ExitCode()}
}
