// Package boot sequences a run: flag extraction, boot image resolution, the
// word-width check, control structure creation, argument marshalling and the
// hand-off to the loader.
package boot

import (
	"context"
	stderrors "errors"
	"slices"

	"go.uber.org/zap"

	bootruntime "github.com/wippyai/boot-runtime"
	"github.com/wippyai/boot-runtime/compat"
	"github.com/wippyai/boot-runtime/errors"
	"github.com/wippyai/boot-runtime/marshal"
	"github.com/wippyai/boot-runtime/option"
	"github.com/wippyai/boot-runtime/pcb"
	"github.com/wippyai/boot-runtime/resolve"
)

// BootFlag names the boot image explicitly.
const BootFlag = "-b"

// FatalExitCode is the process status for bootstrap failures.
const FatalExitCode = 255

// Resolver picks the boot image.
type Resolver interface {
	Resolve(req resolve.Request) (resolve.Result, error)
}

// Options configures a run.
type Options struct {
	// Args is the native argument list, invocation name first.
	Args []string

	Resolver Resolver
	Loader   bootruntime.Loader

	PCB    pcb.Config
	Compat compat.Policy

	// Widths overrides the detected arithmetic and word widths.
	Widths *compat.Widths

	// Warn receives non-fatal diagnostics.
	Warn func(error)

	Logger *zap.Logger
}

// Run executes one bootstrap sequence. The control structure is destroyed
// before Run returns, whatever the outcome of the load.
func Run(ctx context.Context, opts Options) (err error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Resolver == nil || opts.Loader == nil {
		return errors.InvalidInput(errors.PhaseLifecycle, "resolver and loader are required")
	}

	args := option.Args(slices.Clone(opts.Args))
	bootFile, found, err := args.Extract(BootFlag)
	if err != nil {
		return err
	}

	res, err := opts.Resolver.Resolve(resolve.Request{
		Invocation:  args.Invocation(),
		BootFile:    bootFile,
		HasBootFile: found,
	})
	if err != nil {
		return err
	}
	log.Debug("boot image resolved",
		zap.String("path", res.Path),
		zap.Stringer("strategy", res.Strategy),
		zap.Strings("probed", res.Probed),
	)

	widths := compat.Native()
	if opts.Widths != nil {
		widths = *opts.Widths
	}
	rep, err := compat.Check(widths, opts.Compat)
	if err != nil {
		return err
	}
	for _, w := range rep.Warnings {
		if opts.Warn != nil {
			opts.Warn(w)
		}
	}

	p, err := pcb.New(opts.PCB)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := marshal.Args(p, args.Rest()); err != nil {
		return err
	}

	return opts.Loader.LoadAndRun(ctx, p, res.Path)
}

// ExitCode maps the result of Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder bootruntime.ExitCoder
	if stderrors.As(err, &coder) {
		return coder.ExitCode()
	}
	return FatalExitCode
}
