// Command boot starts the runtime: it resolves the boot image, builds the
// control structure, passes the remaining arguments to the program and runs it.
//
// Usage:
//
//	boot [-b <image>] [args...]
//
// Without -b the image is found next to the invocation name: a bare name is
// searched for in PATH, any other name gets ".boot" appended. Flag scanning
// stops at "--".
package main

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	bootruntime "github.com/wippyai/boot-runtime"
	"github.com/wippyai/boot-runtime/boot"
	"github.com/wippyai/boot-runtime/config"
	"github.com/wippyai/boot-runtime/loader"
	"github.com/wippyai/boot-runtime/pcb"
	"github.com/wippyai/boot-runtime/resolve"
)

func main() {
	os.Exit(run(os.Args, os.LookupEnv, os.Stderr))
}

func run(args []string, lookupEnv func(string) (string, bool), stderr io.Writer) int {
	d := newDiag(stderr)

	cfg, err := config.FromEnv(lookupEnv)
	if err != nil {
		d.fatal(err)
		return boot.FatalExitCode
	}

	log := newLogger(cfg.Log, stderr)
	defer log.Sync()
	installLogger(log)

	resolver, err := resolve.NewOS()
	if err != nil {
		d.fatal(err)
		return boot.FatalExitCode
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = boot.Run(ctx, boot.Options{
		Args:     args,
		Resolver: resolver,
		Loader:   loader.New(loaderConfig(cfg.Loader, stderr)),
		PCB: pcb.Config{
			HeapLimit:        cfg.Heap.LimitBytes,
			TraceAllocations: cfg.Heap.TraceAllocations,
		},
		Compat: cfg.Compat,
		Warn:   d.warn,
		Logger: log,
	})

	var coder bootruntime.ExitCoder
	if err != nil && !stderrors.As(err, &coder) {
		d.fatal(err)
	}
	return boot.ExitCode(err)
}

func loaderConfig(cfg config.LoaderConfig, stderr io.Writer) loader.Config {
	lc := loader.Config{
		MemoryLimitPages: cfg.MemoryLimitPages,
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           stderr,
	}
	for _, m := range cfg.Mounts {
		lc.Mounts = append(lc.Mounts, loader.Mount{
			Host:     m.Host,
			Guest:    m.Guest,
			ReadOnly: m.ReadOnly,
		})
	}
	if cfg.InheritEnv {
		lc.Env = os.Environ()
	}
	return lc
}

func installLogger(log *zap.Logger) {
	resolve.SetLogger(log.Named("resolve"))
	pcb.SetLogger(log.Named("pcb"))
	loader.SetLogger(log.Named("loader"))
}
