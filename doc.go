// Package bootruntime is the bootstrap entry point of a managed-language
// runtime.
//
// A run resolves the boot image to execute, creates the process control
// structure with its managed heap, marshals the remaining command-line
// arguments into a heap list, and hands everything to a boot-image loader.
// When the loader returns, the control structure is destroyed and the
// process exits.
//
// # Architecture Overview
//
//	bootruntime/         Root package with Allocator, Control and Loader interfaces
//	├── boot/            Bootstrap sequence: extract, resolve, check, create, marshal, load
//	├── option/          Single named-flag extraction from the native argument list
//	├── resolve/         Boot image resolution (explicit, search path, invocation name)
//	├── pcb/             Process control structure lifecycle and GC bookkeeping
//	├── heap/            Tagged object arena: fixnums, pairs, strings
//	├── marshal/         Native arguments to heap lists
//	├── compat/          Arithmetic limb width against machine word width
//	├── loader/          WebAssembly boot images run through wazero and WASI
//	├── config/          TOML configuration with environment overrides
//	├── errors/          Structured error types
//	└── cmd/boot/        Command-line entry point
//
// # Quick Start
//
//	code := boot.ExitCode(boot.Run(ctx, boot.Options{
//	    Args:     os.Args,
//	    Resolver: resolve.NewOS(),
//	    Loader:   loader.New(loader.Config{}),
//	}))
//	os.Exit(code)
//
// # Boot Image Resolution
//
// The image is chosen by the first strategy that applies:
//
//   - -b <path> names it explicitly; the path is used verbatim.
//   - An invocation name without a '/' is searched for in PATH; the first
//     directory holding an entry of that name wins and ".boot" is appended.
//   - Any other invocation name gets ".boot" appended.
//
// Flag scanning stops at "--", which is passed through to the program.
//
// # Thread Safety
//
// A run is strictly sequential. The heap is safe for concurrent use, but a
// control structure belongs to the run that created it.
package bootruntime
