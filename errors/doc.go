// Package errors provides structured error types for the boot runtime.
//
// Errors are categorized by Phase (which bootstrap step failed) and Kind
// (error category). The Error type carries the subject being worked on
// (an option name, an invocation name, an environment variable), an optional
// argument path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindNotFound).
//		Subject("prog").
//		Detail("unable to locate %s", "prog").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingValue("-b")
//	err := errors.AllocationFailed(errors.PhaseHeap, 64, 4096)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
