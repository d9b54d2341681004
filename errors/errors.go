package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which bootstrap step produced the error
type Phase string

const (
	PhaseOption    Phase = "option"    // boot flag extraction
	PhaseResolve   Phase = "resolve"   // boot image discovery
	PhaseCompat    Phase = "compat"    // word-width checks
	PhaseLifecycle Phase = "lifecycle" // control structure create/destroy
	PhaseHeap      Phase = "heap"      // object allocation
	PhaseMarshal   Phase = "marshal"   // argument list construction
	PhaseLoad      Phase = "load"      // boot image load and run
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindMissingValue  Kind = "missing_value"
	KindEnvUnset      Kind = "env_unset"
	KindNotFound      Kind = "not_found"
	KindWidthMismatch Kind = "width_mismatch"
	KindAllocation    Kind = "allocation"
	KindOverflow      Kind = "overflow"
	KindClosed        Kind = "closed"
	KindInvalidData   Kind = "invalid_data"
	KindInvalidInput  Kind = "invalid_input"
	KindTypeMismatch  Kind = "type_mismatch"
	KindInstantiation Kind = "instantiation"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Subject string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Subject != "" {
		b.WriteString(": ")
		b.WriteString(e.Subject)
	}

	if e.Detail != "" {
		if e.Subject != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message returns the user-facing diagnostic line without the phase/kind prefix.
func (e *Error) Message() string {
	msg := e.Detail
	if msg == "" {
		msg = string(e.Kind)
		if e.Subject != "" {
			msg += ": " + e.Subject
		}
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the argument path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Subject sets the name being operated on
func (b *Builder) Subject(s string) *Builder {
	b.err.Subject = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MissingValue creates a usage error for a flag given without its value
func MissingValue(option string) *Error {
	return &Error{
		Phase:   PhaseOption,
		Kind:    KindMissingValue,
		Subject: option,
		Detail:  fmt.Sprintf("option %s not provided", option),
	}
}

// SearchPathUnset creates a resolution error for a missing search-path variable
func SearchPathUnset(variable string) *Error {
	return &Error{
		Phase:   PhaseResolve,
		Kind:    KindEnvUnset,
		Subject: variable,
		Detail:  "unable to locate boot file",
	}
}

// Unlocatable creates a resolution error after every search-path segment failed
func Unlocatable(name string, probed int) *Error {
	return &Error{
		Phase:   PhaseResolve,
		Kind:    KindNotFound,
		Subject: name,
		Detail:  fmt.Sprintf("unable to locate %s", name),
		Value:   probed,
	}
}

// WidthMismatch creates a compatibility error between arithmetic and machine word widths
func WidthMismatch(what string, got, want int) *Error {
	return &Error{
		Phase:   PhaseCompat,
		Kind:    KindWidthMismatch,
		Subject: what,
		Detail:  fmt.Sprintf("%s=%d, machine word expects %d", what, got, want),
		Value:   got,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (limit %d)", size, limit),
		Value:  size,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOverflow,
		Path:    path,
		Subject: target,
		Detail:  fmt.Sprintf("value %v overflows %s", value, target),
		Value:   value,
	}
}

// Closed creates an error for use of a destroyed resource
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindClosed,
		Subject: what,
		Detail:  what + " already destroyed",
	}
}

// TypeMismatch creates an error for a heap value of an unexpected kind
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		Subject: got,
		Detail:  fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Load creates a load error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Matches reports whether err, or any error it wraps, is an *Error with the
// given phase and kind.
func Matches(err error, phase Phase, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Phase == phase && e.Kind == kind
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
