// Package compat checks that the arbitrary-precision arithmetic library agrees
// with the runtime's machine word width.
//
// Two properties are checked independently: the byte size of one limb
// (big.Word) against the heap word size, and the bit width of a limb against
// the bit width of a heap word. Each mismatch class carries its own severity
// so that deployments can decide which one should stop the boot.
package compat

import (
	"math/big"
	"math/bits"
	"strings"
	"unsafe"

	"github.com/wippyai/boot-runtime/errors"
	"github.com/wippyai/boot-runtime/heap"
)

// Severity decides what a mismatch does.
type Severity string

const (
	SeverityIgnore Severity = "ignore"
	SeverityWarn   Severity = "warn"
	SeverityFatal  Severity = "fatal"
)

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityIgnore, SeverityWarn, SeverityFatal:
		return sev, nil
	default:
		return "", errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Subject(s).
			Detail("unknown severity %q (expected ignore, warn or fatal)", s).
			Build()
	}
}

// Policy assigns a severity to each mismatch class.
type Policy struct {
	LimbSize Severity
	LimbBits Severity
}

// DefaultPolicy reports both mismatch classes as warnings.
func DefaultPolicy() Policy {
	return Policy{LimbSize: SeverityWarn, LimbBits: SeverityWarn}
}

// Widths describes the arithmetic library and the runtime word.
type Widths struct {
	LimbBytes int
	LimbBits  int
	WordBytes int
}

// Native returns the widths of math/big and the heap on this platform.
func Native() Widths {
	return Widths{
		LimbBytes: int(unsafe.Sizeof(big.Word(0))),
		LimbBits:  bits.UintSize,
		WordBytes: heap.WordSize,
	}
}

// Report is the outcome of a check.
type Report struct {
	// Warnings are mismatches that do not stop the boot.
	Warnings []*errors.Error
}

// Check compares w against the policy. The returned error is the first
// mismatch whose severity is fatal; warnings are collected in the report.
func Check(w Widths, p Policy) (Report, error) {
	var rep Report

	findings := []struct {
		err *errors.Error
		sev Severity
	}{
		{limbSize(w), p.LimbSize},
		{limbBits(w), p.LimbBits},
	}

	for _, f := range findings {
		if f.err == nil {
			continue
		}
		switch f.sev {
		case SeverityFatal:
			return rep, f.err
		case SeverityIgnore:
		default:
			rep.Warnings = append(rep.Warnings, f.err)
		}
	}
	return rep, nil
}

func limbSize(w Widths) *errors.Error {
	if w.LimbBytes == w.WordBytes {
		return nil
	}
	return errors.WidthMismatch("limb_size", w.LimbBytes, w.WordBytes)
}

func limbBits(w Widths) *errors.Error {
	if w.LimbBits == 8*w.WordBytes {
		return nil
	}
	return errors.WidthMismatch("bits_per_limb", w.LimbBits, 8*w.WordBytes)
}
