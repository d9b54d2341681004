// Package option extracts a single named flag and its value from a native
// argument list.
//
// Only one primitive is offered: find the first occurrence of a flag, take the
// value that follows it, and delete both from the list. Everything else is left
// untouched for the program being booted.
package option

import (
	"slices"

	"github.com/wippyai/boot-runtime/errors"
)

// EndOfOptions stops the scan. It is not removed from the list.
const EndOfOptions = "--"

// Args is a native argument list. Index 0 is the invocation name.
type Args []string

// Extract looks for the first occurrence of name after the invocation name.
//
// On a match with a following element the value is returned and both the flag
// and its value are removed, so the list shrinks by two with the remaining
// elements kept in order. A match in last position is a usage error and the
// list is left unmodified. Reaching EndOfOptions, or not finding the flag at
// all, reports found == false.
func (a *Args) Extract(name string) (value string, found bool, err error) {
	args := *a
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case name:
			if i+1 >= len(args) {
				return "", false, errors.MissingValue(name)
			}
			value = args[i+1]
			*a = slices.Delete(args, i, i+2)
			return value, true, nil
		case EndOfOptions:
			return "", false, nil
		}
	}
	return "", false, nil
}

// Invocation returns the invocation name, or "" for an empty list.
func (a Args) Invocation() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// Rest returns the arguments after the invocation name.
func (a Args) Rest() []string {
	if len(a) <= 1 {
		return nil
	}
	return a[1:]
}
