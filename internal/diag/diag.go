// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diag prints user-facing diagnostics to stderr.
//
// When the interpreter's "debug" variable is set, every message is prefixed
// with the number of the input line being evaluated ("Line N: "), and the
// Debug variants are printed too. Otherwise only plain errors are printed.
package diag

import (
	"errors"
	"fmt"
	"io"
	"syscall"
)

// Reporter writes diagnostics for one interpreter.
type Reporter struct {
	w     io.Writer
	debug func() bool
	line  int
}

// New returns a reporter writing to w. debug reports whether debugging output is on.
func New(w io.Writer, debug func() bool) *Reporter {
	if debug == nil {
		debug = func() bool { return false }
	}

	return &Reporter{w: w, debug: debug}
}

// SetLine records the number of the input line being evaluated.
func (r *Reporter) SetLine(n int) {
	r.line = n
}

// Line returns the number of the input line being evaluated.
func (r *Reporter) Line() int {
	return r.line
}

// Debugging reports whether debug output is on.
func (r *Reporter) Debugging() bool {
	return r.debug()
}

func (r *Reporter) prefix() string {
	if r.line > 0 && r.debug() {
		return fmt.Sprintf("Line %d: ", r.line)
	}

	return ""
}

// Errorf prints a diagnostic.
func (r *Reporter) Errorf(format string, args ...any) {
	fmt.Fprintf(r.w, "%s%s\n", r.prefix(), fmt.Sprintf(format, args...)) //nolint:errcheck
}

// Error prints err, followed by its errno and description when it wraps one.
func (r *Reporter) Error(msg string, err error) {
	p := r.prefix()

	if msg != "" {
		fmt.Fprintf(r.w, "%s%s: %v\n", p, msg, err) //nolint:errcheck
	} else {
		fmt.Fprintf(r.w, "%s%v\n", p, err) //nolint:errcheck
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && r.debug() {
		fmt.Fprintf(r.w, "%s%d: %s\n", p, int(errno), errno.Error()) //nolint:errcheck
	}
}

// Debugf prints a diagnostic only when debugging is on.
func (r *Reporter) Debugf(format string, args ...any) {
	if !r.debug() {
		return
	}

	r.Errorf(format, args...)
}
