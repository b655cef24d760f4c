// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package builtins implements the commands that run inside the interpreter
// process instead of as external executables.
//
// Dispatch returns NotBuiltin, OK or Error. Builtins reach the interpreter
// only through the Host interface.
package builtins

import (
	"context"
	"io"
	"maps"
	"slices"

	"github.com/matt-FFFFFF/tinsh/internal/diag"
	"github.com/matt-FFFFFF/tinsh/internal/job"
	"github.com/matt-FFFFFF/tinsh/internal/symtable"
)

// Status is the result of dispatching a command line to the builtins.
type Status int

const (
	// NotBuiltin means the name is not a builtin.
	NotBuiltin Status = iota
	// OK means the builtin ran successfully.
	OK
	// Error means the builtin ran and failed. The failure has been reported.
	Error
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Error:
		return "error"
	default:
		return "not builtin"
	}
}

// Host is the part of the interpreter that builtins may use.
type Host interface {
	Symbols() *symtable.Table
	Jobs() *job.Registry
	Stdout() io.Writer
	Reporter() *diag.Reporter
	History() []string
	ClearHistory()
	// RequestExit asks the interpreter to shut down with code once the builtin returns.
	RequestExit(code int)
	// Reap collects status changes of background jobs.
	Reap(ctx context.Context)
	// Resume continues a stopped job, waiting for it when foreground is set.
	Resume(ctx context.Context, id int, foreground bool) error
}

// Func runs a builtin. args[0] is the builtin's name.
type Func func(ctx context.Context, h Host, args []string) Status

// Builtin describes one builtin command.
type Builtin struct {
	Name string
	Desc string
	Run  Func
}

// RegisterFunc adds builtins to a registry.
type RegisterFunc func(Registry)

// Registry maps builtin names to builtins.
type Registry map[string]Builtin

// New creates a registry and applies every register function to it.
func New(registerFuncs ...RegisterFunc) Registry {
	r := make(Registry)
	for _, f := range registerFuncs {
		f(r)
	}

	return r
}

// Default returns a registry with every builtin.
func Default() Registry {
	return New(
		RegisterExit,
		RegisterDir,
		RegisterVars,
		RegisterAlias,
		RegisterJobs,
		RegisterHistory,
		RegisterHelp,
	)
}

// Register adds b, replacing any builtin with the same name.
func (r Registry) Register(b Builtin) {
	r[b.Name] = b
}

// Has reports whether name is a builtin.
func (r Registry) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Names returns the builtin names in sorted order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// Dispatch runs argv[0] if it is a builtin.
func (r Registry) Dispatch(ctx context.Context, h Host, argv []string) Status {
	if len(argv) == 0 {
		return NotBuiltin
	}

	b, ok := r[argv[0]]
	if !ok {
		return NotBuiltin
	}

	return b.Run(ctx, h, argv)
}

// Teardown empties the registry.
func (r Registry) Teardown() {
	clear(r)
}
