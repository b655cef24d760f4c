// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/tinsh/internal/symtable"
	"github.com/pborman/getopt/v2"
)

const assign = "="

// RegisterVars registers set, unset and lsvars.
func RegisterVars(r Registry) {
	r.Register(Builtin{Name: "set", Desc: "Set a variable binding", Run: Set})
	r.Register(Builtin{Name: "unset", Desc: "Remove variable bindings", Run: Unset})
	r.Register(Builtin{Name: "lsvars", Desc: "List variables", Run: LsVars})
}

// Set binds variables: set [-l|-g|-e] name... [= value...]
//
// -l writes to the current scope, -g to the global scope and -e to the
// environment. Every name gets the value, whose words are joined with single
// spaces. Without "=" the value is empty, and an empty value removes the
// binding.
func Set(_ context.Context, h Host, args []string) Status {
	opts := getopt.New()
	opts.SetProgram(args[0])
	local := opts.Bool('l', "bind in the current scope")
	global := opts.Bool('g', "bind in the global scope")
	env := opts.Bool('e', "bind in the environment")

	if err := opts.Getopt(args, nil); err != nil {
		h.Reporter().Error(args[0], err)
		return Error
	}

	scope := symtable.ScopeDefault

	chosen := 0

	for _, o := range []struct {
		set   bool
		scope symtable.Scope
	}{{*local, symtable.ScopeLocal}, {*global, symtable.ScopeGlobal}, {*env, symtable.ScopeEnvironment}} {
		if o.set {
			scope = o.scope
			chosen++
		}
	}

	if chosen > 1 {
		h.Reporter().Errorf("%s: multiple scopes specified", args[0])
		return Error
	}

	names, value := splitAssignment(opts.Args())
	if len(names) == 0 {
		h.Reporter().Errorf("%s: malformed syntax (expected 'name... = value')", args[0])
		return Error
	}

	status := OK

	for _, name := range names {
		if err := h.Symbols().Set(name, value, scope); err != nil {
			h.Reporter().Error(args[0], err)
			status = Error
		}
	}

	return status
}

// splitAssignment splits "names = value words" at the first "=".
func splitAssignment(words []string) ([]string, string) {
	for i, w := range words {
		if w == assign {
			return words[:i], strings.Join(words[i+1:], " ")
		}
	}

	return words, ""
}

// Unset removes each named variable.
func Unset(_ context.Context, h Host, args []string) Status {
	if len(args) < 2 {
		h.Reporter().Errorf("%s: insufficient arguments.", args[0])
		return Error
	}

	status := OK

	for _, name := range args[1:] {
		if !h.Symbols().Unset(name) {
			h.Reporter().Errorf("%s: %s: not set", args[0], name)
			status = Error
		}
	}

	return status
}

// LsVars prints every visible variable.
func LsVars(_ context.Context, h Host, _ []string) Status {
	for _, b := range h.Symbols().Vars() {
		fmt.Fprintf(h.Stdout(), "%s = %s\n", b.Name, b.Value) //nolint:errcheck
	}

	return OK
}
