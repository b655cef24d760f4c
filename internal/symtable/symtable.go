// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package symtable holds the interpreter's variables and aliases.
//
// Variables live in a chain of scopes. The root scope is global, each pushed
// scope keeps a non-owning reference to the scope it was pushed on top of.
// Lookups walk from the innermost scope outwards. Aliases are a single flat
// table. All stored values are private copies owned by the table.
package symtable

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

var (
	// ErrTornDown is returned when the table is used after Teardown.
	ErrTornDown = errors.New("symbol table has been torn down")
	// ErrRootScope is returned when popping the global scope.
	ErrRootScope = errors.New("cannot pop the global scope")
	// ErrInvalidName is returned for names that could never be referenced from a command line.
	ErrInvalidName = errors.New("invalid name")
)

// Scope selects which scope a Set call writes to.
type Scope int

const (
	// ScopeDefault writes to the innermost scope that already binds the name,
	// or to the current scope when no scope does.
	ScopeDefault Scope = iota
	// ScopeLocal always writes to the current scope.
	ScopeLocal
	// ScopeGlobal always writes to the root scope.
	ScopeGlobal
	// ScopeEnvironment writes to the process environment.
	ScopeEnvironment
)

// Binding is a single name/value pair.
type Binding struct {
	Name  string
	Value string
}

type scope struct {
	vars   map[string]string
	parent *scope
}

// Table is the symbol and alias table.
type Table struct {
	current *scope
	aliases map[string]string
	depth   int
	torn    bool
}

// New creates a table with an empty global scope.
func New() *Table {
	return &Table{
		current: &scope{vars: make(map[string]string)},
		aliases: make(map[string]string),
	}
}

// ValidName reports whether name can be used as a variable or alias name.
func ValidName(name string) bool {
	if name == "" {
		return false
	}

	return !strings.ContainsAny(name, " \t\n()|&=\\")
}

// Push opens a new scope on top of the current one.
func (t *Table) Push() {
	if t.torn {
		return
	}

	t.current = &scope{vars: make(map[string]string), parent: t.current}
	t.depth++
}

// Pop discards the current scope and its bindings.
func (t *Table) Pop() error {
	if t.torn {
		return ErrTornDown
	}

	if t.current.parent == nil {
		return ErrRootScope
	}

	old := t.current
	t.current = old.parent
	clear(old.vars)
	old.parent = nil
	t.depth--

	return nil
}

// Depth returns the number of scopes above the global scope.
func (t *Table) Depth() int {
	return t.depth
}

// Lookup returns the value bound to name in the innermost scope binding it.
// The process environment is not consulted.
func (t *Table) Lookup(name string) (string, bool) {
	if t.torn {
		return "", false
	}

	for s := t.current; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}

	return "", false
}

// Set binds name to value. An empty value removes the binding instead.
func (t *Table) Set(name, value string, sc Scope) error {
	if t.torn {
		return ErrTornDown
	}

	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if sc == ScopeEnvironment {
		if value == "" {
			return os.Unsetenv(name)
		}

		return os.Setenv(name, value)
	}

	target := t.target(name, sc)
	if value == "" {
		delete(target.vars, name)
		return nil
	}

	target.vars[name] = strings.Clone(value)

	return nil
}

// Unset removes name from the innermost scope that binds it.
// It reports whether a binding was removed.
func (t *Table) Unset(name string) bool {
	if t.torn {
		return false
	}

	for s := t.current; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			delete(s.vars, name)
			return true
		}
	}

	return false
}

func (t *Table) target(name string, sc Scope) *scope {
	switch sc {
	case ScopeGlobal:
		s := t.current
		for s.parent != nil {
			s = s.parent
		}

		return s
	case ScopeLocal:
		return t.current
	}

	for s := t.current; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			return s
		}
	}

	return t.current
}

// Vars returns every visible variable sorted by name. Inner scopes shadow outer ones.
func (t *Table) Vars() []Binding {
	if t.torn {
		return nil
	}

	seen := make(map[string]struct{})

	var out []Binding

	for s := t.current; s != nil; s = s.parent {
		for k, v := range s.vars {
			if _, ok := seen[k]; ok {
				continue
			}

			seen[k] = struct{}{}
			out = append(out, Binding{Name: k, Value: v})
		}
	}

	slices.SortFunc(out, func(a, b Binding) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out
}

// HasAlias reports whether name is a registered alias.
func (t *Table) HasAlias(name string) bool {
	if t.torn {
		return false
	}

	_, ok := t.aliases[name]

	return ok
}

// GetAlias returns the expansion text for name, or the empty string.
func (t *Table) GetAlias(name string) string {
	if t.torn {
		return ""
	}

	return t.aliases[name]
}

// SetAlias registers name as an alias for text.
func (t *Table) SetAlias(name, text string) error {
	if t.torn {
		return ErrTornDown
	}

	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	t.aliases[name] = strings.Clone(text)

	return nil
}

// Unalias removes an alias and reports whether it existed.
func (t *Table) Unalias(name string) bool {
	if t.torn {
		return false
	}

	_, ok := t.aliases[name]
	delete(t.aliases, name)

	return ok
}

// Aliases returns every alias sorted by name.
func (t *Table) Aliases() []Binding {
	if t.torn {
		return nil
	}

	out := make([]Binding, 0, len(t.aliases))
	for k, v := range t.aliases {
		out = append(out, Binding{Name: k, Value: v})
	}

	slices.SortFunc(out, func(a, b Binding) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out
}

// Teardown releases every scope from the innermost to the root, then the alias table.
// It returns the number of scopes released. Calling it again is a no-op returning 0.
func (t *Table) Teardown() int {
	if t.torn {
		return 0
	}

	n := 0

	for s := t.current; s != nil; {
		next := s.parent
		clear(s.vars)
		s.vars = nil
		s.parent = nil
		s = next
		n++
	}

	clear(t.aliases)
	t.aliases = nil
	t.current = nil
	t.depth = 0
	t.torn = true

	return n
}

// TornDown reports whether Teardown has run.
func (t *Table) TornDown() bool {
	return t.torn
}
