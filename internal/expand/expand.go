// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package expand turns a raw command line into pipeline stage strings.
//
// Expansion runs three passes per stage, left to right:
//
//  1. the line is split on '|' and each stage is trimmed,
//  2. the leading word of a stage is replaced by its alias,
//  3. every "(name)" reference is replaced by the variable's value.
//
// Each pass is a pure function from string to string. Expansion never fails:
// a missing alias means no expansion and a missing variable expands to the
// empty string.
package expand

import (
	"os"
	"strings"
)

const (
	pipe       = "|"
	refOpen    = '('
	refClose   = ')'
	escapeChar = '\\'
)

// AliasLookup resolves aliases.
type AliasLookup interface {
	HasAlias(name string) bool
	GetAlias(name string) string
}

// VarLookup resolves variables.
type VarLookup interface {
	Lookup(name string) (string, bool)
}

// VarLookupFunc adapts a function to VarLookup.
type VarLookupFunc func(name string) (string, bool)

// Lookup implements VarLookup.
func (f VarLookupFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// WithEnv returns a VarLookup that consults vars first and the process environment second.
func WithEnv(vars VarLookup) VarLookup {
	return VarLookupFunc(func(name string) (string, bool) {
		if vars != nil {
			if v, ok := vars.Lookup(name); ok {
				return v, true
			}
		}

		return os.LookupEnv(name)
	})
}

// Split splits line on the pipe character. Stages are trimmed and empty stages are dropped.
func Split(line string) []string {
	parts := strings.Split(line, pipe)
	stages := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		stages = append(stages, p)
	}

	return stages
}

// Aliases replaces the leading word of stage with its alias expansion.
// Everything after the leading word is kept verbatim.
func Aliases(stage string, aliases AliasLookup) string {
	if aliases == nil {
		return stage
	}

	word, rest, hasRest := strings.Cut(stage, " ")
	if !aliases.HasAlias(word) {
		return stage
	}

	expansion := aliases.GetAlias(word)
	if !hasRest {
		return expansion
	}

	return expansion + " " + rest
}

// Vars substitutes "(name)" references in stage.
//
// A reference preceded by a backslash is kept literally with the backslash
// removed. Substituted values are never scanned again. An unterminated
// reference stops the scan and the remainder is kept as-is.
func Vars(stage string, vars VarLookup) string {
	var sb strings.Builder

	sb.Grow(len(stage))

	rest := stage

	for {
		open := strings.IndexByte(rest, refOpen)
		if open < 0 {
			break
		}

		length := strings.IndexByte(rest[open:], refClose)
		if length < 0 {
			break
		}

		end := open + length

		if open > 0 && rest[open-1] == escapeChar {
			sb.WriteString(rest[:open-1])
			sb.WriteString(rest[open : end+1])
			rest = rest[end+1:]

			continue
		}

		sb.WriteString(rest[:open])
		sb.WriteString(resolve(vars, rest[open+1:end]))
		rest = rest[end+1:]
	}

	sb.WriteString(rest)

	return sb.String()
}

func resolve(vars VarLookup, name string) string {
	if vars == nil {
		return ""
	}

	v, _ := vars.Lookup(name)

	return v
}

// Line runs all three passes over line and returns the stages in pipeline order.
func Line(line string, aliases AliasLookup, vars VarLookup) []string {
	stages := Split(line)
	for i, stage := range stages {
		stages[i] = Vars(Aliases(stage, aliases), vars)
	}

	return stages
}
