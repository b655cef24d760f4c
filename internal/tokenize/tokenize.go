// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tokenize splits an expanded stage string into an argument vector.
package tokenize

import (
	"errors"
	"strings"

	"github.com/anmitsu/go-shlex"
)

const background = "&"

// ErrUnbalancedQuote is returned when quoting cannot be resolved.
// The argument vector is then produced by a plain whitespace split.
var ErrUnbalancedQuote = errors.New("unbalanced quote or trailing escape")

// Command is one tokenized stage.
type Command struct {
	Argv       []string // Argv[0] is the command name.
	Background bool     // Set when the stage ended in a standalone '&'.
}

// Name returns the command name, or the empty string for an empty command.
func (c Command) Name() string {
	if len(c.Argv) == 0 {
		return ""
	}

	return c.Argv[0]
}

// Empty reports whether there is nothing to run.
func (c Command) Empty() bool {
	return len(c.Argv) == 0
}

// Fields splits s on whitespace. The result is never nil.
func Fields(s string) []string {
	f := strings.Fields(s)
	if f == nil {
		return []string{}
	}

	return f
}

// Split splits s into words honouring single quotes, double quotes and
// backslash escapes. On a quoting error the plain whitespace split of s is
// returned together with ErrUnbalancedQuote.
func Split(s string) ([]string, error) {
	words, err := shlex.Split(s, true)
	if err != nil {
		return Fields(s), errors.Join(ErrUnbalancedQuote, err)
	}

	if words == nil {
		return []string{}, nil
	}

	return words, nil
}

// Parse tokenizes stage. A trailing standalone '&' is removed from the vector
// and sets Background. The '&' is detected before quote removal so a quoted
// "&" stays an ordinary argument.
func Parse(stage string) (Command, error) {
	stage = strings.TrimSpace(stage)

	var cmd Command

	if stage == background || strings.HasSuffix(stage, " "+background) || strings.HasSuffix(stage, "\t"+background) {
		cmd.Background = true
		stage = strings.TrimSpace(strings.TrimSuffix(stage, background))
	}

	argv, err := Split(stage)
	cmd.Argv = argv

	return cmd, err
}
