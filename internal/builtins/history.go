// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"

	"github.com/pborman/getopt/v2"
)

// RegisterHistory registers history.
func RegisterHistory(r Registry) {
	r.Register(Builtin{Name: "history", Desc: "List or clear the history", Run: History})
}

// History prints the numbered history. -c clears it.
func History(_ context.Context, h Host, args []string) Status {
	opts := getopt.New()
	opts.SetProgram(args[0])
	clearOpt := opts.Bool('c', "clear the history by deleting all entries")

	if err := opts.Getopt(args, nil); err != nil {
		h.Reporter().Error(args[0], err)
		return Error
	}

	if *clearOpt {
		h.ClearHistory()
		return OK
	}

	for i, line := range h.History() {
		fmt.Fprintf(h.Stdout(), "%5d  %s\n", i+1, line) //nolint:errcheck
	}

	return OK
}
