// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"strconv"
)

const exitUsage = 2

// RegisterExit registers exit.
func RegisterExit(r Registry) {
	r.Register(Builtin{Name: "exit", Desc: "Exit the shell", Run: Exit})
}

// Exit asks the interpreter to release everything and terminate.
// The optional argument is the exit code.
func Exit(_ context.Context, h Host, args []string) Status {
	if len(args) < 2 {
		h.RequestExit(0)
		return OK
	}

	code, err := strconv.Atoi(args[1])
	if err != nil {
		h.Reporter().Errorf("%s: numeric argument required.", args[0])
		h.RequestExit(exitUsage)

		return Error
	}

	h.RequestExit(code)

	return OK
}
