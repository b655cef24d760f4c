// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// terminalFd returns the descriptor of f when it is a terminal, or -1.
func terminalFd(f *os.File) int {
	if f == nil {
		return -1
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return -1
	}

	return fd
}

// withoutTTOU runs fn with SIGTTOU ignored, so the interpreter can take the
// terminal back while sitting in a background process group. The default
// disposition is restored afterwards because children inherit ignored signals.
func withoutTTOU(fn func() error) error {
	signal.Ignore(unix.SIGTTOU)
	defer signal.Reset(unix.SIGTTOU)

	return fn()
}

func (e *Engine) giveTerminal(pgid int) error {
	return withoutTTOU(func() error {
		return unix.IoctlSetPointerInt(e.tty, unix.TIOCSPGRP, pgid)
	})
}

func (e *Engine) takeTerminal() error {
	return e.giveTerminal(e.pgrp)
}
