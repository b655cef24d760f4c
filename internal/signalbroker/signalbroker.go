// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS signals aimed at the interpreter and
// hands them to a relay function, which forwards them to the foreground job.
// By default it listens for SIGINT, SIGQUIT and SIGTSTP, so keyboard
// interrupts stop the running command rather than the interpreter itself.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/tinsh/internal/ctxlog"
)

var jobControlSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGQUIT,
	syscall.SIGTSTP,
}

// New creates a new signal broker channel for the given signals, or the job
// control signals when none are given.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = jobControlSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop stops delivery to ch.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
