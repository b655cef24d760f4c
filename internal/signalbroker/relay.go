// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/tinsh/internal/ctxlog"
)

// RelayFunc receives a signal and reports whether anything received it.
type RelayFunc func(os.Signal) bool

// Relay passes every signal from sigCh to relay until the context is done or
// the channel is closed.
func Relay(ctx context.Context, sigCh <-chan os.Signal, relay RelayFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if relay(sig) {
				ctxlog.Logger(ctx).Debug("relay", "detail", "forwarded signal to foreground job", "signal", sig.String())
				continue
			}

			ctxlog.Logger(ctx).Debug("relay", "detail", "no foreground job, signal ignored", "signal", sig.String())
		}
	}
}
