// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package engine runs one tokenized stage at a time.
//
// Builtins run in the interpreter's own process. Everything else is started
// with os.StartProcess in a new process group and becomes a job in the host's
// job registry. Foreground jobs are waited for with wait4; background jobs are
// collected later by Reap.
//
// Signals received by the interpreter are forwarded to the foreground job's
// process group with Relay. The foreground process group is the only state
// shared with the signal goroutine, so it is kept in an atomic.
package engine
