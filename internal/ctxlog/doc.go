// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger for operator diagnostics.
// It uses the slog package for structured logging and supports different log levels.
//
// The default is a pretty console handler writing to stderr so that log lines
// never mix with the output of commands run by the interpreter.
package ctxlog
