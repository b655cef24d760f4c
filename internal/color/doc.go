// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape codes for the job summaries and
// log output. Colour is off when NO_COLOR is set, on when FORCE_COLOR is set,
// and otherwise follows whether stdout is a terminal (golang.org/x/term).
// The interpreter can override the detected value from its configuration.
package color
