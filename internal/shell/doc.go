// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell is the interpreter loop.
//
// A Shell owns the symbol table, the job registry and the builtin table.
// Each line is reaped for finished background jobs, expanded, split into
// stages at '|', and every stage is tokenized and handed to the execution
// engine from left to right. The engine reaches back into the shell through
// the builtins.Host interface.
//
// Lines come from a LineReader: TerminalReader edits lines on a terminal,
// ScanReader reads scripts, -c strings and piped input.
package shell
