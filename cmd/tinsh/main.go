// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the tinsh command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/tinsh"
	"github.com/matt-FFFFFF/tinsh/cmd/tinsh/config"
	"github.com/matt-FFFFFF/tinsh/cmd/tinsh/run"
	"github.com/matt-FFFFFF/tinsh/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		config.ConfigCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "tinsh",
	Description: `tinsh is a small line-oriented command interpreter.
Each line is alias and variable expanded, split into stages at '|',
and every stage runs in turn as a builtin or as an external job.`,
	Usage:     "tinsh [--rc URL] [-c COMMAND] [SCRIPT]",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	Flags:     run.Flags(),
	Arguments: run.Arguments(),
	Action:    run.Action,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", tinsh.Version, tinsh.Commit)

	err := rootCmd.Run(ctx, os.Args) // Exit codes are handled by the cli framework

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
