// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run starts the interpreter from the root command.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matt-FFFFFF/tinsh/internal/color"
	"github.com/matt-FFFFFF/tinsh/internal/config"
	"github.com/matt-FFFFFF/tinsh/internal/ctxlog"
	"github.com/matt-FFFFFF/tinsh/internal/shell"
	"github.com/matt-FFFFFF/tinsh/internal/signalbroker"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	rcFlag                      = "rc"
	commandFlag                 = "command"
	debugFlag                   = "debug"
	noColorFlag                 = "no-color"
	configTimeoutFlag           = "config-timeout"
	configTimeoutSecondsDefault = 30
	scriptArg                   = "script"
	cliExitStr                  = ""
	exitFatal                   = 1
)

// ErrOpenScript is returned when the script file cannot be opened.
var ErrOpenScript = errors.New("failed to open script")

// isTerminal reports whether stdin is a terminal. Tests stub it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Flags returns the root command's flags.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name: rcFlag,
			Usage: "Specify the URL of the YAML rc file. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources. " +
				"Defaults to ~/" + config.DefaultFileName,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:     commandFlag,
			Aliases:  []string{"c"},
			Usage:    "Evaluate the given lines and exit",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        debugFlag,
			Aliases:     []string{"d"},
			Usage:       "Set the debug variable so diagnostics carry line numbers",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        noColorFlag,
			Usage:       "Disable coloured output",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.IntFlag{
			Name:    configTimeoutFlag,
			Aliases: []string{"timeout"},
			Usage:   "Set the maximum time in seconds to wait for the rc file. Defaults to 30 seconds.",
			Value:   configTimeoutSecondsDefault,
		},
	}
}

// Arguments returns the root command's positional arguments.
func Arguments() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name:      scriptArg,
			UsageText: "[SCRIPT]",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	}
}

// Action runs the interpreter over the script, the -c lines, piped stdin or
// the terminal, in that order of preference.
func Action(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	if cmd.Bool(noColorFlag) {
		color.SetEnabled(false)
	}

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		logger.Error("failed to load rc file", "error", err)
		return cli.Exit(fmt.Sprintf("tinsh: %s", err), exitFatal)
	}

	script := cmd.StringArg(scriptArg)
	lines := cmd.String(commandFlag)
	interactive := script == "" && !cmd.IsSet(commandFlag) && isTerminal()

	opts := []shell.Option{
		shell.WithStdout(cmd.Root().Writer),
		shell.WithStderr(cmd.Root().ErrWriter),
	}

	if interactive && cfg.HistoryFile != "" {
		opts = append(opts, shell.WithHistoryFile(cfg.HistoryFile))
	}

	sh, err := shell.New(ctx, cfg, opts...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("tinsh: %s", err), exitFatal)
	}

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()

	go signalbroker.Relay(relayCtx, sigCh, sh.Relay)

	var r shell.LineReader

	switch {
	case script != "":
		f, err := os.Open(script)
		if err != nil {
			_ = sh.Close(ctx)
			return cli.Exit(fmt.Sprintf("tinsh: %s", errors.Join(ErrOpenScript, err)), exitFatal)
		}

		defer f.Close() //nolint:errcheck

		r = shell.NewScanReader(f)
	case cmd.IsSet(commandFlag):
		r = shell.NewScanReader(strings.NewReader(lines))
	case interactive:
		tr := shell.NewTerminalReader(sh.Complete)
		defer tr.Close() //nolint:errcheck

		r = tr
	default:
		r = shell.NewScanReader(os.Stdin)
	}

	runErr := sh.Run(ctx, r)
	code := sh.ExitCode()

	if err := sh.Close(ctx); err != nil {
		logger.Warn("teardown incomplete", "error", err)
	}

	if runErr != nil {
		logger.Error("interpreter stopped", "error", runErr)
		return cli.Exit(cliExitStr, exitFatal)
	}

	if code != 0 {
		return cli.Exit(cliExitStr, code)
	}

	return nil
}

func loadConfig(ctx context.Context, cmd *cli.Command) (*config.Config, error) {
	configCtx, cancel := context.WithTimeout(ctx, time.Duration(cmd.Int(configTimeoutFlag))*time.Second)
	defer cancel()

	cfg, err := config.Load(configCtx, cmd.String(rcFlag))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if cmd.Bool(debugFlag) {
		cfg.Debug = true
	}

	if cfg.Color != nil && !cmd.Bool(noColorFlag) {
		color.SetEnabled(*cfg.Color)
	}

	return cfg, nil
}
