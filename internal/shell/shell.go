// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/tinsh/internal/builtins"
	"github.com/matt-FFFFFF/tinsh/internal/config"
	"github.com/matt-FFFFFF/tinsh/internal/ctxlog"
	"github.com/matt-FFFFFF/tinsh/internal/diag"
	"github.com/matt-FFFFFF/tinsh/internal/engine"
	"github.com/matt-FFFFFF/tinsh/internal/expand"
	"github.com/matt-FFFFFF/tinsh/internal/job"
	"github.com/matt-FFFFFF/tinsh/internal/symtable"
	"github.com/matt-FFFFFF/tinsh/internal/tokenize"
	"github.com/spf13/afero"
)

var (
	// ErrClosed is returned when using a shell after Close.
	ErrClosed = errors.New("shell is closed")
	// ErrReadLine is returned when the line source fails.
	ErrReadLine = errors.New("could not read line")
	// ErrTeardown is returned when releasing the shell's state fails.
	ErrTeardown = errors.New("teardown failed")
)

var _ builtins.Host = (*Shell)(nil)

// Shell reads lines and evaluates them one at a time.
type Shell struct {
	st           *symtable.Table
	jobs         *job.Registry
	builtins     builtins.Registry
	eng          *engine.Engine
	rep          *diag.Reporter
	stdout       io.Writer
	stderr       io.Writer
	engineOpts   []engine.Option
	prompt       string
	history      []string
	historyLimit int
	historyFile  string
	lineNo       int
	current      *evalContext
	reader       LineReader
	exiting      bool
	exitCode     int
	closed       bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithStdout sets where the shell and its builtins write output.
func WithStdout(w io.Writer) Option {
	return func(s *Shell) {
		s.stdout = w
	}
}

// WithStderr sets where diagnostics are written.
func WithStderr(w io.Writer) Option {
	return func(s *Shell) {
		s.stderr = w
	}
}

// WithEngineOptions passes options to the execution engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Shell) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithHistoryFile loads history from path and saves it there on Close.
func WithHistoryFile(path string) Option {
	return func(s *Shell) {
		s.historyFile = path
	}
}

// WithBuiltins replaces the default builtin registry.
func WithBuiltins(reg builtins.Registry) Option {
	return func(s *Shell) {
		s.builtins = reg
	}
}

// New creates a shell seeded from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Shell, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Shell{
		st:           symtable.New(),
		jobs:         job.NewRegistry(),
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		prompt:       cfg.Prompt,
		historyLimit: cfg.HistoryLimit,
	}

	for _, o := range opts {
		o(s)
	}

	if s.builtins == nil {
		s.builtins = builtins.Default()
	}

	s.rep = diag.New(s.stderr, s.debugging)

	if err := cfg.Apply(s.st); err != nil {
		return nil, err
	}

	if err := s.loadHistory(ctx); err != nil {
		ctxlog.Warn(ctx, "could not load history", "file", s.historyFile, "error", err)
	}

	s.eng = engine.New(s, s.builtins, s.engineOpts...)

	return s, nil
}

func (s *Shell) debugging() bool {
	_, ok := s.st.Lookup(config.DebugVar)
	return ok
}

// Symbols implements builtins.Host.
func (s *Shell) Symbols() *symtable.Table { return s.st }

// Jobs implements builtins.Host.
func (s *Shell) Jobs() *job.Registry { return s.jobs }

// Stdout implements builtins.Host.
func (s *Shell) Stdout() io.Writer { return s.stdout }

// Reporter implements builtins.Host.
func (s *Shell) Reporter() *diag.Reporter { return s.rep }

// History implements builtins.Host.
func (s *Shell) History() []string { return slices.Clone(s.history) }

// RequestExit implements builtins.Host. The current line stops after the
// requesting stage and Run returns.
func (s *Shell) RequestExit(code int) {
	s.exiting = true
	s.exitCode = code
}

// Reap implements builtins.Host.
func (s *Shell) Reap(ctx context.Context) { s.eng.Reap(ctx) }

// Resume implements builtins.Host.
func (s *Shell) Resume(ctx context.Context, id int, foreground bool) error {
	return s.eng.Resume(ctx, id, foreground) //nolint:wrapcheck
}

// Relay forwards a signal to the foreground job. It is safe to call from
// the signal goroutine.
func (s *Shell) Relay(sig os.Signal) bool {
	return s.eng.Relay(sig)
}

// Exiting reports whether the exit builtin has run.
func (s *Shell) Exiting() bool { return s.exiting }

// ExitCode returns the code requested by exit, or the status of the last stage.
func (s *Shell) ExitCode() int { return s.exitCode }

// Prompt returns the prompt with variable references expanded.
func (s *Shell) Prompt() string {
	return expand.Vars(s.prompt, expand.WithEnv(s.st))
}

// Eval evaluates one line. Stages run left to right. Only interpreter-fatal
// errors are returned.
func (s *Shell) Eval(ctx context.Context, line string) error {
	if s.closed {
		return ErrClosed
	}

	s.lineNo++
	s.rep.SetLine(s.lineNo)

	s.eng.Reap(ctx)

	ec := &evalContext{}
	s.current = ec

	defer ec.Release()

	logger := ctxlog.Logger(ctx).With("line", s.lineNo)

	for _, stage := range expand.Line(line, s.st, expand.WithEnv(s.st)) {
		cmd, err := tokenize.Parse(stage)
		if err != nil {
			s.rep.Debugf("%v", err)
		}

		logger.Debug("stage", "text", stage, "argv", cmd.Argv, "background", cmd.Background)

		out, err := s.eng.Exec(ctx, cmd, stage)
		ec.record(out)

		if !s.exiting {
			s.exitCode = out.ExitCode
		}

		if errors.Is(err, engine.ErrWaitFailed) {
			s.rep.Error("tinsh", err)
			return err //nolint:wrapcheck
		}

		if err != nil {
			s.rep.Error("tinsh", err)
			break
		}

		if s.exiting {
			break
		}
	}

	logger.Debug("line done", "stages", len(ec.outcomes), "failed", ec.failed())

	return nil
}

// Run reads and evaluates lines from r until end of input, exit, or an
// interpreter-fatal error.
func (s *Shell) Run(ctx context.Context, r LineReader) error {
	if s.closed {
		return ErrClosed
	}

	s.reader = r

	if hk, ok := r.(historyKeeper); ok {
		for _, l := range s.history {
			hk.AppendHistory(l)
		}
	}

	for !s.exiting {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck
		}

		line, err := r.ReadLine(s.Prompt())

		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrInterrupted):
			continue
		case err != nil:
			return fmt.Errorf("%w: %w", ErrReadLine, err)
		}

		s.addHistory(line)

		if err := s.Eval(ctx, line); err != nil {
			return err
		}
	}

	return nil
}

// Close releases the shell's state in order: the evaluation context, the job
// registry, the symbol table from the innermost scope to the root, the builtin
// table, and finally the history file. Calling it again is a no-op.
func (s *Shell) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}

	s.closed = true

	var result *multierror.Error

	if s.current != nil {
		s.current.Release()
		s.current = nil
	}

	if n := s.jobs.Len(); n > 0 {
		ctxlog.Debug(ctx, "teardown", "detail", "dropping live jobs", "count", n)
	}

	s.jobs.Teardown()

	scopes := s.st.Teardown()
	ctxlog.Debug(ctx, "teardown", "detail", "released scopes", "count", scopes)

	s.builtins.Teardown()

	if err := s.saveHistory(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrTeardown, err)
	}

	return nil
}

// Complete returns completions for the first word of line: builtins, aliases
// and executables on PATH.
func (s *Shell) Complete(line string) []string {
	if strings.ContainsAny(line, " \t") {
		return nil
	}

	var out []string

	for _, name := range s.builtins.Names() {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}

	for _, a := range s.st.Aliases() {
		if strings.HasPrefix(a.Name, line) {
			out = append(out, a.Name)
		}
	}

	out = append(out, pathExecutables(line)...)

	slices.Sort(out)

	return slices.Compact(out)
}

// pathExecutables returns the executables on PATH whose names start with prefix.
func pathExecutables(prefix string) []string {
	if prefix == "" {
		return nil
	}

	fs := FsFactory()

	var out []string

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}

		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			continue
		}

		for _, fi := range entries {
			if fi.IsDir() || fi.Mode()&0o111 == 0 || !strings.HasPrefix(fi.Name(), prefix) {
				continue
			}

			out = append(out, fi.Name())
		}
	}

	return out
}
