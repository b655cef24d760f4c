// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/matt-FFFFFF/tinsh/internal/color"
	"github.com/matt-FFFFFF/tinsh/internal/config"
	"github.com/matt-FFFFFF/tinsh/internal/engine"
	"github.com/matt-FFFFFF/tinsh/internal/tokenize"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	color.SetEnabled(false)
	goleak.VerifyTestMain(m)
}

type testShell struct {
	*Shell
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestShell(t *testing.T, cfg *config.Config, opts ...Option) testShell {
	t.Helper()

	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	t.Cleanup(func() { _ = devNull.Close() })

	childOut, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = childOut.Close() })

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	opts = append([]Option{
		WithStdout(out),
		WithStderr(errOut),
		WithEngineOptions(engine.WithFiles(devNull, childOut, childOut)),
	}, opts...)

	s, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)

	return testShell{Shell: s, out: out, errOut: errOut}
}

// scriptedReader returns its lines and errors in order, then io.EOF.
type scriptedReader struct {
	lines   []string
	errs    []error
	cleared bool
	hist    []string
}

func (r *scriptedReader) ReadLine(string) (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}

	line, err := r.lines[0], r.errs[0]
	r.lines, r.errs = r.lines[1:], r.errs[1:]

	return line, err
}

func (r *scriptedReader) AppendHistory(line string) { r.hist = append(r.hist, line) }

func (r *scriptedReader) ClearHistory() {
	r.hist = nil
	r.cleared = true
}

func TestEval_VariablesAndAliases(t *testing.T) {
	s := newTestShell(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Eval(ctx, "set greeting = hi there"))
	require.NoError(t, s.Eval(ctx, "alias lv = lsvars"))
	require.NoError(t, s.Eval(ctx, "lv"))

	assert.Contains(t, s.out.String(), "[lsvars]\ngreeting = hi there\n")
	assert.Empty(t, s.errOut.String())
}

func TestEval_StagesRunLeftToRight(t *testing.T) {
	s := newTestShell(t, nil)

	require.NoError(t, s.Eval(context.Background(), "lsalias | pwd | lsvars"))

	out := s.out.String()
	iAlias := strings.Index(out, "[lsalias]")
	iPwd := strings.Index(out, "[pwd]")
	iVars := strings.Index(out, "[lsvars]")

	require.GreaterOrEqual(t, iAlias, 0)
	assert.Less(t, iAlias, iPwd)
	assert.Less(t, iPwd, iVars)
}

func TestEval_FailingStageDoesNotStopTheLine(t *testing.T) {
	s := newTestShell(t, nil)

	require.NoError(t, s.Eval(context.Background(), "unset missing | tinsh-no-such-command | lsalias"))

	assert.Contains(t, s.errOut.String(), "unset: missing: not set")
	assert.Contains(t, s.errOut.String(), "tinsh: command 'tinsh-no-such-command' not found.")
	assert.Contains(t, s.out.String(), "[lsalias]")
	assert.Equal(t, 0, s.Jobs().Len())
}

func TestEval_ExternalExitCode(t *testing.T) {
	s := newTestShell(t, nil)

	require.NoError(t, s.Eval(context.Background(), "sh -c 'exit 5'"))
	assert.Equal(t, 5, s.ExitCode())
	assert.Contains(t, s.out.String(), "[sh] -c exit 5\n")
}

func TestEval_DebugPrefixesLineNumbers(t *testing.T) {
	cfg := config.Default()
	cfg.Debug = true

	s := newTestShell(t, cfg)
	ctx := context.Background()

	require.NoError(t, s.Eval(ctx, "pwd"))
	require.NoError(t, s.Eval(ctx, "unset nothing"))
	assert.Equal(t, "Line 2: unset: nothing: not set\n", s.errOut.String())

	s.errOut.Reset()
	require.NoError(t, s.Eval(ctx, "unset debug | unset nothing"))
	assert.Equal(t, "unset: nothing: not set\n", s.errOut.String(), "no prefix once debug is unset")
}

func TestEval_ExpansionHappensBeforeAnyStageRuns(t *testing.T) {
	s := newTestShell(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Eval(ctx, "set a = 1 | set b = (a)"))

	_, ok := s.Symbols().Lookup("b")
	assert.False(t, ok, "(a) was expanded while a was still unset")
}

func TestRun_ExitReleasesEverything(t *testing.T) {
	s := newTestShell(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Eval(ctx, "set kept = yes"))
	require.NoError(t, s.Eval(ctx, "alias k = lsvars"))

	r := NewScanReader(strings.NewReader("#!/usr/bin/env tinsh\nexit 3 | lsvars\nlsalias\n"))
	require.NoError(t, s.Run(ctx, r))

	assert.True(t, s.Exiting())
	assert.Equal(t, 3, s.ExitCode())
	assert.NotContains(t, s.out.String(), "[lsvars]", "stages after exit do not run")
	assert.NotContains(t, s.out.String(), "[lsalias]", "lines after exit are not read")

	require.NoError(t, s.Close(ctx))

	_, ok := s.Symbols().Lookup("kept")
	assert.False(t, ok)
	assert.False(t, s.Symbols().HasAlias("k"))
	assert.True(t, s.Symbols().TornDown())
	assert.Equal(t, 0, s.Jobs().Len())

	require.NoError(t, s.Close(ctx), "closing twice is a no-op")
	require.ErrorIs(t, s.Eval(ctx, "pwd"), ErrClosed)
	require.ErrorIs(t, s.Run(ctx, r), ErrClosed)
}

func TestRun_InterruptedLinesAreSkipped(t *testing.T) {
	s := newTestShell(t, nil)

	r := &scriptedReader{
		lines: []string{"", "pwd", "  "},
		errs:  []error{ErrInterrupted, nil, nil},
	}
	require.NoError(t, s.Run(context.Background(), r))

	assert.Equal(t, []string{"pwd"}, s.History())
	assert.Equal(t, []string{"pwd"}, r.hist)
}

func TestRun_ReadError(t *testing.T) {
	s := newTestShell(t, nil)

	r := &scriptedReader{lines: []string{""}, errs: []error{errors.New("broken")}}
	require.ErrorIs(t, s.Run(context.Background(), r), ErrReadLine)
}

func TestRun_ContextCancelled(t *testing.T) {
	s := newTestShell(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Run(ctx, NewScanReader(strings.NewReader("pwd\n"))), context.Canceled)
}

func TestHistory_BuiltinAndLimit(t *testing.T) {
	cfg := config.Default()
	cfg.HistoryLimit = 2

	s := newTestShell(t, cfg)
	r := &scriptedReader{
		lines: []string{"pwd", "lsalias", "history"},
		errs:  []error{nil, nil, nil},
	}
	require.NoError(t, s.Run(context.Background(), r))

	assert.Contains(t, s.out.String(), "    1  lsalias\n    2  history\n")

	require.NoError(t, s.Eval(context.Background(), "history -c"))
	assert.Empty(t, s.History())
	assert.True(t, r.cleared)
}

func TestHistory_LoadAndSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/u/.tinsh_history", []byte("pwd\n\nlsvars\n"), 0o600))

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	s := newTestShell(t, nil, WithHistoryFile("/home/u/.tinsh_history"))
	assert.Equal(t, []string{"pwd", "lsvars"}, s.History())

	r := &scriptedReader{lines: []string{"lsalias"}, errs: []error{nil}}
	require.NoError(t, s.Run(context.Background(), r))
	assert.Equal(t, []string{"pwd", "lsvars", "lsalias"}, r.hist, "the reader is seeded with the loaded history")

	require.NoError(t, s.Close(context.Background()))

	data, err := afero.ReadFile(fs, "/home/u/.tinsh_history")
	require.NoError(t, err)
	assert.Equal(t, "pwd\nlsvars\nlsalias\n", string(data))
}

func TestClose_HistoryWriteFailure(t *testing.T) {
	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return afero.NewReadOnlyFs(afero.NewMemMapFs()) })
	defer stubs.Reset()

	s := newTestShell(t, nil, WithHistoryFile("/history"))
	s.appendHistory("pwd")

	err := s.Close(context.Background())
	require.ErrorIs(t, err, ErrTeardown)
	require.ErrorIs(t, err, ErrHistoryFile)
	assert.True(t, s.Symbols().TornDown(), "teardown continues past a failing step")
}

func TestPrompt(t *testing.T) {
	t.Setenv("TINSH_PROMPT_USER", "alice")

	cfg := config.Default()
	cfg.Prompt = "(TINSH_PROMPT_USER)@(host)> "

	s := newTestShell(t, cfg)
	require.NoError(t, s.Eval(context.Background(), "set host = box"))
	assert.Equal(t, "alice@box> ", s.Prompt())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Vars = map[string]string{"bad name": "x"}

	_, err := New(context.Background(), cfg, WithStdout(io.Discard), WithStderr(io.Discard))
	require.Error(t, err)
}

func TestComplete(t *testing.T) {
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "extool"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "exdata"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(bin, "exdir"), 0o755))
	t.Setenv("PATH", bin+string(filepath.ListSeparator)+filepath.Join(bin, "missing"))

	s := newTestShell(t, nil)
	require.NoError(t, s.Eval(context.Background(), "alias exa = lsalias"))

	assert.Equal(t, []string{"exa", "exit", "extool"}, s.Complete("ex"))
	assert.Nil(t, s.Complete("exit "))
}

func TestScanReader(t *testing.T) {
	r := NewScanReader(strings.NewReader("one\r\n#!not first\n"))

	line, err := r.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = r.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, "#!not first", line, "only a first-line shebang is skipped")

	_, err = r.ReadLine("")
	require.ErrorIs(t, err, io.EOF)
}

func TestScanReader_LongLine(t *testing.T) {
	long := "set v = " + strings.Repeat("x", 200*1024)
	r := NewScanReader(strings.NewReader(long + "\n"))

	line, err := r.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, long, line)
}

func TestEvalContext_ReleaseIsIdempotent(t *testing.T) {
	ec := &evalContext{}
	ec.record(engine.Outcome{Failed: true})
	ec.record(engine.Outcome{})
	assert.Equal(t, 1, ec.failed())

	ec.Release()
	ec.Release()
	ec.record(engine.Outcome{Failed: true})
	assert.Equal(t, 0, ec.failed())
}

func TestShellResume_WaitFailureIsFatal(t *testing.T) {
	s := newTestShell(t, nil)

	group := exec.Command("sleep", "10")
	group.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	require.NoError(t, group.Start())

	t.Cleanup(func() {
		_ = group.Process.Kill()
		_ = group.Wait()
	})

	// SIGCONT reaches the group, but the tracked pid is not a child.
	// The engine is driven directly because Eval would reap the job first.
	j := s.Jobs().New("self", false)
	j.Add(os.Getpid(), nil)
	j.Pgid = group.Process.Pid

	out, err := s.eng.Exec(context.Background(), tokenize.Command{Argv: []string{"fg", "1"}}, "fg 1")
	require.ErrorIs(t, err, engine.ErrWaitFailed)
	assert.True(t, out.Failed)
	assert.Contains(t, s.errOut.String(), "fg: ")
}
