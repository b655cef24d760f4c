// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/matt-FFFFFF/tinsh/internal/builtins"
	"github.com/matt-FFFFFF/tinsh/internal/color"
	"github.com/matt-FFFFFF/tinsh/internal/ctxlog"
	"github.com/matt-FFFFFF/tinsh/internal/job"
	"github.com/matt-FFFFFF/tinsh/internal/tokenize"
	"golang.org/x/sys/unix"
)

const (
	// ExitNotFound is the status recorded for a command that could not be found.
	ExitNotFound = 127
	// ExitCannotStart is the status recorded for a command that could not be started.
	ExitCannotStart = 126
	// ExitBuiltinError is the status recorded for a builtin that failed.
	ExitBuiltinError = 1
)

var (
	// ErrWaitFailed is returned when waiting for a foreground job fails.
	// The interpreter cannot continue after it.
	ErrWaitFailed = errors.New("wait for foreground job failed")
	// ErrNotBuiltin is returned when the builtin registry rejects a name it claimed.
	ErrNotBuiltin = errors.New("builtin dispatch returned not builtin")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrJobDone is returned when resuming a job that has already completed.
	ErrJobDone = errors.New("job has terminated")
	// ErrCouldNotSignal is returned when a signal could not be delivered to a job.
	ErrCouldNotSignal = errors.New("could not signal job")
)

// lookPath resolves a command name against PATH. It is a variable so tests can stub it.
var lookPath = exec.LookPath

// Outcome is the result of running one stage.
type Outcome struct {
	Failed   bool // The stage failed. The line still continues.
	ExitCode int
	JobID    int // Zero for builtins.
	Stopped  bool
}

// Engine runs tokenized commands, either as builtins or as external jobs.
type Engine struct {
	host     builtins.Host
	builtins builtins.Registry
	files    []*os.File
	tty      int // -1 when stdin is not a terminal.
	pgrp     int
	fgPgid   atomic.Int64
	waitErr  error // Set when a foreground wait fails inside a builtin.
}

// Option configures an Engine.
type Option func(*Engine)

// WithFiles sets the stdin, stdout and stderr handed to external commands.
func WithFiles(stdin, stdout, stderr *os.File) Option {
	return func(e *Engine) {
		e.files = []*os.File{stdin, stdout, stderr}
	}
}

// New returns an engine that dispatches builtins from reg with h as their host,
// and registers external jobs in h.Jobs().
func New(h builtins.Host, reg builtins.Registry, opts ...Option) *Engine {
	e := &Engine{
		host:     h,
		builtins: reg,
		files:    []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}

	for _, o := range opts {
		o(e)
	}

	e.tty = terminalFd(e.files[0])
	e.pgrp = unix.Getpgrp()

	return e
}

// Exec runs one stage. text is the stage as typed, used to name the job.
// Only ErrWaitFailed and ErrNotBuiltin are returned as errors; every other
// failure is reported and marked in the outcome.
func (e *Engine) Exec(ctx context.Context, cmd tokenize.Command, text string) (Outcome, error) {
	if cmd.Empty() {
		return Outcome{}, nil
	}

	e.printSummary(cmd)

	name := cmd.Name()
	if e.builtins.Has(name) {
		return e.execBuiltin(ctx, cmd)
	}

	return e.spawn(ctx, cmd, text)
}

func (e *Engine) printSummary(cmd tokenize.Command) {
	var sb strings.Builder

	if cmd.Background {
		sb.WriteString("(background) ")
	}

	fmt.Fprintf(&sb, "[%s]", cmd.Name())

	for _, a := range cmd.Argv[1:] {
		sb.WriteString(" ")
		sb.WriteString(a)
	}

	fmt.Fprintln(e.host.Stdout(), color.Colorize(sb.String(), color.FgMagenta)) //nolint:errcheck
}

func (e *Engine) execBuiltin(ctx context.Context, cmd tokenize.Command) (Outcome, error) {
	ctxlog.Debug(ctx, "builtin", "name", cmd.Name(), "args", cmd.Argv[1:])

	e.waitErr = nil

	st := e.builtins.Dispatch(ctx, e.host, cmd.Argv)

	// fg waits for a job from inside the builtin. A failed wait is fatal
	// even though the builtin only reports an error status.
	if err := e.waitErr; err != nil {
		e.waitErr = nil
		return Outcome{Failed: true, ExitCode: ExitBuiltinError}, err
	}

	switch st {
	case builtins.OK:
		return Outcome{}, nil
	case builtins.Error:
		return Outcome{Failed: true, ExitCode: ExitBuiltinError}, nil
	default:
		return Outcome{Failed: true}, fmt.Errorf("%w: %s", ErrNotBuiltin, cmd.Name())
	}
}

func (e *Engine) spawn(ctx context.Context, cmd tokenize.Command, text string) (Outcome, error) {
	jobs := e.host.Jobs()
	name := cmd.Name()

	if cmd.Background {
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "&"))
	}

	j := jobs.New(text, cmd.Background)
	logger := ctxlog.Logger(ctx).With("command", text)

	path, err := lookPath(name)
	if errors.Is(err, exec.ErrDot) {
		err = nil
	}

	if err != nil {
		logger.Debug("lookup failed", "error", err)
		e.host.Reporter().Errorf("tinsh: command '%s' not found.", name)
		j.Add(0, cmd.Argv).Complete(ExitNotFound)
		e.free(ctx, j)

		return Outcome{Failed: true, ExitCode: ExitNotFound, JobID: j.ID}, nil
	}

	sys := &syscall.SysProcAttr{Setpgid: true}
	foreground := !cmd.Background && e.tty >= 0

	if foreground {
		sys.Foreground = true
		sys.Ctty = e.tty
	}

	logger.Debug("starting process", "path", path, "args", cmd.Argv[1:], "foreground", foreground)

	ps, err := os.StartProcess(path, cmd.Argv, &os.ProcAttr{
		Env:   os.Environ(),
		Files: e.files,
		Sys:   sys,
	})
	if err != nil {
		e.host.Reporter().Error("tinsh", errors.Join(ErrCouldNotStartProcess, err))
		e.free(ctx, j)

		return Outcome{Failed: true, ExitCode: ExitCannotStart, JobID: j.ID}, nil
	}

	j.Add(ps.Pid, cmd.Argv)
	// wait4 is used directly, so the handle is not needed.
	_ = ps.Release()

	logger.Debug("process started", "pid", ps.Pid, "job", j.ID)

	if cmd.Background {
		fmt.Fprintf(e.host.Stdout(), "[%d] %d\n", j.ID, j.Pgid) //nolint:errcheck
		return Outcome{JobID: j.ID}, nil
	}

	return e.waitForeground(ctx, j)
}

// waitForeground waits until every process of j has completed or stopped.
func (e *Engine) waitForeground(ctx context.Context, j *job.Job) (Outcome, error) {
	e.fgPgid.Store(int64(j.Pgid))
	defer e.fgPgid.Store(0)

	err := e.wait(ctx, j)

	if e.tty >= 0 {
		if terr := e.takeTerminal(); terr != nil {
			ctxlog.Warn(ctx, "could not reclaim terminal", "error", terr)
		}
	}

	if err != nil {
		e.waitErr = err
		return Outcome{Failed: true, JobID: j.ID}, err
	}

	if j.IsCompleted() {
		code := j.ExitCode()
		e.free(ctx, j)

		return Outcome{Failed: code != 0, ExitCode: code, JobID: j.ID}, nil
	}

	fmt.Fprintf(e.host.Stdout(), "\n%s\n", j) //nolint:errcheck

	return Outcome{Stopped: true, JobID: j.ID}, nil
}

func (e *Engine) wait(ctx context.Context, j *job.Job) error {
	for _, p := range j.Processes {
		for !p.Completed && !p.Stopped {
			var ws unix.WaitStatus

			_, err := unix.Wait4(p.Pid, &ws, unix.WUNTRACED, nil)
			if errors.Is(err, unix.EINTR) {
				continue
			}

			if err != nil {
				return fmt.Errorf("%w: pid %d: %w", ErrWaitFailed, p.Pid, err)
			}

			p.Update(ws)
			ctxlog.Debug(ctx, "wait", "pid", p.Pid, "state", p.State().String(), "exitCode", p.ExitCode)
		}
	}

	return nil
}

func (e *Engine) free(ctx context.Context, j *job.Job) {
	if err := e.host.Jobs().Free(j.ID); err != nil {
		ctxlog.Debug(ctx, "could not free job", "job", j.ID, "error", err)
	}
}

// Relay forwards sig to the foreground job's process group. It reports
// whether there was a foreground job.
func (e *Engine) Relay(sig os.Signal) bool {
	pgid := int(e.fgPgid.Load())
	if pgid <= 0 {
		return false
	}

	s, ok := sig.(syscall.Signal)
	if !ok {
		return false
	}

	return unix.Kill(-pgid, s) == nil
}

// Foreground returns the process group of the foreground job, or zero.
func (e *Engine) Foreground() int {
	return int(e.fgPgid.Load())
}

// Reap collects status changes of every live job without blocking. Jobs that
// changed state are reported and completed jobs are freed.
func (e *Engine) Reap(ctx context.Context) {
	for _, j := range e.host.Jobs().Jobs() {
		before := j.State()

		for _, p := range j.Processes {
			if p.Completed || p.Pid <= 0 {
				continue
			}

			var ws unix.WaitStatus

			pid, err := unix.Wait4(p.Pid, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
			if errors.Is(err, unix.ECHILD) {
				ctxlog.Warn(ctx, "process was collected elsewhere, exit status unknown", "pid", p.Pid, "job", j.ID)
				p.Complete(job.ExitUnknown)

				continue
			}

			if err != nil || pid == 0 {
				continue
			}

			p.Update(ws)
		}

		after := j.State()
		if after == before {
			continue
		}

		ctxlog.Debug(ctx, "reap", "job", j.ID, "from", before.String(), "to", after.String())

		if after != job.StateRunning {
			fmt.Fprintln(e.host.Stdout(), j) //nolint:errcheck
		}

		if after == job.StateCompleted {
			e.free(ctx, j)
		}
	}
}

// Resume continues job id with SIGCONT. A foreground resume gives the job the
// terminal and waits for it.
func (e *Engine) Resume(ctx context.Context, id int, foreground bool) error {
	j, ok := e.host.Jobs().Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", job.ErrJobNotFound, id)
	}

	if j.IsCompleted() {
		e.free(ctx, j)
		return fmt.Errorf("%w: %d", ErrJobDone, id)
	}

	j.Background = !foreground

	if foreground && e.tty >= 0 {
		if err := e.giveTerminal(j.Pgid); err != nil {
			ctxlog.Warn(ctx, "could not hand terminal to job", "job", id, "error", err)
		}
	}

	if err := unix.Kill(-j.Pgid, unix.SIGCONT); err != nil {
		return fmt.Errorf("%w: %d: %w", ErrCouldNotSignal, id, err)
	}

	j.Continue()
	fmt.Fprintln(e.host.Stdout(), j) //nolint:errcheck

	if !foreground {
		return nil
	}

	_, err := e.waitForeground(ctx, j)

	return err
}
