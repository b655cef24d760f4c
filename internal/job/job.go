// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package job

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

const exitCodeSignalBase = 128

// ExitUnknown is the exit code of a process whose status was collected
// by someone else.
const ExitUnknown = -1

// State is the run state of a process or job.
type State int

const (
	// StateRunning means the process has not stopped or completed.
	StateRunning State = iota
	// StateStopped means the process was stopped by a signal.
	StateStopped
	// StateCompleted means the process exited or was killed.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateCompleted:
		return "Done"
	default:
		return "Running"
	}
}

// Process is one command invocation within a job.
type Process struct {
	Pid       int
	Argv      []string
	Completed bool
	Stopped   bool
	ExitCode  int         // Valid once Completed.
	Signal    unix.Signal // Terminating or stopping signal, zero if none.
}

// Update applies a wait status to the process. It is the only way the run
// state of a tracked process changes. A completed process never changes again.
func (p *Process) Update(ws unix.WaitStatus) {
	if p.Completed {
		return
	}

	switch {
	case ws.Exited():
		p.complete(ws.ExitStatus(), 0)
	case ws.Signaled():
		p.complete(exitCodeSignalBase+int(ws.Signal()), ws.Signal())
	case ws.Stopped():
		p.Stopped = true
		p.Signal = ws.StopSignal()
	case ws.Continued():
		p.Stopped = false
		p.Signal = 0
	}
}

// Complete marks the process completed with the given exit code.
// It is used for processes that never ran, such as an executable that could not be found.
func (p *Process) Complete(exitCode int) {
	if p.Completed {
		return
	}

	p.complete(exitCode, 0)
}

func (p *Process) complete(exitCode int, sig unix.Signal) {
	p.Completed = true
	p.Stopped = false
	p.ExitCode = exitCode
	p.Signal = sig
}

// State returns the process run state.
func (p *Process) State() State {
	switch {
	case p.Completed:
		return StateCompleted
	case p.Stopped:
		return StateStopped
	default:
		return StateRunning
	}
}

// Job is one pipeline invocation. All of its processes share Pgid.
type Job struct {
	ID         int
	Pgid       int
	Command    string
	Background bool
	Processes  []*Process
}

// Add records a spawned process. The first process added sets the job's Pgid.
func (j *Job) Add(pid int, argv []string) *Process {
	if len(j.Processes) == 0 {
		j.Pgid = pid
	}

	p := &Process{Pid: pid, Argv: argv}
	j.Processes = append(j.Processes, p)

	return p
}

// Process returns the process with the given pid, or nil.
func (j *Job) Process(pid int) *Process {
	for _, p := range j.Processes {
		if p.Pid == pid {
			return p
		}
	}

	return nil
}

// IsStopped reports whether every process is stopped or completed.
// A job without processes is stopped.
func (j *Job) IsStopped() bool {
	for _, p := range j.Processes {
		if !p.Completed && !p.Stopped {
			return false
		}
	}

	return true
}

// IsCompleted reports whether every process has completed.
func (j *Job) IsCompleted() bool {
	for _, p := range j.Processes {
		if !p.Completed {
			return false
		}
	}

	return true
}

// State summarises the job: completed, stopped, or running.
func (j *Job) State() State {
	switch {
	case j.IsCompleted():
		return StateCompleted
	case j.IsStopped():
		return StateStopped
	default:
		return StateRunning
	}
}

// ExitCode returns the exit code of the last process in the job.
func (j *Job) ExitCode() int {
	if len(j.Processes) == 0 {
		return 0
	}

	return j.Processes[len(j.Processes)-1].ExitCode
}

func (j *Job) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%d] %-8s %s", j.ID, j.State(), j.Command)

	if j.Background && !j.IsCompleted() {
		sb.WriteString(" &")
	}

	return sb.String()
}

// Continue marks every stopped process as running again.
// It is called after the job's process group was sent SIGCONT.
func (j *Job) Continue() {
	for _, p := range j.Processes {
		if !p.Completed {
			p.Stopped = false
			p.Signal = 0
		}
	}
}
