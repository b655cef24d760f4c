// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/tinsh/internal/job"
	"github.com/pborman/getopt/v2"
)

// RegisterJobs registers jobs, fg and bg.
func RegisterJobs(r Registry) {
	r.Register(Builtin{Name: "jobs", Desc: "List jobs", Run: Jobs})
	r.Register(Builtin{Name: "fg", Desc: "Resume a job in the foreground", Run: Fg})
	r.Register(Builtin{Name: "bg", Desc: "Resume a job in the background", Run: Bg})
}

// Jobs reaps finished jobs, then lists the remaining ones. -l adds process ids.
func Jobs(ctx context.Context, h Host, args []string) Status {
	opts := getopt.New()
	opts.SetProgram(args[0])
	long := opts.Bool('l', "list process ids")

	if err := opts.Getopt(args, nil); err != nil {
		h.Reporter().Error(args[0], err)
		return Error
	}

	h.Reap(ctx)

	for _, j := range h.Jobs().Jobs() {
		fmt.Fprintln(h.Stdout(), j.String()) //nolint:errcheck

		if !*long {
			continue
		}

		for _, p := range j.Processes {
			fmt.Fprintf(h.Stdout(), "      %d %-8s %s\n", p.Pid, p.State(), strings.Join(p.Argv, " ")) //nolint:errcheck
		}
	}

	return OK
}

// Fg resumes a job and waits for it: fg [%id].
func Fg(ctx context.Context, h Host, args []string) Status {
	return resume(ctx, h, args, true)
}

// Bg resumes a stopped job without waiting for it: bg [%id].
func Bg(ctx context.Context, h Host, args []string) Status {
	return resume(ctx, h, args, false)
}

func resume(ctx context.Context, h Host, args []string, foreground bool) Status {
	j, err := selectJob(h.Jobs(), args)
	if err != nil {
		h.Reporter().Errorf("%s: %v", args[0], err)
		return Error
	}

	if err := h.Resume(ctx, j.ID, foreground); err != nil {
		h.Reporter().Error(args[0], err)
		return Error
	}

	return OK
}

// selectJob picks the job named by args[1] ("%2" or "2"), or the current job.
func selectJob(r *job.Registry, args []string) (*job.Job, error) {
	switch len(args) {
	case 1:
		if j := r.Current(); j != nil {
			return j, nil
		}

		return nil, fmt.Errorf("%w: current", job.ErrJobNotFound)
	case 2:
		id, err := strconv.Atoi(strings.TrimPrefix(args[1], "%"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", job.ErrJobNotFound, args[1])
		}

		j, ok := r.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", job.ErrJobNotFound, args[1])
		}

		return j, nil
	default:
		return nil, fmt.Errorf("too many arguments")
	}
}
