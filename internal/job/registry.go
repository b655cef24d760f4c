// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package job models pipelines as jobs made of processes, and keeps the
// registry of live jobs.
//
// The registry is an arena keyed by a small, stable job ID. Processes belong
// to exactly one job and are released with it. The query methods never change
// process state; only Process.Update, driven by wait statuses, does.
package job

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrJobNotFound is returned when no job has the requested ID.
	ErrJobNotFound = errors.New("no such job")
	// ErrJobNotCompleted is returned when freeing a job that still has live processes.
	ErrJobNotCompleted = errors.New("job has not completed")
)

// Registry holds every live job.
type Registry struct {
	jobs  map[int]*Job
	order []int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[int]*Job),
	}
}

// New creates and registers a job. IDs start at 1 and are one more than the
// highest live ID, so they are reused once the registry drains.
func (r *Registry) New(command string, background bool) *Job {
	id := 1
	if n := len(r.order); n > 0 {
		id = slices.Max(r.order) + 1
	}

	j := &Job{
		ID:         id,
		Command:    command,
		Background: background,
	}
	r.jobs[id] = j
	r.order = append(r.order, id)

	return j
}

// Get returns the job with the given ID.
func (r *Registry) Get(id int) (*Job, bool) {
	j, ok := r.jobs[id]
	return j, ok
}

// Find returns the job whose process group is pgid, or nil.
func (r *Registry) Find(pgid int) *Job {
	for _, id := range r.order {
		if j := r.jobs[id]; j.Pgid == pgid {
			return j
		}
	}

	return nil
}

// FindProcess returns the job and process owning pid.
func (r *Registry) FindProcess(pid int) (*Job, *Process) {
	for _, id := range r.order {
		j := r.jobs[id]
		if p := j.Process(pid); p != nil {
			return j, p
		}
	}

	return nil, nil
}

// Jobs returns the live jobs in creation order.
func (r *Registry) Jobs() []*Job {
	out := make([]*Job, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.jobs[id])
	}

	return out
}

// Current returns the most recently created job that has not completed, or nil.
func (r *Registry) Current() *Job {
	for _, id := range slices.Backward(r.order) {
		if j := r.jobs[id]; !j.IsCompleted() {
			return j
		}
	}

	return nil
}

// Len returns the number of live jobs.
func (r *Registry) Len() int {
	return len(r.order)
}

// Free removes a completed job from the registry. It does not touch the
// operating system; the caller must already have observed completion.
func (r *Registry) Free(id int) error {
	j, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrJobNotFound, id)
	}

	if !j.IsCompleted() {
		return fmt.Errorf("%w: %d", ErrJobNotCompleted, id)
	}

	delete(r.jobs, id)
	r.order = slices.DeleteFunc(r.order, func(v int) bool { return v == id })
	j.Processes = nil

	return nil
}

// Completed returns every job whose processes have all completed.
func (r *Registry) Completed() []*Job {
	var out []*Job

	for _, id := range r.order {
		if j := r.jobs[id]; j.IsCompleted() {
			out = append(out, j)
		}
	}

	return out
}

// Teardown drops every job regardless of state. It is only used on interpreter exit.
func (r *Registry) Teardown() {
	for _, j := range r.jobs {
		j.Processes = nil
	}

	clear(r.jobs)
	r.order = nil
}
