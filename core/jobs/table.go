// Package jobs tracks background processes launched by the shell.
//
// Liveness is checked lazily: exited jobs are swept out when the table is
// listed or a new job is registered, never from a separate goroutine. A Table
// is not safe for concurrent use.
package jobs

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"
)

// ErrNotFound is returned when a pid isn't a tracked background job.
var ErrNotFound = errors.New("no such background job")

// Job is a background process.
type Job struct {
	PID     int
	Command string
	Started time.Time
}

// Tracker reports on and stops processes.
type Tracker interface {
	// Alive reports whether pid has not yet exited.
	Alive(pid int) bool
	// Terminate asks pid to exit.
	Terminate(pid int) error
}

// Option configures a Table.
type Option func(*Table)

// WithClock sets the time source used to stamp new jobs.
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		t.now = now
	}
}

// Table holds background jobs in launch order.
type Table struct {
	tracker Tracker
	now     func() time.Time
	jobs    []Job
}

// NewTable creates an empty table backed by tracker.
func NewTable(tracker Tracker, opts ...Option) *Table {
	t := &Table{
		tracker: tracker,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sweep drops exited jobs and returns them.
func (t *Table) Sweep() []Job {
	var done []Job
	t.jobs = slices.DeleteFunc(t.jobs, func(j Job) bool {
		if t.tracker.Alive(j.PID) {
			return false
		}
		done = append(done, j)
		return true
	})
	return done
}

// Register adds a running process. A stale entry with the same pid is
// replaced.
func (t *Table) Register(pid int, command string) Job {
	t.Sweep()
	t.jobs = slices.DeleteFunc(t.jobs, func(j Job) bool {
		return j.PID == pid
	})

	job := Job{
		PID:     pid,
		Command: command,
		Started: t.now(),
	}
	t.jobs = append(t.jobs, job)
	return job
}

// List sweeps exited jobs and yields the remaining ones in launch order. The
// sequence iterates over a copy taken at call time so it may be consumed
// while the table changes.
func (t *Table) List() iter.Seq[Job] {
	t.Sweep()
	jobs := slices.Clone(t.jobs)
	return slices.Values(jobs)
}

// Snapshot returns List as a slice.
func (t *Table) Snapshot() []Job {
	return slices.Collect(t.List())
}

// Lookup finds a job by pid without checking liveness.
func (t *Table) Lookup(pid int) (Job, bool) {
	i := t.index(pid)
	if i < 0 {
		return Job{}, false
	}
	return t.jobs[i], true
}

// Remove forgets a job without signalling it.
func (t *Table) Remove(pid int) error {
	i := t.index(pid)
	if i < 0 {
		return fmt.Errorf("%d: %w", pid, ErrNotFound)
	}
	t.jobs = slices.Delete(t.jobs, i, i+1)
	return nil
}

// Kill terminates a tracked job and removes it. Untracked pids are never
// signalled. The entry is removed even if termination reports an error.
func (t *Table) Kill(pid int) error {
	if err := t.Remove(pid); err != nil {
		return err
	}
	if err := t.tracker.Terminate(pid); err != nil {
		return fmt.Errorf("terminating %d: %w", pid, err)
	}
	return nil
}

// Len returns the number of entries, including ones not yet swept.
func (t *Table) Len() int {
	return len(t.jobs)
}

func (t *Table) index(pid int) int {
	return slices.IndexFunc(t.jobs, func(j Job) bool {
		return j.PID == pid
	})
}
