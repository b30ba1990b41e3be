package jobs

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTracker struct {
	alive      map[int]bool
	terminated []int
	termErr    error
}

func newFakeTracker(pids ...int) *fakeTracker {
	f := &fakeTracker{alive: make(map[int]bool)}
	for _, pid := range pids {
		f.alive[pid] = true
	}
	return f
}

func (f *fakeTracker) Alive(pid int) bool {
	return f.alive[pid]
}

func (f *fakeTracker) Terminate(pid int) error {
	f.terminated = append(f.terminated, pid)
	delete(f.alive, pid)
	return f.termErr
}

var epoch = time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestTable(tracker Tracker) *Table {
	return NewTable(tracker, WithClock(func() time.Time { return epoch }))
}

func pids(jobs []Job) []int {
	var out []int
	for _, j := range jobs {
		out = append(out, j.PID)
	}
	return out
}

func TestTable_Register(t *testing.T) {
	tracker := newFakeTracker(10, 11)
	table := newTestTable(tracker)

	job := table.Register(10, "sleep 5")
	table.Register(11, "sleep 6")

	want := Job{PID: 10, Command: "sleep 5", Started: epoch}
	if diff := cmp.Diff(want, job); diff != "" {
		t.Errorf("Register() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{10, 11}, pids(table.Snapshot()))
}

func TestTable_Register_sweepsFirst(t *testing.T) {
	tracker := newFakeTracker(10, 11)
	table := newTestTable(tracker)
	table.Register(10, "a")

	delete(tracker.alive, 10)
	table.Register(11, "b")

	assert.Equal(t, 1, table.Len())
}

func TestTable_Register_replacesDuplicate(t *testing.T) {
	tracker := newFakeTracker(10)
	table := newTestTable(tracker)
	table.Register(10, "old")
	table.Register(10, "new")

	jobs := table.Snapshot()
	assert.Len(t, jobs, 1)
	assert.Equal(t, "new", jobs[0].Command)
}

func TestTable_List(t *testing.T) {
	tracker := newFakeTracker(1, 2, 3)
	table := newTestTable(tracker)
	for _, pid := range []int{1, 2, 3} {
		table.Register(pid, fmt.Sprintf("job %d", pid))
	}

	delete(tracker.alive, 2)

	assert.Equal(t, []int{1, 3}, pids(table.Snapshot()))
	assert.Equal(t, 2, table.Len(), "exited jobs are removed by List")

	_, ok := table.Lookup(2)
	assert.False(t, ok)
}

func TestTable_List_snapshot(t *testing.T) {
	tracker := newFakeTracker(1, 2)
	table := newTestTable(tracker)
	table.Register(1, "a")
	table.Register(2, "b")

	var seen []int
	for job := range table.List() {
		seen = append(seen, job.PID)
		table.Remove(job.PID)
	}

	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 0, table.Len())
}

func TestTable_Sweep(t *testing.T) {
	tracker := newFakeTracker(1, 2)
	table := newTestTable(tracker)
	table.Register(1, "a")
	table.Register(2, "b")

	assert.Empty(t, table.Sweep())

	delete(tracker.alive, 1)
	done := table.Sweep()
	assert.Equal(t, []int{1}, pids(done))
}

func TestTable_Kill(t *testing.T) {
	tracker := newFakeTracker(10)
	table := newTestTable(tracker)
	table.Register(10, "sleep 5")

	assert.NoError(t, table.Kill(10))
	assert.Equal(t, []int{10}, tracker.terminated)
	assert.Equal(t, 0, table.Len())
}

func TestTable_Kill_untracked(t *testing.T) {
	tracker := newFakeTracker(10, 99)
	table := newTestTable(tracker)
	table.Register(10, "sleep 5")

	err := table.Kill(99)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, tracker.terminated, "untracked processes must not be signalled")
	assert.Equal(t, 1, table.Len())
}

func TestTable_Kill_terminateError(t *testing.T) {
	tracker := newFakeTracker(10)
	tracker.termErr = errors.New("operation not permitted")
	table := newTestTable(tracker)
	table.Register(10, "sleep 5")

	err := table.Kill(10)

	assert.ErrorIs(t, err, tracker.termErr)
	assert.Equal(t, 0, table.Len())
}

func TestTable_Remove(t *testing.T) {
	table := newTestTable(newFakeTracker(10))
	table.Register(10, "sleep 5")

	assert.NoError(t, table.Remove(10))
	assert.ErrorIs(t, table.Remove(10), ErrNotFound)
}

func ExampleTable_List() {
	tracker := newFakeTracker(4242, 4243)
	table := NewTable(tracker)
	table.Register(4242, "sleep 100")
	table.Register(4243, "make build")

	for job := range table.List() {
		fmt.Println(job.PID, job.Command)
	}

	// Output: 4242 sleep 100
	// 4243 make build
}
