// Package vostest provides an in-memory VOS for tests.
package vostest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/josephlewis42/octane/core/vos"
)

// FirstPID is the pid handed to the first process started on a TestOS.
const FirstPID = 1000

// ShellPID is reported by Getpid.
const ShellPID = 42

// Program is a fake executable. It writes to the attr streams and returns an
// exit status.
type Program func(argv []string, attr *vos.ProcAttr) int

// Proc records a process started on a TestOS.
type Proc struct {
	PID  int
	Path string
	Argv []string
	Attr vos.ProcAttr

	exited bool
	code   int
}

// Pid implements vos.Process.
func (p *Proc) Pid() int { return p.PID }

// Wait implements vos.Process.
func (p *Proc) Wait() (int, error) { return p.code, nil }

// TestOS is a deterministic VOS. Directories are checked against the real
// file system so tests can use t.TempDir.
type TestOS struct {
	*vos.MapEnv

	// Dir is the working directory.
	Dir string
	// Programs maps command names to fake executables.
	Programs map[string]Program
	// SpawnErr, if set, is returned by every StartProcess call.
	SpawnErr error

	// Started holds every process in launch order.
	Started []*Proc
	// Terminated holds the pids passed to Terminate in order.
	Terminated []int

	procs   map[int]*Proc
	nextPID int
}

var _ vos.VOS = (*TestOS)(nil)

// NewTestOS creates a TestOS rooted at dir with HOME set to home.
func NewTestOS(dir, home string) *TestOS {
	env := vos.NewMapEnvFromEnvList([]string{
		"HOME=" + home,
		"PATH=/usr/bin:/bin",
		"PWD=" + dir,
	})

	return &TestOS{
		MapEnv:   env,
		Dir:      dir,
		Programs: make(map[string]Program),
		procs:    make(map[int]*Proc),
		nextPID:  FirstPID,
	}
}

func (t *TestOS) abs(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(t.Dir, name)
}

// Getwd implements vos.VDir.
func (t *TestOS) Getwd() (string, error) { return t.Dir, nil }

// Stat implements vos.VDir.
func (t *TestOS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(t.abs(name))
}

// Chdir implements vos.VDir.
func (t *TestOS) Chdir(dir string) error {
	target := t.abs(dir)
	info, err := os.Stat(target)
	if err != nil {
		return &fs.PathError{Op: "chdir", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: dir, Err: fmt.Errorf("not a directory")}
	}
	t.Dir = target
	return nil
}

// Getpid implements vos.VProc.
func (t *TestOS) Getpid() int { return ShellPID }

// LookPath implements vos.VProc, only names in Programs resolve.
func (t *TestOS) LookPath(file string) (string, error) {
	if _, ok := t.Programs[file]; ok {
		return "/usr/bin/" + file, nil
	}
	return "", fmt.Errorf("%s: %w", file, vos.ErrNotFound)
}

// StartProcess implements vos.VProc. Programs run to completion before it
// returns; detached processes stay alive until Exit is called.
func (t *TestOS) StartProcess(path string, argv []string, attr *vos.ProcAttr) (vos.Process, error) {
	if t.SpawnErr != nil {
		return nil, t.SpawnErr
	}
	prog, ok := t.Programs[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such program", vos.ErrSpawn, path)
	}
	if attr == nil {
		attr = &vos.ProcAttr{}
	}

	proc := &Proc{
		PID:  t.nextPID,
		Path: path,
		Argv: append([]string(nil), argv...),
		Attr: *attr,
	}
	t.nextPID++
	t.Started = append(t.Started, proc)

	proc.code = prog(argv, attr)
	if attr.Detach {
		t.procs[proc.PID] = proc
	} else {
		proc.exited = true
	}
	return proc, nil
}

// Exit marks a detached process as exited.
func (t *TestOS) Exit(pid, code int) {
	if proc, ok := t.procs[pid]; ok {
		proc.exited = true
		proc.code = code
	}
}

// Alive implements vos.VProc.
func (t *TestOS) Alive(pid int) bool {
	proc, ok := t.procs[pid]
	return ok && !proc.exited
}

// Terminate implements vos.VProc.
func (t *TestOS) Terminate(pid int) error {
	t.Terminated = append(t.Terminated, pid)
	if proc, ok := t.procs[pid]; ok {
		proc.exited = true
		proc.code = 128 + 15
	}
	return nil
}

// Running returns the pids of detached processes that haven't exited.
func (t *TestOS) Running() []int {
	var out []int
	for pid, proc := range t.procs {
		if !proc.exited {
			out = append(out, pid)
		}
	}
	sort.Ints(out)
	return out
}

// ExitWith returns a Program that exits with code and prints nothing.
func ExitWith(code int) Program {
	return func([]string, *vos.ProcAttr) int {
		return code
	}
}

// Echo is a Program that prints its arguments like echo(1).
func Echo(argv []string, attr *vos.ProcAttr) int {
	if attr.Stdout == nil {
		return 0
	}
	for i, arg := range argv[1:] {
		if i > 0 {
			fmt.Fprint(attr.Stdout, " ")
		}
		fmt.Fprint(attr.Stdout, arg)
	}
	fmt.Fprintln(attr.Stdout)
	return 0
}
