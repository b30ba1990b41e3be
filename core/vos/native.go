package vos

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"syscall"
)

// NativeOS is the VOS of the host machine.
type NativeOS struct {
	OSEnv

	// TermSignal is delivered by Terminate, SIGTERM when nil.
	TermSignal os.Signal

	// procs holds detached children until they are observed to exit or are
	// terminated. It's only touched from the goroutine driving the shell.
	procs map[int]*nativeProcess
}

var _ VOS = (*NativeOS)(nil)

// NewNativeOS creates a VOS backed by the host.
func NewNativeOS() *NativeOS {
	return &NativeOS{
		procs: make(map[int]*nativeProcess),
	}
}

// Getwd implements VDir.Getwd.
func (n *NativeOS) Getwd() (string, error) { return os.Getwd() }

// Chdir implements VDir.Chdir.
func (n *NativeOS) Chdir(dir string) error { return os.Chdir(dir) }

// Stat implements VDir.Stat.
func (n *NativeOS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// Getpid implements VProc.Getpid.
func (n *NativeOS) Getpid() int { return os.Getpid() }

// LookPath implements VProc.LookPath.
func (n *NativeOS) LookPath(file string) (string, error) {
	if runtime.GOOS == "windows" {
		// Windows has no execute bit, defer to PATHEXT handling.
		path, err := exec.LookPath(file)
		if errors.Is(err, exec.ErrDot) {
			return "", ErrNotFound
		}
		return path, err
	}
	return LookPath(n, file)
}

// StartProcess implements VProc.StartProcess.
func (n *NativeOS) StartProcess(path string, argv []string, attr *ProcAttr) (Process, error) {
	if attr == nil {
		attr = &ProcAttr{}
	}

	cmd := &exec.Cmd{
		Path:        path,
		Args:        argv,
		Dir:         attr.Dir,
		Env:         attr.Env,
		Stdin:       attr.Stdin,
		Stdout:      attr.Stdout,
		Stderr:      attr.Stderr,
		SysProcAttr: sysProcAttr(attr.Detach),
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	proc := &nativeProcess{
		cmd:   cmd,
		group: attr.Detach,
		done:  make(chan struct{}),
	}
	go proc.wait()

	if attr.Detach {
		if n.procs == nil {
			n.procs = make(map[int]*nativeProcess)
		}
		n.procs[proc.Pid()] = proc
	}

	return proc, nil
}

// Alive implements VProc.Alive.
func (n *NativeOS) Alive(pid int) bool {
	proc, ok := n.procs[pid]
	if !ok {
		return probe(pid)
	}
	if proc.exited() {
		delete(n.procs, pid)
		return false
	}
	return true
}

// Terminate implements VProc.Terminate.
func (n *NativeOS) Terminate(pid int) error {
	sig := n.TermSignal
	if sig == nil {
		sig = syscall.SIGTERM
	}

	proc, ok := n.procs[pid]
	if !ok {
		return terminatePID(pid, sig)
	}
	delete(n.procs, pid)

	// The waiter goroutine reaps the child once the signal lands.
	return proc.terminate(sig)
}

type nativeProcess struct {
	cmd   *exec.Cmd
	group bool

	done chan struct{}
	code int
	err  error
}

func (p *nativeProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *nativeProcess) Wait() (int, error) {
	<-p.done
	return p.code, p.err
}

func (p *nativeProcess) wait() {
	defer close(p.done)

	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		p.code = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			p.code = 128 + int(ws.Signal())
		}
	case err != nil:
		p.code, p.err = -1, err
	}
}

func (p *nativeProcess) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
