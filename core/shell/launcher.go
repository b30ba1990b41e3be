package shell

import (
	"errors"
	"fmt"
	"io"

	"github.com/josephlewis42/octane/core/vos"
)

// Launcher starts external programs.
type Launcher struct {
	OS     vos.VOS
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts name in the foreground and blocks until it exits, returning its
// exit status.
func (l *Launcher) Run(name string, args []string) (int, error) {
	proc, err := l.start(name, args, false)
	if err != nil {
		return 0, err
	}

	status, err := proc.Wait()
	if err != nil {
		return status, fmt.Errorf("%s: %w", name, err)
	}
	return status, nil
}

// Start launches name in the background and returns its pid without waiting.
// Background processes read from the null device.
func (l *Launcher) Start(name string, args []string) (int, error) {
	proc, err := l.start(name, args, true)
	if err != nil {
		return 0, err
	}
	return proc.Pid(), nil
}

func (l *Launcher) start(name string, args []string, background bool) (vos.Process, error) {
	execPath, err := l.OS.LookPath(name)
	switch {
	case errors.Is(err, vos.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", name, ErrCommandNotFound)
	case err != nil:
		return nil, fmt.Errorf("%s: %w: %v", name, ErrCommandNotFound, err)
	}

	attr := &vos.ProcAttr{
		Env:    l.OS.Environ(),
		Stdout: l.Stdout,
		Stderr: l.Stderr,
		Detach: background,
	}
	if wd, err := l.OS.Getwd(); err == nil {
		attr.Dir = wd
	}
	if !background {
		attr.Stdin = l.Stdin
	}

	argv := append([]string{name}, args...)
	proc, err := l.OS.StartProcess(execPath, argv, attr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return proc, nil
}
