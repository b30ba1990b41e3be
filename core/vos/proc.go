package vos

import (
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

// ErrSpawn is returned when the operating system refuses to create a process.
var ErrSpawn = errors.New("couldn't start process")

// VProc launches and tracks child processes.
type VProc interface {
	// Getpid returns the process id of the shell.
	Getpid() int

	// LookPath resolves file to an executable path.
	LookPath(file string) (string, error)

	// StartProcess starts the program at path with argv, argv[0] being the
	// program name.
	StartProcess(path string, argv []string, attr *ProcAttr) (Process, error)

	// Alive reports whether pid has not yet exited. Exited processes started
	// with ProcAttr.Detach are reaped as a side effect.
	Alive(pid int) bool

	// Terminate asks pid, or its whole process group if it was detached,
	// to exit.
	Terminate(pid int) error
}

// ProcAttr holds the attributes that will be applied to a new process.
type ProcAttr struct {
	// If Dir is non-empty, the child changes into the directory before
	// creating the process.
	Dir string
	// Env gives the environment variables for the new process in the form
	// returned by Environ.
	Env []string

	// A nil Stdin reads from the null device.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Detach puts the process in its own process group and keeps it tracked
	// for Alive and Terminate.
	Detach bool
}

// Process is a started child.
type Process interface {
	Pid() int
	// Wait blocks until the process exits and returns its exit status.
	// Processes killed by a signal report 128 plus the signal number.
	Wait() (int, error)
}

type statter interface {
	Stat(name string) (fs.FileInfo, error)
	Getenv(key string) string
}

func findExecutable(vos statter, file string) error {
	d, err := vos.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable. If file contains a slash, it is tried directly
// and the PATH is not consulted. The result may be an absolute path or a path
// relative to the current directory.
func LookPath(vos statter, file string) (string, error) {
	if strings.Contains(file, "/") {
		err := findExecutable(vos, file)
		if err == nil {
			return file, nil
		}
		return "", err
	}
	path := vos.Getenv("PATH")
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(vos, path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}
