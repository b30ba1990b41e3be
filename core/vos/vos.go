// Package vos abstracts the parts of the operating system the shell touches
// so the engine can run against the real host or an in-memory fake.
package vos

import (
	"io/fs"
)

// VOS is the operating system as seen by a shell session.
type VOS interface {
	VEnv
	VDir
	VProc
}

// VDir tracks the process working directory.
type VDir interface {
	// Getwd returns a rooted path name corresponding to the current directory.
	Getwd() (string, error)

	// Chdir changes the current working directory to the named directory.
	Chdir(dir string) error

	// Stat returns a FileInfo describing the named file.
	Stat(name string) (fs.FileInfo, error)
}
