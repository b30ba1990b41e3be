package shell

import (
	"errors"

	"github.com/josephlewis42/octane/core/calc"
	"github.com/josephlewis42/octane/core/jobs"
	"github.com/josephlewis42/octane/core/vos"
)

var (
	// ErrInvalidArgument is returned for malformed builtin arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDirectoryNotFound is returned when cd can't find its target.
	ErrDirectoryNotFound = errors.New("no such directory")
	// ErrCommandNotFound is returned when an external command can't be
	// resolved.
	ErrCommandNotFound = errors.New("command not found")
	// ErrJobNotFound is returned for pids that aren't tracked background jobs.
	ErrJobNotFound = jobs.ErrNotFound
	// ErrEvaluation is returned when calc can't evaluate its expression.
	ErrEvaluation = calc.ErrEvaluation
	// ErrSpawnFailure is returned when the OS refuses to start a process.
	ErrSpawnFailure = vos.ErrSpawn
)

// ErrorKind classifies errors reported at the dispatch boundary.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidArgument
	KindDirectoryNotFound
	KindCommandNotFound
	KindJobNotFound
	KindEvaluation
	KindSpawnFailure
)

var kindErrors = []struct {
	kind ErrorKind
	err  error
}{
	{KindInvalidArgument, ErrInvalidArgument},
	{KindDirectoryNotFound, ErrDirectoryNotFound},
	{KindCommandNotFound, ErrCommandNotFound},
	{KindJobNotFound, ErrJobNotFound},
	{KindEvaluation, ErrEvaluation},
	{KindSpawnFailure, ErrSpawnFailure},
}

// KindOf returns the kind of err, KindUnknown for nil or unclassified errors.
func KindOf(err error) ErrorKind {
	for _, ke := range kindErrors {
		if errors.Is(err, ke.err) {
			return ke.kind
		}
	}
	return KindUnknown
}

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindDirectoryNotFound:
		return "DirectoryNotFound"
	case KindCommandNotFound:
		return "CommandNotFound"
	case KindJobNotFound:
		return "JobNotFound"
	case KindEvaluation:
		return "EvaluationError"
	case KindSpawnFailure:
		return "SpawnFailure"
	default:
		return "Unknown"
	}
}
