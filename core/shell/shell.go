// Package shell interprets command lines: it tokenizes and expands input,
// runs builtins, and launches external programs in the foreground or as
// background jobs.
//
// A Shell is driven by a single goroutine; nothing in it is safe for
// concurrent use.
package shell

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/josephlewis42/octane/core/jobs"
	"github.com/josephlewis42/octane/core/vos"
)

const (
	EnvHome   = "HOME"
	EnvPWD    = "PWD"
	EnvOldPWD = "OLDPWD"

	DefaultName = "octane"
)

// Options configures a Shell.
type Options struct {
	// Name prefixes the prompt and error messages, DefaultName if empty.
	Name string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Aliases are added to DefaultAliases.
	Aliases   map[string]string
	Tokenizer Tokenizer
	Prompt    PromptOptions

	// Interactive is set when stdout is a terminal; it enables clear and
	// automatic prompt color.
	Interactive bool
	// ReportExitStatus prints the status of failed foreground commands.
	ReportExitStatus bool

	Logger *zap.Logger
}

// Shell holds the state of one interactive session.
type Shell struct {
	OS   vos.VOS
	Jobs *jobs.Table

	aliases    AliasTable
	tokenizer  Tokenizer
	expander   *Expander
	launcher   *Launcher
	promptOpts PromptOptions

	name             string
	stdout, stderr   io.Writer
	interactive      bool
	reportExitStatus bool
	logger           *zap.Logger

	lastRet int

	// Quit is set once exit runs, ExitCode holds the requested status.
	Quit     bool
	ExitCode int
}

// New creates a shell on virtualOS. The job table is created fresh and tracks
// processes through virtualOS.
func New(virtualOS vos.VOS, opts Options) *Shell {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Prompt.Name == "" {
		opts.Prompt.Name = opts.Name
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Shell{
		OS:   virtualOS,
		Jobs: jobs.NewTable(virtualOS),

		aliases:    NewAliasTable(opts.Aliases),
		tokenizer:  opts.Tokenizer,
		promptOpts: opts.Prompt,

		name:             opts.Name,
		stdout:           opts.Stdout,
		stderr:           opts.Stderr,
		interactive:      opts.Interactive,
		reportExitStatus: opts.ReportExitStatus,
		logger:           opts.Logger,
	}
	s.expander = &Expander{
		Aliases:   s.aliases,
		Tokenizer: s.tokenizer,
		Lookup:    s.lookupVar,
	}
	s.launcher = &Launcher{
		OS:     virtualOS,
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	}
	return s
}

// Aliases returns the alias table.
func (s *Shell) Aliases() AliasTable {
	return s.aliases
}

// LastStatus returns the exit status of the last command, as $? would.
func (s *Shell) LastStatus() int {
	return s.lastRet
}

func (s *Shell) lookupVar(name string) string {
	switch name {
	case "?":
		return strconv.Itoa(s.lastRet)
	case "$":
		return strconv.Itoa(s.OS.Getpid())
	default:
		return s.OS.Getenv(name)
	}
}

func (s *Shell) home() string {
	if home := s.OS.Getenv(EnvHome); home != "" {
		return home
	}
	home, _ := s.OS.UserHomeDir()
	return home
}

// Execute runs one input line. Errors are printed to stderr and returned so
// callers can inspect them; none of them end the session, only exit does.
func (s *Shell) Execute(line string) error {
	err := s.execute(line)
	if err != nil {
		fmt.Fprintf(s.stderr, "%s: %v\n", s.name, err)
		s.logger.Info("command failed",
			zap.String("line", line),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err))
	}
	return err
}

func (s *Shell) execute(line string) error {
	cl, err := s.tokenizer.Parse(line)
	if err != nil {
		s.lastRet = 2
		return err
	}
	cl = s.expander.Expand(cl)
	if len(cl.Tokens) == 0 {
		return nil
	}

	name, args := cl.Tokens[0], cl.Tokens[1:]
	if b := LookupBuiltin(name); b != NotBuiltin {
		if cl.Background {
			s.logger.Debug("builtin ignores background marker", zap.Stringer("builtin", b))
		}
		err := s.runBuiltin(b, args)
		if err != nil {
			s.lastRet = 1
		} else {
			s.lastRet = 0
		}
		return err
	}

	if cl.Background {
		return s.startJob(name, args, cl.Text)
	}
	return s.runForeground(name, args)
}

func (s *Shell) startJob(name string, args []string, text string) error {
	pid, err := s.launcher.Start(name, args)
	if err != nil {
		s.lastRet = exitStatusFor(err)
		return err
	}

	job := s.Jobs.Register(pid, text)
	s.lastRet = 0
	fmt.Fprintf(s.stdout, "Started background job with PID %d\n", pid)
	s.logger.Info("started background job",
		zap.Int("pid", job.PID),
		zap.String("command", job.Command))
	return nil
}

func (s *Shell) runForeground(name string, args []string) error {
	s.logger.Debug("running", zap.String("command", name), zap.Strings("args", args))

	status, err := s.launcher.Run(name, args)
	if err != nil {
		s.lastRet = exitStatusFor(err)
		return err
	}

	s.lastRet = status
	if status != 0 && s.reportExitStatus {
		fmt.Fprintf(s.stderr, "%s: exit status %d\n", name, status)
	}
	return nil
}

func exitStatusFor(err error) int {
	switch KindOf(err) {
	case KindCommandNotFound:
		return 127
	case KindSpawnFailure:
		return 126
	default:
		return 1
	}
}
