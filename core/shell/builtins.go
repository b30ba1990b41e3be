package shell

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pborman/getopt/v2"
	"go.uber.org/zap"

	"github.com/josephlewis42/octane/core/calc"
	"github.com/josephlewis42/octane/core/jobs"
)

// Builtin identifies a command implemented by the shell itself.
type Builtin int

const (
	NotBuiltin Builtin = iota
	BuiltinExit
	BuiltinCd
	BuiltinPwd
	BuiltinClear
	BuiltinJobs
	BuiltinKill
	BuiltinCalc
	BuiltinAlias
	BuiltinHelp
)

var builtinInfo = [...]struct {
	name    string
	summary string
}{
	NotBuiltin:   {},
	BuiltinExit:  {"exit", "exit [n]: leave the shell with status n"},
	BuiltinCd:    {"cd", "cd [dir]: change the working directory, - for the previous one"},
	BuiltinPwd:   {"pwd", "pwd: print the working directory"},
	BuiltinClear: {"clear", "clear: clear the terminal screen"},
	BuiltinJobs:  {"jobs", "jobs [-l] [-p]: list running background jobs"},
	BuiltinKill:  {"kill", "kill <pid>: terminate a background job"},
	BuiltinCalc:  {"calc", "calc <expression>: evaluate arithmetic"},
	BuiltinAlias: {"alias", "alias: list aliases"},
	BuiltinHelp:  {"help", "help: show this list"},
}

// LookupBuiltin returns the builtin called name, NotBuiltin if there's none.
func LookupBuiltin(name string) Builtin {
	for _, b := range Builtins() {
		if builtinInfo[b].name == name {
			return b
		}
	}
	return NotBuiltin
}

// Builtins returns every builtin in help order.
func Builtins() []Builtin {
	out := make([]Builtin, 0, len(builtinInfo)-1)
	for b := BuiltinExit; int(b) < len(builtinInfo); b++ {
		out = append(out, b)
	}
	return out
}

func (b Builtin) String() string {
	if b <= NotBuiltin || int(b) >= len(builtinInfo) {
		return "Builtin(" + strconv.Itoa(int(b)) + ")"
	}
	return builtinInfo[b].name
}

// Summary is the one line usage shown by help.
func (b Builtin) Summary() string {
	if b <= NotBuiltin || int(b) >= len(builtinInfo) {
		return ""
	}
	return builtinInfo[b].summary
}

func (s *Shell) runBuiltin(b Builtin, args []string) error {
	switch b {
	case BuiltinExit:
		return s.exit(args)
	case BuiltinCd:
		return s.cd(args)
	case BuiltinPwd:
		return s.pwd(args)
	case BuiltinClear:
		return s.clear(args)
	case BuiltinJobs:
		return s.jobs(args)
	case BuiltinKill:
		return s.kill(args)
	case BuiltinCalc:
		return s.calc(args)
	case BuiltinAlias:
		return s.alias(args)
	case BuiltinHelp:
		return s.help(args)
	default:
		return fmt.Errorf("%v: %w: not a builtin", b, ErrInvalidArgument)
	}
}

// exit always ends the session; a bad status is reported and replaced by 0.
func (s *Shell) exit(args []string) error {
	s.Quit = true
	s.ExitCode = 0

	if len(args) == 0 {
		return nil
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("exit: %s: %w: numeric argument required", args[0], ErrInvalidArgument)
	}
	s.ExitCode = code
	return nil
}

func (s *Shell) cd(args []string) error {
	var target string
	switch len(args) {
	case 0:
		target = "~"
	case 1:
		target = args[0]
	default:
		return fmt.Errorf("cd: %w: too many arguments", ErrInvalidArgument)
	}

	printDir := false
	if target == "-" {
		target = s.OS.Getenv(EnvOldPWD)
		if target == "" {
			return fmt.Errorf("cd: %w: OLDPWD not set", ErrInvalidArgument)
		}
		printDir = true
	}

	if target == "~" || strings.HasPrefix(target, "~/") {
		home := s.home()
		if home == "" {
			return fmt.Errorf("cd: %w: HOME not set", ErrInvalidArgument)
		}
		target = filepath.Join(home, strings.TrimPrefix(target, "~"))
	}

	prev, _ := s.OS.Getwd()
	if !filepath.IsAbs(target) && prev != "" {
		target = filepath.Join(prev, target)
	}

	info, err := s.OS.Stat(target)
	switch {
	case err != nil:
		return fmt.Errorf("cd: %s: %w", target, ErrDirectoryNotFound)
	case !info.IsDir():
		return fmt.Errorf("cd: %s: %w: not a directory", target, ErrDirectoryNotFound)
	}

	if err := s.OS.Chdir(target); err != nil {
		return fmt.Errorf("cd: %s: %w: %v", target, ErrInvalidArgument, err)
	}

	wd, err := s.OS.Getwd()
	if err != nil {
		wd = target
	}
	if prev != "" {
		_ = s.OS.Setenv(EnvOldPWD, prev)
	}
	_ = s.OS.Setenv(EnvPWD, wd)

	if printDir {
		fmt.Fprintln(s.stdout, wd)
	}
	return nil
}

func (s *Shell) pwd(args []string) error {
	wd, err := s.OS.Getwd()
	if err != nil {
		return fmt.Errorf("pwd: %v", err)
	}
	fmt.Fprintln(s.stdout, wd)
	return nil
}

// clearScreen homes the cursor and erases the display.
const clearScreen = "\033[H\033[2J"

func (s *Shell) clear(args []string) error {
	if s.interactive {
		fmt.Fprint(s.stdout, clearScreen)
	}
	return nil
}

func (s *Shell) jobs(args []string) error {
	opts := getopt.New()
	long := opts.Bool('l', "show start times")
	pidsOnly := opts.Bool('p', "show process ids only")

	if err := opts.Getopt(append([]string{"jobs"}, args...), nil); err != nil {
		return fmt.Errorf("jobs: %w: %v", ErrInvalidArgument, err)
	}
	if rest := opts.Args(); len(rest) > 0 {
		return fmt.Errorf("jobs: %w: unexpected argument %q", ErrInvalidArgument, rest[0])
	}

	for _, done := range s.Jobs.Sweep() {
		s.logger.Info("background job finished",
			zap.Int("pid", done.PID),
			zap.String("command", done.Command))
	}

	count := 0
	for job := range s.Jobs.List() {
		count++
		switch {
		case *pidsOnly:
			fmt.Fprintln(s.stdout, job.PID)
		case *long:
			fmt.Fprintf(s.stdout, "[%d] %d  Running  %s  %s\n", count, job.PID, job.Started.Format(time.DateTime), job.Command)
		default:
			fmt.Fprintf(s.stdout, "[%d] %d  Running  %s\n", count, job.PID, job.Command)
		}
	}

	if count == 0 && !*pidsOnly {
		fmt.Fprintln(s.stdout, "No background jobs")
	}
	return nil
}

func (s *Shell) kill(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("kill: %w: usage: kill <pid>", ErrInvalidArgument)
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil || pid <= 0 {
		return fmt.Errorf("kill: %s: %w: invalid pid", args[0], ErrInvalidArgument)
	}

	err = s.Jobs.Kill(pid)
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		return fmt.Errorf("kill: %w", err)
	case err != nil:
		// The job is gone from the table either way.
		s.logger.Warn("terminate failed", zap.Int("pid", pid), zap.Error(err))
		return fmt.Errorf("kill: %v", err)
	}

	fmt.Fprintf(s.stdout, "Killed process %d\n", pid)
	s.logger.Info("killed background job", zap.Int("pid", pid))
	return nil
}

func (s *Shell) calc(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("calc: %w: usage: calc <expression>", ErrInvalidArgument)
	}
	value, err := calc.Eval(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("calc: %w", err)
	}
	fmt.Fprintln(s.stdout, calc.Format(value))
	return nil
}

func (s *Shell) alias(args []string) error {
	names := args
	if len(names) == 0 {
		names = s.aliases.Names()
	}
	var missing []string
	for _, name := range names {
		expansion, ok := s.aliases.Lookup(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		fmt.Fprintf(s.stdout, "alias %s='%s'\n", name, expansion)
	}
	if len(missing) > 0 {
		return fmt.Errorf("alias: %s: %w: not found", strings.Join(missing, ", "), ErrInvalidArgument)
	}
	return nil
}

func (s *Shell) help(args []string) error {
	writeHelp(s.stdout)
	return nil
}

func writeHelp(w io.Writer) {
	fmt.Fprintln(w, "These shell commands are defined internally.")
	fmt.Fprintln(w, "Anything else is run as a program, end a line with & to run it in the background.")
	fmt.Fprintln(w)
	for _, b := range Builtins() {
		fmt.Fprintf(w, "  %s\n", b.Summary())
	}
}
