package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/abiosoft/readline"
	"go.uber.org/zap"

	"github.com/josephlewis42/octane/core/config"
	"github.com/josephlewis42/octane/core/shell"
)

func newCompleter(sh *shell.Shell) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, b := range shell.Builtins() {
		items = append(items, readline.PcItem(b.String()))
	}
	for _, name := range sh.Aliases().Names() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// runInteractive reads lines until exit or end of input and returns the exit
// status of the session.
func runInteractive(ctx context.Context, sh *shell.Shell, cfg *config.Configuration, log *zap.Logger) (int, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          sh.Prompt(ctx),
		HistoryFile:     cfg.HistoryPath(),
		AutoComplete:    newCompleter(sh),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           readline.NewCancelableStdin(os.Stdin),
	})
	if err != nil {
		return 1, fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	// Foreground children share the terminal and get ^C themselves, the shell
	// keeps running.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer func() {
		signal.Stop(interrupts)
		close(interrupts)
	}()
	go func() {
		for range interrupts {
			log.Debug("interrupt")
		}
	}()

	for !sh.Quit {
		rl.SetPrompt(sh.Prompt(ctx))
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return 0, nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue // Line abandoned.

		case err != nil:
			return 1, fmt.Errorf("reading input: %w", err)
		}

		_ = sh.Execute(line)
	}

	return sh.ExitCode, nil
}
