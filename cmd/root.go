package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/josephlewis42/octane/core/config"
	"github.com/josephlewis42/octane/core/logger"
	"github.com/josephlewis42/octane/core/repostatus"
	"github.com/josephlewis42/octane/core/shell"
	"github.com/josephlewis42/octane/core/vos"
)

var (
	cfgDir  string
	command string
	verbose bool

	// exitCode is the status the process ends with once the shell returns.
	exitCode int
)

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".octane"
	}
	return filepath.Join(home, ".octane")
}

// loadConfig reads the configuration, falling back to the builtin one when
// none has been initialized.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configuration, err := config.Load(afero.NewOsFs(), filepath.Join(cfgDir, config.ConfigurationName))

	if errors.Is(err, fs.ErrNotExist) {
		if cmd.Flags().Changed("config") {
			fmt.Fprintf(cmd.ErrOrStderr(), "No configuration in %s, using defaults: did you run init?\n", cfgDir)
		}
		return config.Default(), nil
	}

	return configuration, err
}

func newLogger(cfg *config.Configuration) (*zap.Logger, error) {
	path, level := cfg.LogPath(), cfg.LogLevel
	if verbose {
		level = "debug"
		if path == "" {
			path = "stderr"
		}
	}

	base, err := logger.New(path, level)
	if err != nil {
		return nil, err
	}
	return logger.NewSession(base), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newShell wires a shell on the host OS from the configuration.
func newShell(cmd *cobra.Command, cfg *config.Configuration, log *zap.Logger) (*shell.Shell, error) {
	sig, err := vos.ParseSignal(cfg.Jobs.KillSignal)
	if err != nil {
		return nil, fmt.Errorf("jobs.kill_signal: %w", err)
	}
	nativeOS := vos.NewNativeOS()
	nativeOS.TermSignal = sig

	opts := shell.Options{
		Name:    cfg.Prompt.Name,
		Stdin:   cmd.InOrStdin(),
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Aliases: cfg.Aliases,
		Tokenizer: shell.Tokenizer{
			Mode:               shell.TokenizerMode(cfg.Tokenizer.Mode),
			AttachedBackground: cfg.Tokenizer.AttachedBackground,
		},
		Prompt: shell.PromptOptions{
			Color:          shell.ColorMode(cfg.Prompt.Color),
			AbbreviateHome: cfg.Prompt.AbbreviateHome,
		},
		Interactive:      isTerminal(cmd.OutOrStdout()),
		ReportExitStatus: cfg.ReportExitStatus,
		Logger:           log,
	}
	if cfg.Prompt.RepoStatus {
		provider := repostatus.NewProvider()
		provider.IncludeUntracked = cfg.Prompt.UntrackedDirty
		opts.Prompt.Status = provider
	}

	return shell.New(nativeOS, opts), nil
}

// rootCmd runs the shell, interactively unless a command is given.
var rootCmd = &cobra.Command{
	Use:   "octane",
	Short: "An interactive command shell",
	Long: `An interactive command shell with background jobs, aliases,
a calculator and a repository aware prompt.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		sh, err := newShell(cmd, cfg, log)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("command") {
			_ = sh.Execute(command)
			exitCode = sh.LastStatus()
			if sh.Quit {
				exitCode = sh.ExitCode
			}
			return nil
		}

		log.Info("session started", zap.String("config", cfg.Dir()))
		exitCode, err = runInteractive(cmd.Context(), sh, cfg, log)
		log.Info("session ended", zap.Int("exit_code", exitCode))
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", defaultConfigDir(), "configuration directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log debug output, to stderr if no log file is configured")
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "run a single command line and exit")
}
