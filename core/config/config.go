package config

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const ConfigurationName = "config.yaml"

type Configuration struct {
	configurationDir string

	Prompt    Prompt    `json:"prompt"`
	Tokenizer Tokenizer `json:"tokenizer"`
	Jobs      Jobs      `json:"jobs"`

	ReportExitStatus bool `json:"report_exit_status"`

	HistoryFile string `json:"history_file"`
	LogFile     string `json:"log_file"`
	LogLevel    string `json:"log_level" validate:"oneof=debug info warn error"`

	Aliases map[string]string `json:"aliases" validate:"dive,keys,required,endkeys,required"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}

	for name := range c.Aliases {
		if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
			return fmt.Errorf("alias %q: names can't contain whitespace", name)
		}
	}
	return nil
}

type Prompt struct {
	Name           string `json:"name" validate:"required"`
	Color          string `json:"color" validate:"oneof=always auto never"`
	AbbreviateHome bool   `json:"abbreviate_home"`
	RepoStatus     bool   `json:"repo_status"`
	UntrackedDirty bool   `json:"untracked_dirty"`
}

type Tokenizer struct {
	Mode               string `json:"mode" validate:"oneof=fields shlex"`
	AttachedBackground bool   `json:"attached_background"`
}

type Jobs struct {
	KillSignal string `json:"kill_signal" validate:"required"`
}

// Dir returns the directory the configuration was loaded from, empty for the
// builtin default.
func (c *Configuration) Dir() string {
	return c.configurationDir
}

// ResolvePath resolves a configured path against the configuration directory.
// Empty paths stay empty.
func (c *Configuration) ResolvePath(path string) string {
	switch {
	case path == "":
		return ""
	case filepath.IsAbs(path), c.configurationDir == "":
		return path
	default:
		return filepath.Join(c.configurationDir, path)
	}
}

// HistoryPath returns the resolved history file or empty if history is off.
func (c *Configuration) HistoryPath() string {
	return c.ResolvePath(c.HistoryFile)
}

// LogPath returns the resolved diagnostic log or empty if logging is off.
func (c *Configuration) LogPath() string {
	return c.ResolvePath(c.LogFile)
}

// Default returns the builtin configuration.
func Default() *Configuration {
	return defaultConfig()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
