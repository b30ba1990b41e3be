package config

import (
	"bytes"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	osFs := afero.NewOsFs()
	if _, err := Initialize(osFs, tempDir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(osFs, tempDir)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, tempDir, cfg.Dir())
	assert.Equal(t, Default().Prompt, cfg.Prompt)

	t.Run("load by file path", func(t *testing.T) {
		cfg, err := Load(osFs, filepath.Join(tempDir, ConfigurationName))
		assert.Nil(t, err)
		assert.Equal(t, tempDir, cfg.Dir())
	})

	t.Run("existing config is kept", func(t *testing.T) {
		var logs bytes.Buffer
		assert.Nil(t, afero.WriteFile(osFs, filepath.Join(tempDir, ConfigurationName), []byte("log_level: debug\n"), 0600))

		cfg, err := Initialize(osFs, tempDir, log.New(&logs, "", 0))
		assert.Nil(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Contains(t, logs.String(), "Skipping")
	})
}

func TestLoad(t *testing.T) {
	memFs := afero.NewMemMapFs()
	write := func(content string) {
		t.Helper()
		assert.Nil(t, afero.WriteFile(memFs, "/cfg/"+ConfigurationName, []byte(content), 0600))
	}

	t.Run("missing", func(t *testing.T) {
		_, err := Load(memFs, "/nowhere")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		write("prompt:\n  name: rocket\naliases:\n  gs: git status\n")

		cfg, err := Load(memFs, "/cfg")
		assert.Nil(t, err)
		assert.Equal(t, "rocket", cfg.Prompt.Name)
		assert.Equal(t, "auto", cfg.Prompt.Color)
		assert.True(t, cfg.Prompt.RepoStatus)
		assert.Equal(t, map[string]string{"gs": "git status"}, cfg.Aliases)
	})

	t.Run("unknown field", func(t *testing.T) {
		write("promt:\n  name: typo\n")

		_, err := Load(memFs, "/cfg")
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		write("tokenizer:\n  mode: bash\n")

		_, err := Load(memFs, "/cfg")
		assert.ErrorContains(t, err, "mode")
	})
}
