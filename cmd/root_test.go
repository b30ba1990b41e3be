package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		exitCode = 0
	})

	require.NoError(t, rootCmd.Execute())
	return stdout.String(), stderr.String()
}

func TestRoot_command(t *testing.T) {
	dir := t.TempDir()

	stdout, _ := runRoot(t, "--config", dir, "-c", "calc 6 * 7")

	assert.Equal(t, "42\n", stdout)
	assert.Equal(t, 0, exitCode)
}

func TestRoot_commandExit(t *testing.T) {
	dir := t.TempDir()

	runRoot(t, "--config", dir, "-c", "exit 3")

	assert.Equal(t, 3, exitCode)
}

func TestRoot_commandError(t *testing.T) {
	dir := t.TempDir()

	_, stderr := runRoot(t, "--config", dir, "-c", "kill 99999")

	assert.Contains(t, stderr, "octane: kill: ")
	assert.Equal(t, 1, exitCode)
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "octane")

	_, stderr := runRoot(t, "init", "--config", dir)

	assert.Contains(t, stderr, "Wrote ")
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	_, stderr = runRoot(t, "init", "--config", dir)
	assert.Contains(t, stderr, "already exists")
}

func TestBuiltins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("aliases:\n  gs: git status\n"), 0600))

	stdout, _ := runRoot(t, "builtins", "--config", dir)

	assert.Contains(t, stdout, "builtin:cd\n")
	assert.Contains(t, stdout, "builtin:calc\n")
	assert.Contains(t, stdout, "alias:ll=ls -la\n")
	assert.Contains(t, stdout, "alias:gs=git status\n")
}
