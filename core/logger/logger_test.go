package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_disabled(t *testing.T) {
	logger, err := New("", "debug")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1), "expected a no-op logger")
}

func TestNew_badLevel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "octane.log"), "loud")
	assert.Error(t, err)
}

func TestNewSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "octane.log")
	base, err := New(path, "info")
	require.NoError(t, err)

	logger := NewSession(base)
	logger.Debug("filtered")
	logger.Info("started background job")
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "started background job", entry["msg"])
	assert.NotEmpty(t, entry["session_id"])
}
