package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&buf, false)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	verbose := NewLogger(&buf, true)
	assert.Equal(t, logrus.DebugLevel, verbose.GetLevel())
}

func TestFileHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	hook, err := NewFileHook(path)
	require.NoError(t, err)

	var console bytes.Buffer
	logger := NewLogger(&console, false)
	logger.AddHook(hook)
	logger.WithField("chapter", "5").Warn("page missing")
	require.NoError(t, hook.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "page missing", entry["msg"])
	assert.Equal(t, "5", entry["chapter"])
	assert.Equal(t, "warning", entry["level"])
}
