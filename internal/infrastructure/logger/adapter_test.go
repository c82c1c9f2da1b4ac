package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewWithCore(core, nil)

	child := log.WithField("run", "r-1").WithFields(map[string]any{"site": "greenhouse"})
	child.Info("Field filled", "id", "email", "attempt", 1)
	log.Debug("plain")

	entries := logs.All()
	require.Len(t, entries, 2)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "Field filled", entries[0].Message)
	assert.Equal(t, "r-1", ctx["run"])
	assert.Equal(t, "greenhouse", ctx["site"])
	assert.Equal(t, "email", ctx["id"])
	assert.Equal(t, int64(1), ctx["attempt"])

	assert.Empty(t, entries[1].ContextMap(), "parent is not affected by children")
}

func TestLoggerAdapter_Level(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLoggerAdapter(Config{Level: "warn", Console: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Close())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerAdapter_File(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig("apply https://example.com/jobs/1")
	cfg.Dir = dir

	log, err := NewLoggerAdapter(cfg)
	require.NoError(t, err)
	log.Error("Submission failed", "error", "boom")
	require.NoError(t, log.Close())

	files, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), "apply_https___example_com_jobs_1")

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Submission failed", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "run", sanitize("///"))
	assert.Equal(t, "a_b-c", sanitize("a b-c"))
	assert.Len(t, sanitize(string(bytes.Repeat([]byte("x"), 100))), 60)
}
