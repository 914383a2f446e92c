package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/dynamic-activities/internal/config"
	"github.com/rpggio/dynamic-activities/internal/platform"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	require.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestDeviceConfig(t *testing.T) {
	p := config.Default().Platform
	p.Version = "17.1"
	p.MaxGlobal = 3

	dev := deviceConfig(p)
	require.Equal(t, platform.OSiOS, dev.OS)
	require.Equal(t, platform.Version{Major: 17, Minor: 1}, dev.Version)
	require.Equal(t, 3, dev.MaxGlobal)
	require.True(t, dev.ActivitiesEnabled)
}

func TestEnsureDBDir(t *testing.T) {
	require.NoError(t, ensureDBDir(":memory:"))

	path := filepath.Join(t.TempDir(), "nested", "dir", "dynact.db")
	require.NoError(t, ensureDBDir(path))
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestLogFileWriter_Truncates(t *testing.T) {
	oldMax, oldKeep := maxLogSizeBytes, keepLogSizeBytes
	maxLogSizeBytes, keepLogSizeBytes = 64, 32
	t.Cleanup(func() { maxLogSizeBytes, keepLogSizeBytes = oldMax, oldKeep })

	path := filepath.Join(t.TempDir(), "logs", "server.log")
	w, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer file.Close()

	for i := 0; i < 10; i++ {
		_, err := w.Write([]byte(strings.Repeat("x", 9) + "\n"))
		require.NoError(t, err)
	}
	_, err = w.Write([]byte("last line\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.LessOrEqual(t, int64(len(data)), maxLogSizeBytes)
	require.True(t, strings.HasSuffix(string(data), "last line\n"))
}
