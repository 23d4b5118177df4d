package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	log, level, err := New("debug", true)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	_, _, err = New("loud", false)
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	t.Parallel()

	atomic := zap.NewAtomicLevel()
	require.NoError(t, SetLevel(atomic, "WARN"))
	assert.Equal(t, zapcore.WarnLevel, atomic.Level())

	require.NoError(t, SetLevel(atomic, ""))
	assert.Equal(t, zapcore.InfoLevel, atomic.Level())
}

func TestWatchLevel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("info"), 0o600))

	atomic := zap.NewAtomicLevel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := func() (string, error) {
		b, err := os.ReadFile(path)
		return string(b), err
	}

	done := make(chan error, 1)
	go func() { done <- WatchLevel(ctx, path, atomic, source, zap.NewNop()) }()

	assert.Eventually(t, func() bool {
		// Rewrite until the watcher is registered and picks the change up.
		_ = os.WriteFile(path, []byte("error"), 0o600)
		return atomic.Level() == zapcore.ErrorLevel
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
