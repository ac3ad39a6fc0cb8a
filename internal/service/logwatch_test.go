package service

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"temp_monitor/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWatcher_NeedsRebuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templog.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,sensor_id,temperature\na,b,c\n"), 0o644))

	lw, err := NewLogWatcher(path, func(context.Context) error { return nil }, logger.Nop())
	require.NoError(t, err)
	defer lw.w.Close()

	// growth is a normal append
	require.NoError(t, os.WriteFile(path, []byte("timestamp,sensor_id,temperature\na,b,c\nd,e,f\n"), 0o644))
	assert.False(t, lw.needsRebuild(fsnotify.Event{Name: path, Op: fsnotify.Write}))

	// shrink means someone truncated it
	require.NoError(t, os.WriteFile(path, []byte("timestamp,sensor_id,temperature\n"), 0o644))
	assert.True(t, lw.needsRebuild(fsnotify.Event{Name: path, Op: fsnotify.Write}))

	assert.True(t, lw.needsRebuild(fsnotify.Event{Name: path, Op: fsnotify.Remove}))
	assert.True(t, lw.needsRebuild(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.False(t, lw.needsRebuild(fsnotify.Event{Name: filepath.Join(dir, "other.csv"), Op: fsnotify.Remove}))
	assert.False(t, lw.needsRebuild(fsnotify.Event{Name: path, Op: fsnotify.Chmod}))
}

func TestLogWatcher_RunRebuildsOnRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templog.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,sensor_id,temperature\n"), 0o644))

	var rebuilds atomic.Int32
	lw, err := NewLogWatcher(path, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	}, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		lw.Run(ctx)
		close(done)
	}()

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return rebuilds.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
