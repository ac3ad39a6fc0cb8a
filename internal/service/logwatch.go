package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"temp_monitor/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// LogWatcher rebuilds the chart when the log file is replaced, removed or
// truncated by something other than an append.
type LogWatcher struct {
	path    string
	rebuild func(ctx context.Context) error
	w       *fsnotify.Watcher
	size    int64
	log     *logger.Logger
}

// NewLogWatcher watches the directory holding path.
func NewLogWatcher(path string, rebuild func(ctx context.Context) error, log *logger.Logger) (*LogWatcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	lw := &LogWatcher{
		path:    filepath.Clean(path),
		rebuild: rebuild,
		w:       w,
		log:     log.Component("logwatch"),
	}
	lw.size = lw.currentSize()
	return lw, nil
}

// Run handles events until ctx is canceled, then closes the watcher.
func (lw *LogWatcher) Run(ctx context.Context) {
	defer func() { _ = lw.w.Close() }()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-lw.w.Events:
			if !ok {
				return
			}
			if !lw.needsRebuild(ev) {
				continue
			}
			if err := lw.rebuild(ctx); err != nil {
				lw.log.Warnw("log_rebuild_failed", "event", ev.Op.String(), "err", err)
				continue
			}
			lw.log.Infow("log_rebuilt", "event", ev.Op.String())
		case err, ok := <-lw.w.Errors:
			if !ok {
				return
			}
			lw.log.Warnw("log_watch_error", "err", err)
		}
	}
}

// needsRebuild reports whether ev changed the log other than by growing it.
func (lw *LogWatcher) needsRebuild(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != lw.path {
		return false
	}
	prev := lw.size
	lw.size = lw.currentSize()

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename), ev.Has(fsnotify.Create):
		return true
	case ev.Has(fsnotify.Write):
		return lw.size < prev
	default:
		return false
	}
}

func (lw *LogWatcher) currentSize() int64 {
	st, err := os.Stat(lw.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			lw.log.Debugw("log_stat_failed", "err", err)
		}
		return 0
	}
	return st.Size()
}
