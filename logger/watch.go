package logger

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// LevelSource returns the current log level, typically by re-reading a config file.
type LevelSource func() (string, error)

// WatchLevel re-applies the log level whenever path is written. It watches the
// parent directory so editors that replace the file are handled. It returns
// when ctx is done.
func WatchLevel(ctx context.Context, path string, atomic zap.AtomicLevel, source LevelSource, log *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			level, err := source()
			if err != nil {
				log.Warn("config reload failed", zap.Error(err))
				continue
			}
			if err := SetLevel(atomic, level); err != nil {
				log.Warn("ignoring log level", zap.Error(err))
				continue
			}
			log.Info("log level changed", zap.String("level", atomic.Level().String()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}
