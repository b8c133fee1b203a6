package watcher

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/logging"
	"github.com/sirupsen/logrus"
)

// Notify watches in-process through fsnotify. It needs no external tool.
type Notify struct {
	logger *logrus.Entry
}

// NewNotify creates an fsnotify-backed watcher.
func NewNotify() *Notify {
	return &Notify{logger: logging.NewLogger("watcher")}
}

// Name identifies the backend.
func (w *Notify) Name() string {
	return BackendFsnotify
}

// Wait registers every path and returns on the first write. Like
// inotifywait, a path that cannot be watched fails the whole wait.
func (w *Notify) Wait(ctx context.Context, paths []string) (Event, command.Outcome) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.WithError(err).Warn("Failed to create fsnotify watcher")
		return Event{}, command.WatchFailed
	}
	defer fw.Close()

	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			w.logger.WithError(err).WithField("path", p).Debug("Failed to watch path")
			return Event{}, command.WatchFailed
		}
	}
	w.logger.WithField("paths", len(paths)).Debug("Waiting for modification")

	for {
		select {
		case <-ctx.Done():
			return Event{}, command.WatchFailed
		case event, ok := <-fw.Events:
			if !ok {
				return Event{}, command.WatchFailed
			}
			if event.Has(fsnotify.Write) {
				return Event{Path: event.Name, Op: "MODIFY"}, command.Success
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return Event{}, command.WatchFailed
			}
			w.logger.WithError(err).Debug("fsnotify error")
			return Event{}, command.WatchFailed
		}
	}
}
