package watcher

import (
	"bufio"
	"bytes"
	"context"
	"os"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/logging"
	"github.com/sirupsen/logrus"
)

// EventFormat is passed to inotifywait --format.
const EventFormat = "%w%f %e"

// Inotify runs inotifywait once per wait.
type Inotify struct {
	program string
	builder *command.SafeBuilder
	logger  *logrus.Entry
}

// NewInotify creates a watcher backed by the inotifywait executable program.
func NewInotify(program string, builder *command.SafeBuilder) *Inotify {
	if program == "" {
		program = BackendInotifywait
	}
	return &Inotify{
		program: program,
		builder: builder,
		logger:  logging.NewLogger("watcher"),
	}
}

// Name returns the executable in use.
func (w *Inotify) Name() string {
	return w.program
}

// Args returns the inotifywait argument list for paths.
func Args(paths []string) []string {
	args := make([]string, 0, len(paths)+5)
	args = append(args, "-q", "--format", EventFormat, "-e", "modify")
	return append(args, paths...)
}

// Wait runs "inotifywait -q --format '%w%f %e' -e modify <paths>" and
// reports the line it prints. A non-zero exit, a missing executable or an
// empty report is WatchFailed.
func (w *Inotify) Wait(ctx context.Context, paths []string) (Event, command.Outcome) {
	for _, p := range paths {
		if err := w.builder.Validate("watchPath", p); err != nil {
			w.logger.WithError(err).Warn("Refusing to watch path")
			return Event{}, command.WatchFailed
		}
	}

	cmd, err := w.builder.Build(ctx, w.program, Args(paths)...)
	if err != nil {
		w.logger.WithError(err).Debug("Invalid watcher command")
		return Event{}, command.WatchFailed
	}

	w.logger.WithField("paths", len(paths)).Debug("Waiting for modification")
	out, err := cmd.Output(os.Stderr)
	if err != nil {
		if command.NotFound(err) {
			w.logger.WithField("program", w.program).Debug("Watcher executable not found")
		} else if code, ok := command.ExitCode(err); ok {
			w.logger.WithField("exit_code", code).Debug("Watcher exited with failure")
		}
		return Event{}, command.WatchFailed
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			return parseEventLine(line), command.Success
		}
	}
	return Event{}, command.WatchFailed
}
