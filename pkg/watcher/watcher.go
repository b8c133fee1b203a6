// Package watcher blocks until one of a set of paths is modified.
package watcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/errors"
)

// Backend names.
const (
	BackendInotifywait = "inotifywait"
	BackendFsnotify    = "fsnotify"
)

// Event is the modification that ended a wait.
type Event struct {
	Path string
	Op   string
}

// String renders the event the way inotifywait --format '%w%f %e' does.
func (e Event) String() string {
	return strings.TrimSpace(e.Path + " " + e.Op)
}

// parseEventLine splits "<path> <EVENTS>". Paths may contain spaces, event
// names never do.
func parseEventLine(line string) Event {
	line = strings.TrimRight(line, "\r\n")
	idx := strings.LastIndex(line, " ")
	if idx < 0 {
		return Event{Path: line}
	}
	return Event{Path: line[:idx], Op: line[idx+1:]}
}

// Watcher waits for the first modification of any of paths. Outcomes other
// than Success carry a zero Event.
type Watcher interface {
	Wait(ctx context.Context, paths []string) (Event, command.Outcome)
	Name() string
}

// New returns the watcher for backend. program is the inotifywait executable
// and is ignored by the fsnotify backend.
func New(backend, program string, builder *command.SafeBuilder) (Watcher, error) {
	switch backend {
	case "", BackendInotifywait:
		return NewInotify(program, builder), nil
	case BackendFsnotify:
		return NewNotify(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown watcher backend '%s'", backend)).
			WithDetail("backend", backend)
	}
}
