package command

import (
	"errors"
	"io/fs"
	"os/exec"
)

// Outcome names the result of one external call in the rebuild loop. Exit
// statuses of the dependency lister and the watcher are mapped to these
// instead of being surfaced as errors.
type Outcome int

const (
	// Success means the call did what was asked.
	Success Outcome = iota
	// DepsUnavailable means the dependency listing failed; the watch set is empty.
	DepsUnavailable
	// WatchFailed means the watcher could not be started or exited without an event.
	WatchFailed
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case DepsUnavailable:
		return "deps-unavailable"
	case WatchFailed:
		return "watch-failed"
	default:
		return "unknown"
	}
}

// ExitCode reports the exit status carried by err. ok is false when the
// process never ran or was killed by a signal.
func ExitCode(err error) (code int, ok bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), true
	}
	return -1, false
}

// NotFound reports whether err means the executable could not be started
// because it does not exist.
func NotFound(err error) bool {
	if err == nil {
		return false
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}
