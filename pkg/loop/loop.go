// Package loop rebuilds, collects the build's inputs and waits for one of
// them to change, forever.
package loop

import (
	"context"
	"time"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/logging"
	"github.com/grovetools/ninjawatch/pkg/deps"
	"github.com/grovetools/ninjawatch/pkg/watcher"
	"github.com/sirupsen/logrus"
)

// Default delays.
const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultRetry    = 5 * time.Second
)

// Builder runs the user's build.
type Builder interface {
	Build(ctx context.Context, args []string) error
}

// Collector computes the watch set after a build.
type Collector interface {
	Collect(ctx context.Context) (deps.WatchSet, command.Outcome, error)
}

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Result describes one iteration.
type Result struct {
	// Outcome is DepsUnavailable or WatchFailed on the fallback path.
	Outcome command.Outcome
	// Targets is the number of watched paths. Zero also means fallback.
	Targets int
	// Event is what woke the watcher, on Success.
	Event watcher.Event
}

// Fallback reports whether the iteration ended in the retry delay.
func (r Result) Fallback() bool {
	return r.Outcome != command.Success || r.Targets == 0
}

// Loop is the rebuild/watch cycle.
type Loop struct {
	builder   Builder
	collector Collector
	watcher   watcher.Watcher
	args      []string
	debounce  time.Duration
	retry     time.Duration
	sleep     SleepFunc
	logger    *logrus.Entry
}

// Option configures a Loop.
type Option func(*Loop)

// WithDelays overrides the debounce and retry delays.
func WithDelays(debounce, retry time.Duration) Option {
	return func(l *Loop) {
		l.debounce = debounce
		l.retry = retry
	}
}

// WithSleep replaces the sleep between iterations.
func WithSleep(sleep SleepFunc) Option {
	return func(l *Loop) {
		l.sleep = sleep
	}
}

// New creates a Loop that passes args to every build unchanged.
func New(builder Builder, collector Collector, w watcher.Watcher, args []string, opts ...Option) *Loop {
	l := &Loop{
		builder:   builder,
		collector: collector,
		watcher:   w,
		args:      args,
		debounce:  DefaultDebounce,
		retry:     DefaultRetry,
		sleep:     Sleep,
		logger:    logging.NewLogger("loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run repeats Step until it fails. It only returns with an error: ctx.Err()
// on cancellation, or a setup error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if _, err := l.Step(ctx); err != nil {
			return err
		}
	}
}

// Step rebuilds, collects the watch set, then either waits for a change
// and sleeps the debounce delay, or sleeps the retry delay.
func (l *Loop) Step(ctx context.Context) (Result, error) {
	l.logger.Info("Rebuilding")
	if err := l.builder.Build(ctx, l.args); err != nil {
		return Result{}, err
	}

	ws, outcome, err := l.collector.Collect(ctx)
	if err != nil {
		return Result{}, err
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	result := Result{Outcome: outcome, Targets: len(ws.Files) + len(ws.Dirs)}
	if outcome != command.Success || ws.Empty() {
		l.logger.WithField("outcome", outcome.String()).
			Errorf("No files to watch, is the build directory configured? Retrying in %s", l.retry)
		return result, l.sleep(ctx, l.retry)
	}

	l.logger.WithFields(logrus.Fields{
		"files": len(ws.Files),
		"dirs":  len(ws.Dirs),
	}).Debug("Watching for changes")

	event, outcome := l.watcher.Wait(ctx, ws.Paths())
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	result.Outcome = outcome
	if outcome != command.Success {
		l.logger.WithField("watcher", l.watcher.Name()).
			Warnf("Watcher failed, retrying in %s", l.retry)
		return result, l.sleep(ctx, l.retry)
	}

	result.Event = event
	l.logger.Info(event.String())
	return result, l.sleep(ctx, l.debounce)
}
