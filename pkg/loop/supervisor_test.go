package loop

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/errors"
	"github.com/grovetools/ninjawatch/pkg/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from   State
		on     Trigger
		want   State
		wantOK bool
	}{
		{Running, Interrupt, Grace, true},
		{Grace, Interrupt, Stopped, true},
		{Grace, GraceElapsed, Running, true},
		{Running, GraceElapsed, Running, false},
		{Stopped, Interrupt, Running, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.on.String(), func(t *testing.T) {
			got, ok := Next(tt.from, tt.on)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// blockingRunner runs until its context is cancelled and announces every start.
type blockingRunner struct {
	started chan int
	mu      sync.Mutex
	runs    int
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan int, 8)}
}

func (r *blockingRunner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.runs++
	n := r.runs
	r.mu.Unlock()

	r.started <- n
	<-ctx.Done()
	return ctx.Err()
}

type failingRunner struct{ err error }

func (r failingRunner) Run(context.Context) error { return r.err }

type builderFunc func()

func (f builderFunc) Build(context.Context, []string) error {
	f()
	return nil
}

// blockingWatcher never sees a change.
type blockingWatcher struct{}

func (blockingWatcher) Wait(ctx context.Context, _ []string) (watcher.Event, command.Outcome) {
	<-ctx.Done()
	return watcher.Event{}, command.WatchFailed
}

func (blockingWatcher) Name() string { return "blocking" }

type transition struct {
	from, to State
	on       Trigger
}

type supervisorHarness struct {
	interrupts chan os.Signal
	grace      chan time.Time
	mu         sync.Mutex
	seen       []transition
	graceAsked []time.Duration
}

func newSupervisorHarness() *supervisorHarness {
	return &supervisorHarness{
		interrupts: make(chan os.Signal, 2),
		grace:      make(chan time.Time, 1),
	}
}

func (h *supervisorHarness) supervisor(r Runner) *Supervisor {
	return NewSupervisor(r, h.interrupts,
		WithGrace(250*time.Millisecond),
		WithTimer(func(d time.Duration) <-chan time.Time {
			h.mu.Lock()
			h.graceAsked = append(h.graceAsked, d)
			h.mu.Unlock()
			return h.grace
		}),
		WithTransitionHook(func(from, to State, on Trigger) {
			h.mu.Lock()
			h.seen = append(h.seen, transition{from, to, on})
			h.mu.Unlock()
		}),
	)
}

func runAsync(s *Supervisor) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	return done
}

func waitStart(t *testing.T, r *blockingRunner) int {
	t.Helper()
	select {
	case n := <-r.started:
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not start")
		return 0
	}
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
		return nil
	}
}

func TestSupervisor_DoubleInterruptStops(t *testing.T) {
	h := newSupervisorHarness()
	r := newBlockingRunner()
	s := h.supervisor(r)
	done := runAsync(s)

	waitStart(t, r)
	h.interrupts <- os.Interrupt
	h.interrupts <- os.Interrupt

	require.NoError(t, waitDone(t, done))
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, 1, r.runs)
	assert.Equal(t, []transition{
		{Running, Grace, Interrupt},
		{Grace, Stopped, Interrupt},
	}, h.seen)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, h.graceAsked)
}

func TestSupervisor_RestartsAfterGrace(t *testing.T) {
	h := newSupervisorHarness()
	r := newBlockingRunner()
	done := runAsync(h.supervisor(r))

	assert.Equal(t, 1, waitStart(t, r))
	h.interrupts <- os.Interrupt
	h.grace <- time.Now()

	assert.Equal(t, 2, waitStart(t, r))
	h.interrupts <- os.Interrupt
	h.interrupts <- os.Interrupt

	require.NoError(t, waitDone(t, done))
	assert.Equal(t, []transition{
		{Running, Grace, Interrupt},
		{Grace, Running, GraceElapsed},
		{Running, Grace, Interrupt},
		{Grace, Stopped, Interrupt},
	}, h.seen)
}

func TestSupervisor_RunnerError(t *testing.T) {
	h := newSupervisorHarness()
	want := errors.DescriptorNotFound("/build/build.ninja", os.ErrNotExist)

	err := h.supervisor(failingRunner{err: want}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDescriptorNotFound))
	assert.Empty(t, h.seen)
}

func TestSupervisor_ContextDone(t *testing.T) {
	h := newSupervisorHarness()
	r := newBlockingRunner()
	s := h.supervisor(r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitStart(t, r)
	cancel()

	require.NoError(t, waitDone(t, done))
	assert.Equal(t, Stopped, s.State())
	assert.Empty(t, h.seen)
}

func TestSupervisor_RestartsRealLoop(t *testing.T) {
	h := &harness{
		collects: []collectResult{{ws: sampleSet}},
	}
	builds := make(chan struct{}, 16)
	l := New(builderFunc(func() { builds <- struct{}{} }), h, blockingWatcher{}, nil)

	sh := newSupervisorHarness()
	done := runAsync(sh.supervisor(l))

	<-builds
	sh.interrupts <- os.Interrupt
	sh.grace <- time.Now()
	select {
	case <-builds:
	case <-time.After(5 * time.Second):
		t.Fatal("loop was not restarted")
	}
	sh.interrupts <- os.Interrupt
	sh.interrupts <- os.Interrupt
	require.NoError(t, waitDone(t, done))
}
