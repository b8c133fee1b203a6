package loop

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/grovetools/ninjawatch/logging"
	"github.com/sirupsen/logrus"
)

// DefaultGrace is how long a second interrupt is awaited after the first.
const DefaultGrace = time.Second

// State of the supervisor.
type State int

const (
	Running State = iota
	Grace
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Grace:
		return "GRACE"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Trigger moves the supervisor between states.
type Trigger int

const (
	Interrupt Trigger = iota
	GraceElapsed
)

func (t Trigger) String() string {
	switch t {
	case Interrupt:
		return "interrupt"
	case GraceElapsed:
		return "grace-elapsed"
	default:
		return "unknown"
	}
}

var transitions = map[State]map[Trigger]State{
	Running: {Interrupt: Grace},
	Grace:   {Interrupt: Stopped, GraceElapsed: Running},
}

// Next returns the state reached from s on t. ok is false for a trigger the
// state does not accept.
func Next(s State, t Trigger) (State, bool) {
	next, ok := transitions[s][t]
	return next, ok
}

// Runner is what the supervisor keeps alive.
type Runner interface {
	Run(ctx context.Context) error
}

// Supervisor restarts a Runner on the first interrupt and stops on a second
// one arriving within the grace period.
type Supervisor struct {
	runner       Runner
	interrupts   <-chan os.Signal
	grace        time.Duration
	after        func(time.Duration) <-chan time.Time
	onTransition func(from, to State, t Trigger)
	state        State
	logger       *logrus.Entry
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithGrace sets the grace period.
func WithGrace(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.grace = d
	}
}

// WithTimer replaces time.After for the grace period.
func WithTimer(after func(time.Duration) <-chan time.Time) SupervisorOption {
	return func(s *Supervisor) {
		s.after = after
	}
}

// WithTransitionHook is called after every state change.
func WithTransitionHook(fn func(from, to State, t Trigger)) SupervisorOption {
	return func(s *Supervisor) {
		s.onTransition = fn
	}
}

// NewSupervisor supervises runner. interrupts is usually fed by signal.Notify.
func NewSupervisor(runner Runner, interrupts <-chan os.Signal, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		runner:     runner,
		interrupts: interrupts,
		grace:      DefaultGrace,
		after:      time.After,
		state:      Running,
		logger:     logging.NewLogger("supervisor"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Supervisor) State() State {
	return s.state
}

// Run blocks until the supervisor stops. It returns nil after a double
// interrupt or when ctx is done, and the runner's error if it fails on its own.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		switch s.state {
		case Running:
			if err := s.running(ctx); err != nil {
				return err
			}
		case Grace:
			timer := s.after(s.grace)
			select {
			case <-ctx.Done():
				return nil
			case <-s.interrupts:
				s.logger.Info("Stopping")
				s.fire(Interrupt)
			case <-timer:
				s.logger.Debug("Restarting")
				s.fire(GraceElapsed)
			}
		case Stopped:
			return nil
		}
	}
}

// running starts the runner and waits for it to fail, for ctx, or for an
// interrupt. Only the interrupt leaves the supervisor alive.
func (s *Supervisor) running(ctx context.Context) error {
	iterCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.runner.Run(iterCtx)
	}()

	select {
	case err := <-done:
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			s.state = Stopped
			return nil
		}
		return err
	case <-ctx.Done():
		<-done
		s.state = Stopped
		return nil
	case <-s.interrupts:
		s.logger.Infof("Interrupted, press Ctrl-C again within %s to quit", s.grace)
		cancel()
		<-done
		s.fire(Interrupt)
		return nil
	}
}

func (s *Supervisor) fire(t Trigger) {
	next, ok := Next(s.state, t)
	if !ok {
		return
	}
	from := s.state
	s.state = next
	s.logger.WithFields(logrus.Fields{
		"from":    from.String(),
		"to":      next.String(),
		"trigger": t.String(),
	}).Debug("State transition")
	if s.onTransition != nil {
		s.onTransition(from, next, t)
	}
}
