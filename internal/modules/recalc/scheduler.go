// README: Recalculation scheduler: debounces selection edits, recomputes villa edits at once, and holds off while a saved quote is being loaded.
package recalc

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"villaquote/internal/modules/pricing"
)

// DefaultDelay is the quiet period after the last non-villa edit.
const DefaultDelay = 300 * time.Millisecond

var ErrStopped = errors.New("scheduler stopped")

type State string

const (
	StateIdle          State = "idle"
	StateLoading       State = "loading"
	StateFieldsApplied State = "fields_applied"
	StateSettled       State = "settled"
)

// Suppressed reports whether calculations are held back in this state.
func (s State) Suppressed() bool {
	return s == StateLoading || s == StateFieldsApplied
}

type Calculator interface {
	Estimate(ctx context.Context, req pricing.Request) pricing.Breakdown
}

// TimerFunc arms a one-shot timer. stop cancels it if it has not fired.
type TimerFunc func(d time.Duration) (c <-chan time.Time, stop func() bool)

type Result struct {
	Breakdown pricing.Breakdown
	// Settled marks the calculation that closes a load.
	Settled bool
}

type Option func(*Scheduler)

func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.delay = d }
}

func WithTimer(fn TimerFunc) Option {
	return func(s *Scheduler) { s.newTimer = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

type eventKind int

const (
	eventChange eventKind = iota
	eventBeginLoad
	eventEndLoad
)

type event struct {
	kind      eventKind
	component pricing.Component
	req       pricing.Request
}

// Scheduler owns the current selection set. All of its state is touched only
// by the Run goroutine; callers talk to it through channels.
type Scheduler struct {
	calc     Calculator
	delay    time.Duration
	newTimer TimerFunc
	logger   *zap.Logger

	events  chan event
	settle  chan struct{}
	results chan Result
	done    chan struct{}
	state   atomic.Value

	// loop-owned
	req       pricing.Request
	pending   <-chan time.Time
	stopTimer func() bool
}

func New(calc Calculator, opts ...Option) *Scheduler {
	s := &Scheduler{
		calc:     calc,
		delay:    DefaultDelay,
		newTimer: realTimer,
		logger:   zap.NewNop(),
		events:   make(chan event, 64),
		settle:   make(chan struct{}, 1),
		results:  make(chan Result, 16),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(StateIdle)
	return s
}

func realTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Results delivers every calculation. It is closed when Run returns.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

func (s *Scheduler) State() State {
	return s.state.Load().(State)
}

// Change records the full selection set after an edit to component.
func (s *Scheduler) Change(component pricing.Component, req pricing.Request) error {
	return s.send(event{kind: eventChange, component: component, req: req})
}

// BeginLoad suppresses calculations while a saved quote is applied field by field.
func (s *Scheduler) BeginLoad() error {
	return s.send(event{kind: eventBeginLoad})
}

// EndLoad marks every field applied; one loop tick later the load settles
// and a single calculation runs on the restored selections.
func (s *Scheduler) EndLoad() error {
	return s.send(event{kind: eventEndLoad})
}

// send reports ErrStopped once Run has returned, even while the events
// buffer has room.
func (s *Scheduler) send(ev event) error {
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrStopped
	}
}

// Run is the event loop. It returns when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	defer close(s.results)
	defer close(s.done)
	defer s.clearTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.handle(ctx, ev)
		case <-s.pending:
			s.pending, s.stopTimer = nil, nil
			s.emit(ctx, false)
		case <-s.settle:
			s.drainEvents(ctx)
			s.setState(StateSettled)
			s.emit(ctx, true)
		}
	}
}

func (s *Scheduler) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case eventChange:
		s.req = ev.req
		if s.State().Suppressed() {
			return
		}
		if ev.component == pricing.ComponentVilla {
			s.clearTimer()
			s.emit(ctx, false)
			return
		}
		s.clearTimer()
		s.pending, s.stopTimer = s.newTimer(s.delay)

	case eventBeginLoad:
		if s.State().Suppressed() {
			s.logger.Warn("load already in progress", zap.String("state", string(s.State())))
			return
		}
		s.clearTimer()
		s.setState(StateLoading)

	case eventEndLoad:
		if s.State() != StateLoading {
			s.logger.Warn("end of load without a load in progress", zap.String("state", string(s.State())))
			return
		}
		s.setState(StateFieldsApplied)
		s.settle <- struct{}{}
	}
}

// drainEvents handles every event already queued. Changes sent before the
// settle tick are still suppressed and land in the settled calculation.
func (s *Scheduler) drainEvents(ctx context.Context) {
	for {
		select {
		case ev := <-s.events:
			s.handle(ctx, ev)
		default:
			return
		}
	}
}

func (s *Scheduler) emit(ctx context.Context, settled bool) {
	b := s.calc.Estimate(ctx, s.req)
	select {
	case s.results <- Result{Breakdown: b, Settled: settled}:
	case <-ctx.Done():
	}
}

func (s *Scheduler) clearTimer() {
	if s.stopTimer != nil {
		s.stopTimer()
	}
	s.pending, s.stopTimer = nil, nil
}

func (s *Scheduler) setState(st State) {
	s.logger.Debug("recalc state", zap.String("from", string(s.State())), zap.String("to", string(st)))
	s.state.Store(st)
}
