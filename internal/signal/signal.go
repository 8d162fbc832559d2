// Package signal provides the one-shot gates that carry the four
// cross-stream notifications of an orchestration run: begin dependent
// polling, application failed, outcome, and monitoring complete.
//
// A gate fires at most once and is then permanently closed. The
// at-most-once invariant is structural (sync.Once around a channel
// close), not a convention callers must uphold.
package signal

import (
	"context"
	"sync"
)

// Signal is a one-shot, zero-value notification.
type Signal struct {
	once sync.Once
	ch   chan struct{}
}

// New creates an unfired Signal.
func New() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Fire closes the signal. Returns true on the first call, false on
// every later call.
func (s *Signal) Fire() bool {
	fired := false
	s.once.Do(func() {
		close(s.ch)
		fired = true
	})
	return fired
}

// Fired reports whether the signal has fired.
func (s *Signal) Fired() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once the signal fires.
func (s *Signal) Done() <-chan struct{} {
	return s.ch
}

// Wait blocks until the signal fires or ctx is done.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outcome is a one-shot boolean result: the terminal ready/failed
// verdict of an orchestration run.
type Outcome struct {
	once  sync.Once
	ch    chan struct{}
	ready bool
}

// NewOutcome creates an unfired Outcome.
func NewOutcome() *Outcome {
	return &Outcome{ch: make(chan struct{})}
}

// Fire records the verdict and closes the outcome. Returns true on the
// first call, false on every later call; later verdicts are discarded.
func (o *Outcome) Fire(ready bool) bool {
	fired := false
	o.once.Do(func() {
		o.ready = ready
		close(o.ch)
		fired = true
	})
	return fired
}

// Done returns a channel that is closed once the outcome fires.
func (o *Outcome) Done() <-chan struct{} {
	return o.ch
}

// Value returns the verdict and whether the outcome has fired.
func (o *Outcome) Value() (ready, fired bool) {
	select {
	case <-o.ch:
		return o.ready, true
	default:
		return false, false
	}
}

// Wait blocks until the outcome fires or ctx is done.
func (o *Outcome) Wait(ctx context.Context) (bool, error) {
	select {
	case <-o.ch:
		return o.ready, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
