// Package mux multiplexes one cold status sequence to several
// independent observers.
//
// A Mux wraps a Source (the facet poller) so the readiness state
// machine and any diagnostic observer share a single underlying poll
// loop: no query is re-issued per consumer, every event reaches all
// current subscribers, and a subscriber attaching after connection is
// replayed the most recent event. The mux moves through an explicit
// created -> connected -> completed state machine; the source is only
// started by Connect, which the orchestrator calls after all consumers
// have subscribed.
package mux

import (
	"context"
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/meshkit/meshdeploy/internal/ports"
)

// ErrConnected is returned when Connect is called more than once.
var ErrConnected = errors.New("mux: already connected")

// subscriberBuffer bounds how far a subscriber may lag before events
// are dropped for it. Status events arrive at poll cadence, so a
// draining subscriber never comes near this.
const subscriberBuffer = 64

// Source is a cold event sequence: nothing happens until Run is
// invoked, and Run emits events until the sequence completes.
type Source[T comparable] interface {
	Run(ctx context.Context, emit func(T)) error
}

type state int

const (
	stateCreated state = iota
	stateConnected
	stateCompleted
)

// Mux is a connectable broadcast over one Source.
type Mux[T comparable] struct {
	name   string
	logger ports.Logger

	mu      sync.Mutex
	st      state
	last    T
	hasLast bool
	subs    map[int]chan T
	next    int

	done chan struct{}
}

// New creates a disconnected Mux for one facet sequence.
func New[T comparable](name string, logger ports.Logger) *Mux[T] {
	return &Mux[T]{
		name:   name,
		logger: logger,
		subs:   make(map[int]chan T),
		done:   make(chan struct{}),
	}
}

// Subscribe attaches an observer. The returned channel carries every
// event published after attachment, preceded by the most recent event
// when the mux is already connected. The channel is closed when the
// underlying sequence completes. The returned func detaches the
// observer; the sequence keeps running for the remaining subscribers.
func (m *Mux[T]) Subscribe() (<-chan T, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.st == stateCompleted {
		ch := make(chan T, 1)
		if m.hasLast {
			ch <- m.last
		}
		close(ch)
		return ch, func() {}
	}

	ch := make(chan T, subscriberBuffer)
	if m.st == stateConnected && m.hasLast {
		ch <- m.last
	}
	id := m.next
	m.next++
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Connect starts the source on the worker pool. It may be called once;
// the orchestrator connects only after all consumers have subscribed so
// no initial event is missed.
func (m *Mux[T]) Connect(ctx context.Context, pool *ants.Pool, src Source[T]) error {
	m.mu.Lock()
	if m.st != stateCreated {
		m.mu.Unlock()
		return ErrConnected
	}
	m.st = stateConnected
	m.mu.Unlock()

	err := pool.Submit(func() {
		runErr := src.Run(ctx, m.publish)
		m.complete(runErr)
	})
	if err != nil {
		m.mu.Lock()
		m.st = stateCreated
		m.mu.Unlock()
		return err
	}
	return nil
}

// Done returns a channel closed once the underlying sequence has
// completed and all subscriber channels are closed.
func (m *Mux[T]) Done() <-chan struct{} {
	return m.done
}

// publish delivers one event to every current subscriber and records it
// for replay.
func (m *Mux[T]) publish(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.st != stateConnected {
		return
	}
	m.last = v
	m.hasLast = true

	for _, ch := range m.subs {
		select {
		case ch <- v:
		default:
			// A stalled observer must not block the poll loop or the
			// other subscribers.
			m.logger.Warn("dropping event for slow subscriber",
				ports.String("facet", m.name),
			)
		}
	}
}

// complete moves the mux to its terminal state and closes every
// subscriber channel.
func (m *Mux[T]) complete(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.st == stateCompleted {
		return
	}
	m.st = stateCompleted

	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	close(m.done)

	if err != nil {
		m.logger.Warn("sequence terminated",
			ports.String("facet", m.name),
			ports.Err(err),
		)
	} else {
		m.logger.Debug("sequence completed", ports.String("facet", m.name))
	}
}
