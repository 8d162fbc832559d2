// Package poll produces the facet status sequences: cold, infinite
// poll loops over single-shot deployment-client queries.
//
// A poller does nothing until its Run method is invoked (the
// multiplexer's Connect does that), so no network call is issued before
// the first consumer attaches. The service and agent pollers are gated:
// they stay idle until a begin signal fires and stop permanently on an
// abort signal. Polling is unbounded; only context cancellation, an
// abort, or a poll error ends a sequence.
package poll

import (
	"context"
	"time"

	"github.com/meshkit/meshdeploy/internal/ports"
)

// Func is one status query against the external client.
type Func[T comparable] func(ctx context.Context) (T, error)

// Poller repeatedly queries one status facet and emits every observed
// value. One instance exists per facet per orchestration run.
type Poller[T comparable] struct {
	name     string
	interval time.Duration
	fn       Func[T]
	begin    <-chan struct{}
	abort    <-chan struct{}
	logger   ports.Logger
}

// New creates an ungated poller: it begins polling as soon as it runs.
func New[T comparable](name string, interval time.Duration, fn Func[T], logger ports.Logger) *Poller[T] {
	return &Poller[T]{name: name, interval: interval, fn: fn, logger: logger}
}

// NewGated creates a poller that stays idle until begin fires and stops
// permanently when abort fires. Abort before begin completes the
// sequence immediately.
func NewGated[T comparable](name string, interval time.Duration, fn Func[T], begin, abort <-chan struct{}, logger ports.Logger) *Poller[T] {
	return &Poller[T]{name: name, interval: interval, fn: fn, begin: begin, abort: abort, logger: logger}
}

// Run executes the poll loop, calling emit for every observed value.
// It returns nil when the sequence completes (context cancelled or
// abort fired) and the poll error when a query fails; a poll error is
// terminal for this sequence and is not retried here.
func (p *Poller[T]) Run(ctx context.Context, emit func(T)) error {
	if p.begin != nil {
		select {
		case <-p.abort:
			p.logger.Debug("poller aborted before begin", ports.String("facet", p.name))
			return nil
		case <-ctx.Done():
			return nil
		case <-p.begin:
		}
	}

	for {
		if p.abort != nil {
			select {
			case <-p.abort:
				p.logger.Debug("poller aborted", ports.String("facet", p.name))
				return nil
			default:
			}
		}

		v, err := p.fn(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("poll failed",
				ports.String("facet", p.name),
				ports.Err(err),
			)
			return err
		}
		emit(v)

		select {
		case <-p.abort:
			p.logger.Debug("poller aborted", ports.String("facet", p.name))
			return nil
		case <-ctx.Done():
			return nil
		case <-time.After(p.interval):
		}
	}
}
