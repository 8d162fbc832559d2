package meshdeploy

import (
	"github.com/meshkit/meshdeploy/internal/app"
	"github.com/meshkit/meshdeploy/internal/domain"
)

// StatusChangeEvent carries one non-duplicate combined state observed
// by the readiness state machine.
type StatusChangeEvent struct {
	State CombinedState
}

// OutcomeEvent carries the terminal verdict of an orchestration run.
type OutcomeEvent struct {
	Ready bool
}

// EventHandler receives orchestration events. Handlers are called
// synchronously from the combining goroutine and must not block.
type EventHandler interface {
	// OnStatusChange is called per combined-state transition when
	// OutputComponentStatus is enabled.
	OnStatusChange(e StatusChangeEvent)

	// OnOutcome is called at most once per run with the terminal verdict.
	OnOutcome(e OutcomeEvent)
}

// emitterWrapper adapts EventHandler to the internal emitter interface.
type emitterWrapper struct {
	handler EventHandler
}

var _ app.StatusEmitter = (*emitterWrapper)(nil)

func (e *emitterWrapper) OnCombinedState(state domain.CombinedState) {
	if e.handler == nil {
		return
	}
	e.handler.OnStatusChange(StatusChangeEvent{State: state})
}

func (e *emitterWrapper) OnOutcome(ready bool) {
	if e.handler == nil {
		return
	}
	e.handler.OnOutcome(OutcomeEvent{Ready: ready})
}
