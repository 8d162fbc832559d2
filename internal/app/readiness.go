package app

import (
	"github.com/meshkit/meshdeploy/internal/domain"
	"github.com/meshkit/meshdeploy/internal/ports"
	"github.com/meshkit/meshdeploy/internal/signal"
)

// StatusEmitter receives progress callbacks from the readiness state
// machine. Callbacks run synchronously on the combining goroutine.
type StatusEmitter interface {
	// OnCombinedState is called for every non-duplicate combined state
	// when component status output is enabled.
	OnCombinedState(state domain.CombinedState)

	// OnOutcome is called exactly once with the terminal verdict, if
	// the run reaches one.
	OnOutcome(ready bool)
}

// Readiness is the combined readiness state machine. It consumes the
// three multiplexed facet sequences, deduplicates consecutive identical
// combined states, and derives the run's four one-shot signals:
// begin-dependent-polling, application-failed, the outcome, and
// monitoring-complete.
type Readiness struct {
	logger                ports.Logger
	emitter               StatusEmitter
	outputComponentStatus bool

	begin     *signal.Signal
	appFailed *signal.Signal
	outcome   *signal.Outcome
	complete  *signal.Signal
}

// NewReadiness creates the state machine with fresh, unfired signals.
// emitter may be nil.
func NewReadiness(outputComponentStatus bool, logger ports.Logger, emitter StatusEmitter) *Readiness {
	return &Readiness{
		logger:                logger,
		emitter:               emitter,
		outputComponentStatus: outputComponentStatus,
		begin:                 signal.New(),
		appFailed:             signal.New(),
		outcome:               signal.NewOutcome(),
		complete:              signal.New(),
	}
}

// Begin fires once when the application enters Creating; it unblocks
// the gated service/agent pollers.
func (r *Readiness) Begin() *signal.Signal { return r.begin }

// AppFailed fires once when the application fails without all three
// facets failing; it aborts the gated pollers.
func (r *Readiness) AppFailed() *signal.Signal { return r.appFailed }

// Outcome fires once with the terminal verdict.
func (r *Readiness) Outcome() *signal.Outcome { return r.outcome }

// Complete fires once when all three facet sequences have completed.
// This is the synchronization point teardown waits on.
func (r *Readiness) Complete() *signal.Signal { return r.complete }

// Run consumes the three facet channels until all of them close, then
// fires the complete signal. Every event updates the latest-known
// combined triple. Events already delivered are folded into the triple
// before the rules are applied, so a burst of near-simultaneous facet
// updates is evaluated as one combined state, not a series of partial
// ones: three facets failing together yield the failed verdict, never
// the application-failed cascade.
func (r *Readiness) Run(appCh <-chan domain.ApplicationStatus, svcCh <-chan domain.ServiceStatus, agentCh <-chan domain.AgentStatus) {
	var cur, prev domain.CombinedState
	seen := false
	terminal := false

	for appCh != nil || svcCh != nil || agentCh != nil {
		updated := false

		select {
		case v, ok := <-appCh:
			if ok {
				cur.Application = v
				updated = true
			} else {
				appCh = nil
			}
		case v, ok := <-svcCh:
			if ok {
				cur.Service = v
				updated = true
			} else {
				svcCh = nil
			}
		case v, ok := <-agentCh:
			if ok {
				cur.Agent = v
				updated = true
			} else {
				agentCh = nil
			}
		}

		// Drain whatever the subscription buffers already hold.
		for draining := true; draining; {
			select {
			case v, ok := <-appCh:
				if ok {
					cur.Application = v
					updated = true
				} else {
					appCh = nil
				}
			case v, ok := <-svcCh:
				if ok {
					cur.Service = v
					updated = true
				} else {
					svcCh = nil
				}
			case v, ok := <-agentCh:
				if ok {
					cur.Agent = v
					updated = true
				} else {
					agentCh = nil
				}
			default:
				draining = false
			}
		}

		if !updated || (seen && cur == prev) {
			continue
		}
		prev = cur
		seen = true

		if terminal {
			continue
		}
		terminal = r.observe(cur)
	}

	if r.complete.Fire() {
		r.logger.Debug("monitoring complete")
	}
}

// observe applies the transition rules to one non-duplicate combined
// state, first match wins. Returns true once the run is terminal.
func (r *Readiness) observe(state domain.CombinedState) bool {
	if r.outputComponentStatus {
		r.logger.Info("deployment status",
			ports.Stringer("application", state.Application),
			ports.Stringer("service", state.Service),
			ports.Stringer("agent", state.Agent),
		)
		if r.emitter != nil {
			r.emitter.OnCombinedState(state)
		}
	}

	switch {
	case state.Application == domain.ApplicationReady &&
		state.Service == domain.ServiceReady &&
		state.Agent == domain.AgentReady:
		if r.outcome.Fire(true) {
			r.logger.Info("deployment ready")
			if r.emitter != nil {
				r.emitter.OnOutcome(true)
			}
		}
		return true

	case state.Application == domain.ApplicationFailed &&
		state.Service == domain.ServiceFailed &&
		state.Agent == domain.AgentFailed:
		if r.outcome.Fire(false) {
			r.logger.Error("deployment failed")
			if r.emitter != nil {
				r.emitter.OnOutcome(false)
			}
		}
		return true

	case state.Application == domain.ApplicationFailed:
		if r.appFailed.Fire() {
			r.logger.Warn("application failed, aborting dependent polling")
		}

	case state.Application == domain.ApplicationCreating:
		if r.begin.Fire() {
			r.logger.Debug("application creating, starting dependent polling")
		}
	}
	return false
}
