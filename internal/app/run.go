// Package app contains the orchestration core: the combined readiness
// state machine and the orchestration run that wires pollers, muxes,
// and signals together for one create-monitor-outcome-delete-drain
// cycle.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/meshkit/meshdeploy/internal/domain"
	"github.com/meshkit/meshdeploy/internal/mux"
	"github.com/meshkit/meshdeploy/internal/poll"
	"github.com/meshkit/meshdeploy/internal/ports"
	"github.com/meshkit/meshdeploy/internal/signal"
)

// phase is the two-phase resource-ownership state of a run: while
// monitoring, the run owns its subscriptions; drained is entered only
// by consuming the complete signal, and release happens only there.
type phase int

const (
	phaseCreated phase = iota
	phaseMonitoring
	phaseDrained
)

// RunConfig configures one orchestration run.
type RunConfig struct {
	// PollInterval is the cadence of each facet poller.
	PollInterval time.Duration

	// Replica is the agent replica index to poll.
	Replica int

	// VerboseAgentLogs attaches a second, diagnostic subscriber to the
	// agent sequence that logs every observed agent status.
	VerboseAgentLogs bool

	// OutputComponentStatus surfaces every non-duplicate combined state
	// as a progress record.
	OutputComponentStatus bool
}

// Run owns the state of one orchestration run: the three pollers, the
// readiness state machine, the four one-shot signals, and the active
// subscriptions. Nothing in a Run is shared with any other run.
type Run struct {
	spec      domain.DeploymentSpec
	cfg       RunConfig
	client    ports.DeploymentClient
	pool      *ants.Pool
	logger    ports.Logger
	readiness *Readiness

	mu            sync.Mutex
	phase         phase
	deploying     bool
	cancelMonitor context.CancelFunc
	releases      []func()
}

// NewRun creates an idle run; no network call is issued until Deploy.
func NewRun(spec domain.DeploymentSpec, cfg RunConfig, client ports.DeploymentClient, pool *ants.Pool, logger ports.Logger, emitter StatusEmitter) *Run {
	return &Run{
		spec:      spec,
		cfg:       cfg,
		client:    client,
		pool:      pool,
		logger:    logger,
		readiness: NewReadiness(cfg.OutputComponentStatus, logger, emitter),
	}
}

// Outcome returns the run's one-shot terminal verdict.
func (r *Run) Outcome() *signal.Outcome {
	return r.readiness.Outcome()
}

// Deploy performs the create/update call on the worker pool and, on
// success, wires up monitoring: pollers behind muxes, the readiness
// state machine subscribed, diagnostics attached, and finally all three
// muxes connected. It returns once wiring is complete; readiness
// arrives later through Outcome. A create failure is returned directly
// and no polling is started.
func (r *Run) Deploy(ctx context.Context) error {
	// Claim the deploy before the create call: phase only advances once
	// the call returns, and a second Deploy racing in during the network
	// I/O must not issue a second create or wire monitoring twice.
	r.mu.Lock()
	if r.phase != phaseCreated || r.deploying {
		r.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	r.deploying = true
	r.mu.Unlock()

	if err := r.submitWait(ctx, func(ctx context.Context) error {
		return r.client.CreateOrUpdate(ctx, r.spec)
	}); err != nil {
		// Release the claim so the caller may retry the create.
		r.mu.Lock()
		r.deploying = false
		r.mu.Unlock()
		return fmt.Errorf("create deployment: %w", err)
	}
	r.logger.Info("deployment accepted",
		ports.String("deployment", r.spec.Name),
		ports.String("resource_group", r.spec.ResourceGroup),
	)

	return r.startMonitoring()
}

// Delete issues the external delete call on the worker pool. It does
// not stop monitoring; teardown completion is always routed through
// Drain so the pipeline quiesces before resources are released.
func (r *Run) Delete(ctx context.Context) error {
	if err := r.submitWait(ctx, func(ctx context.Context) error {
		return r.client.Delete(ctx, r.spec.Name, r.spec.ResourceGroup)
	}); err != nil {
		return fmt.Errorf("delete deployment: %w", err)
	}
	r.logger.Info("deployment deletion accepted",
		ports.String("deployment", r.spec.Name),
	)
	return nil
}

// Drain blocks until the complete signal fires, then releases every
// subscription held by the run. It never releases before monitoring has
// fully quiesced. A second call after teardown returns ErrDrained.
func (r *Run) Drain(ctx context.Context) error {
	r.mu.Lock()
	switch r.phase {
	case phaseCreated:
		r.mu.Unlock()
		return domain.ErrNotDeployed
	case phaseDrained:
		r.mu.Unlock()
		return domain.ErrDrained
	}
	r.mu.Unlock()

	if err := r.readiness.Complete().Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == phaseDrained {
		return domain.ErrDrained
	}
	r.phase = phaseDrained
	for _, release := range r.releases {
		release()
	}
	r.releases = nil
	r.logger.Info("monitoring drained, subscriptions released",
		ports.String("deployment", r.spec.Name),
	)
	return nil
}

// startMonitoring wires pollers, muxes, the readiness state machine,
// and the terminal watcher, then connects the muxes. Consumers
// subscribe before any mux is connected so no initial event is missed.
func (r *Run) startMonitoring() error {
	monitorCtx, cancel := context.WithCancel(context.Background())
	rd := r.readiness

	appPoller := poll.New("application", r.cfg.PollInterval,
		func(ctx context.Context) (domain.ApplicationStatus, error) {
			return r.client.ApplicationStatus(ctx, r.spec.Name, r.spec.ResourceGroup)
		}, r.logger)
	svcPoller := poll.NewGated("service", r.cfg.PollInterval,
		func(ctx context.Context) (domain.ServiceStatus, error) {
			return r.client.ServiceStatus(ctx, r.spec.Name, r.spec.ResourceGroup)
		}, rd.Begin().Done(), rd.AppFailed().Done(), r.logger)
	agentPoller := poll.NewGated("agent", r.cfg.PollInterval,
		func(ctx context.Context) (domain.AgentStatus, error) {
			return r.client.AgentStatus(ctx, r.spec.Name, r.spec.ResourceGroup, r.cfg.Replica, r.cfg.VerboseAgentLogs)
		}, rd.Begin().Done(), rd.AppFailed().Done(), r.logger)

	appMux := mux.New[domain.ApplicationStatus]("application", r.logger)
	svcMux := mux.New[domain.ServiceStatus]("service", r.logger)
	agentMux := mux.New[domain.AgentStatus]("agent", r.logger)

	appCh, releaseApp := appMux.Subscribe()
	svcCh, releaseSvc := svcMux.Subscribe()
	agentCh, releaseAgent := agentMux.Subscribe()

	r.mu.Lock()
	r.phase = phaseMonitoring
	r.cancelMonitor = cancel
	r.releases = append(r.releases, releaseApp, releaseSvc, releaseAgent)
	r.mu.Unlock()

	if r.cfg.VerboseAgentLogs {
		diagCh, releaseDiag := agentMux.Subscribe()
		r.mu.Lock()
		r.releases = append(r.releases, releaseDiag)
		r.mu.Unlock()
		if err := r.pool.Submit(func() {
			for st := range diagCh {
				r.logger.Info("agent status",
					ports.String("deployment", r.spec.Name),
					ports.Int("replica", r.cfg.Replica),
					ports.Stringer("status", st),
				)
			}
		}); err != nil {
			cancel()
			return err
		}
	}

	if err := r.pool.Submit(func() {
		rd.Run(appCh, svcCh, agentCh)
	}); err != nil {
		cancel()
		return err
	}

	// Once the outcome or the application-failed cascade fires, the run
	// can no longer change its verdict: stop all polling so the three
	// sequences complete and the complete signal can fire.
	if err := r.pool.Submit(func() {
		select {
		case <-rd.Outcome().Done():
		case <-rd.AppFailed().Done():
		case <-monitorCtx.Done():
		}
		cancel()
	}); err != nil {
		cancel()
		return err
	}

	if err := appMux.Connect(monitorCtx, r.pool, appPoller); err != nil {
		cancel()
		return err
	}
	if err := svcMux.Connect(monitorCtx, r.pool, svcPoller); err != nil {
		cancel()
		return err
	}
	if err := agentMux.Connect(monitorCtx, r.pool, agentPoller); err != nil {
		cancel()
		return err
	}
	return nil
}

// submitWait runs fn on the shared worker pool and waits for its
// result, so external calls never execute on the caller's goroutine.
func (r *Run) submitWait(ctx context.Context, fn func(context.Context) error) error {
	errCh := make(chan error, 1)
	if err := r.pool.Submit(func() { errCh <- fn(ctx) }); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
