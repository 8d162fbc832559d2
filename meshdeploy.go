// Package meshdeploy manages the lifecycle of a remotely-deployed mesh
// application: create or update it, observe its convergence to a ready
// or failed state by polling three independent status facets
// (application, service, agent), and tear it down deterministically.
//
// A Deployer is the component callers drive. Start registers an
// orchestration run; the returned Handle exposes the deferred
// create-and-monitor action, the one-shot outcome, and the teardown
// factory. Teardown issues the delete call and then drains: it blocks
// until monitoring has fully quiesced before any subscription is
// released.
package meshdeploy

import (
	"context"
	"errors"
	"net/http"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"

	httpadapter "github.com/meshkit/meshdeploy/internal/adapters/http"
	logadapter "github.com/meshkit/meshdeploy/internal/adapters/log"
	"github.com/meshkit/meshdeploy/internal/app"
	"github.com/meshkit/meshdeploy/internal/domain"
	"github.com/meshkit/meshdeploy/internal/ports"
)

// Deployer orchestrates mesh deployment lifecycles. All polling,
// combination, and create/delete network calls run on its shared worker
// pool, never on the caller's goroutine. Runs are independent: each one
// owns its own signals, pollers, and subscriptions.
type Deployer struct {
	config  Config
	opts    options
	client  ports.DeploymentClient
	logger  ports.Logger
	pool    *ants.Pool
	emitter *emitterWrapper

	runs cmap.ConcurrentMap[string, *app.Run]

	mu     sync.Mutex
	closed bool
}

// New creates a Deployer with the given configuration.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Deployer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logadapter.NewNoopLogger()
	}

	client := o.client
	if client == nil {
		httpClient := o.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
		}
		client = httpadapter.NewClient(cfg.ServiceURL, cfg.AuthKey, httpClient, logger)
	}

	pool, err := ants.NewPool(cfg.WorkerPoolSize)
	if err != nil {
		return nil, err
	}

	return &Deployer{
		config:  cfg,
		opts:    o,
		client:  client,
		logger:  logger,
		pool:    pool,
		emitter: &emitterWrapper{handler: o.eventHandler},
		runs:    cmap.New[*app.Run](),
	}, nil
}

// Start registers a fresh orchestration run for the deployment. It
// performs no network I/O; invoke the returned handle's Deploy to
// create the deployment and begin monitoring. At most one run may be
// active per deployment name.
func (d *Deployer) Start(spec DeploymentSpec) (*Handle, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, domain.ErrClosed
	}
	d.mu.Unlock()

	d.applyDefaults(&spec)
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	runCfg := app.RunConfig{
		PollInterval:          d.config.PollInterval,
		Replica:               d.config.Replica,
		VerboseAgentLogs:      d.config.VerboseAgentLogs,
		OutputComponentStatus: d.config.OutputComponentStatus,
	}
	run := app.NewRun(spec, runCfg, d.client, d.pool, d.logger, d.emitter)

	if !d.runs.SetIfAbsent(spec.Name, run) {
		return nil, domain.ErrAlreadyRunning
	}
	return &Handle{deployer: d, name: spec.Name, run: run}, nil
}

// Lookup returns the handle of the active run for the given deployment
// name, or ErrNotRunning when none is registered.
func (d *Deployer) Lookup(name string) (*Handle, error) {
	run, ok := d.runs.Get(name)
	if !ok {
		return nil, domain.ErrNotRunning
	}
	return &Handle{deployer: d, name: name, run: run}, nil
}

// Delete issues a standalone delete call for a deployment this process
// is not monitoring. Runs registered through Start tear down via
// Handle.Stop instead, so monitoring quiesces first.
func (d *Deployer) Delete(ctx context.Context, name, resourceGroup string) error {
	if name == "" {
		return errors.New("deployment name is required")
	}
	if resourceGroup == "" {
		resourceGroup = d.config.ResourceGroup
	}

	errCh := make(chan error, 1)
	if err := d.pool.Submit(func() {
		errCh <- d.client.Delete(ctx, name, resourceGroup)
	}); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		if err == nil {
			d.logger.Info("deployment deleted",
				ports.String("deployment", name),
				ports.String("resource_group", resourceGroup),
			)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Upscale issues a single update call with the new replica count. It is
// fire-and-forget with respect to monitoring: no run state changes and
// no signals fire.
func (d *Deployer) Upscale(ctx context.Context, spec DeploymentSpec, replicas int) error {
	d.applyDefaults(&spec)
	spec.Replicas = replicas
	if err := spec.Validate(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	if err := d.pool.Submit(func() {
		errCh <- d.client.CreateOrUpdate(ctx, spec)
	}); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		if err == nil {
			d.logger.Info("deployment upscaled",
				ports.String("deployment", spec.Name),
				ports.Int("replicas", replicas),
			)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the shared worker pool. Callers must drain active runs
// first; a closed deployer rejects new runs with ErrClosed.
func (d *Deployer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.ErrClosed
	}
	d.closed = true
	d.pool.Release()
	return nil
}

func (d *Deployer) applyDefaults(spec *DeploymentSpec) {
	if spec.ResourceGroup == "" {
		spec.ResourceGroup = d.config.ResourceGroup
	}
}

// Handle is one orchestration run as seen by the caller.
type Handle struct {
	deployer *Deployer
	name     string
	run      *app.Run
}

// Deploy performs the external create/update call and wires up
// monitoring. It returns once wiring is complete, not once readiness is
// reached; the verdict arrives later through Wait or Done. A create
// failure is returned directly and no polling is started.
func (h *Handle) Deploy(ctx context.Context) error {
	return h.run.Deploy(ctx)
}

// Done returns a channel closed once the run's outcome has fired.
func (h *Handle) Done() <-chan struct{} {
	return h.run.Outcome().Done()
}

// Result returns the verdict and whether the outcome has fired.
func (h *Handle) Result() (ready, fired bool) {
	return h.run.Outcome().Value()
}

// Wait blocks until the run reaches its terminal verdict or ctx is
// done. Note that a run whose application fails without all three
// facets failing never reaches a verdict; bound the wait with ctx.
func (h *Handle) Wait(ctx context.Context) (bool, error) {
	return h.run.Outcome().Wait(ctx)
}

// Stop returns the teardown actions for this run.
func (h *Handle) Stop() *Teardown {
	return &Teardown{handle: h}
}

// Teardown is the two-step teardown of an orchestration run: issue the
// external delete, then wait for monitoring to quiesce and release all
// subscriptions.
type Teardown struct {
	handle *Handle
}

// Delete issues the external delete call on the worker pool. A failure
// here leaves the run's local resources intact; the caller decides
// whether to still Wait and release them.
func (t *Teardown) Delete(ctx context.Context) error {
	return t.handle.run.Delete(ctx)
}

// Wait blocks until monitoring has fully quiesced, then releases every
// subscription held by the run and unregisters it. It never releases
// resources early; a second call returns ErrDrained.
func (t *Teardown) Wait(ctx context.Context) error {
	if err := t.handle.run.Drain(ctx); err != nil {
		// A run that never deployed holds no subscriptions; drop its
		// registration so the deployment name is free again.
		if errors.Is(err, domain.ErrNotDeployed) {
			t.handle.deployer.runs.Remove(t.handle.name)
		}
		return err
	}
	t.handle.deployer.runs.Remove(t.handle.name)
	return nil
}
