package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/bootstrap"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
	"github.com/mozilla-ai/mcpconnect/internal/registry"
)

// Daemon hosts the proxy API over a hydrated server registry.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger          hclog.Logger
	registry        *registry.Registry
	apiServer       *APIServer
	trigger         *bootstrap.Trigger
	servers         []domain.ServerRecord
	refreshInterval time.Duration
}

// NewDaemon creates a new Daemon instance with the provided dependencies and options.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid daemon dependencies: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	logger := deps.Logger.Named("daemon")

	regOpts := append([]registry.Option{
		registry.WithStatusListener(func(rec domain.ServerRecord) {
			logger.Debug("Server status changed", "id", rec.ID, "name", rec.Name, "status", rec.Status)
		}),
	}, opts.RegistryOptions...)

	reg, err := registry.New(deps.Logger, deps.Client, regOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server registry: %w", err)
	}

	trigger, err := bootstrap.NewTrigger(deps.Logger, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap trigger: %w", err)
	}

	apiDeps, err := NewAPIDependencies(
		deps.Logger,
		deps.Client,
		&persistingRegistry{ServerRegistry: reg, store: deps.Store, logger: logger},
		deps.APIAddr,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API server dependencies: %w", err)
	}

	apiServer, err := NewAPIServer(apiDeps, opts.APIOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon API server: %w", err)
	}

	return &Daemon{
		logger:          logger,
		registry:        reg,
		apiServer:       apiServer,
		trigger:         trigger,
		servers:         deps.Servers,
		refreshInterval: opts.RefreshInterval,
	}, nil
}

// StartAndManage hydrates the registry, serves the API and refreshes servers until ctx is canceled.
// The startup refresh runs in the background so the API is available while servers are probed.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	if err := d.hydrate(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	apiErr := make(chan error, 1)
	go func() {
		apiErr <- d.apiServer.Start(runCtx)
	}()

	d.trigger.FireAsync(runCtx)

	if d.refreshInterval > 0 {
		go d.refreshLoop(runCtx, d.refreshInterval)
	}

	select {
	case <-ctx.Done():
		d.logger.Info("Shutting down daemon")
		// Wait for the API server to finish its graceful shutdown.
		<-apiErr
		return nil
	case err := <-apiErr:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// hydrate loads the persisted servers into the registry and arms the bootstrap trigger.
func (d *Daemon) hydrate() error {
	if err := d.registry.Restore(d.servers...); err != nil {
		return fmt.Errorf("failed to restore servers: %w", err)
	}

	d.logger.Info("Loaded servers", "count", len(d.servers))
	d.trigger.Hydrated()

	return nil
}

// refreshLoop re-probes enabled servers on a fixed interval.
// It waits for the startup refresh to settle before the first tick is processed.
func (d *Daemon) refreshLoop(ctx context.Context, interval time.Duration) {
	select {
	case <-ctx.Done():
		return
	case <-d.trigger.Done():
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping periodic server refresh")
			return
		case <-ticker.C:
			records := d.registry.RefreshAll(ctx)
			d.logger.Debug("Periodic refresh settled", "servers", len(records))
		}
	}
}
