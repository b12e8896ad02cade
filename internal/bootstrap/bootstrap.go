// Package bootstrap provides the one-shot startup hook that refreshes every known tool server
// once persisted registry state has been loaded.
package bootstrap

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/contracts"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

// Trigger runs a single registry refresh per process, and only after hydration.
type Trigger struct {
	logger    hclog.Logger
	refresher contracts.Refresher
	hydrated  atomic.Bool
	once      sync.Once
	done      chan struct{}
}

// NewTrigger creates a Trigger for the given refresher.
func NewTrigger(logger hclog.Logger, refresher contracts.Refresher) (*Trigger, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if refresher == nil || reflect.ValueOf(refresher).IsNil() {
		return nil, fmt.Errorf("refresher cannot be nil")
	}

	return &Trigger{
		logger:    logger.Named("bootstrap"),
		refresher: refresher,
		done:      make(chan struct{}),
	}, nil
}

// Hydrated records that persisted state has been loaded into the registry.
func (t *Trigger) Hydrated() {
	t.hydrated.Store(true)
}

// Fire refreshes all servers if the trigger has not fired yet.
// Before Hydrated is called Fire does nothing and can be retried later.
// It returns true only for the call that performed the refresh.
func (t *Trigger) Fire(ctx context.Context) bool {
	if !t.hydrated.Load() {
		t.logger.Debug("Skipping startup refresh, registry not hydrated yet")
		return false
	}

	fired := false
	t.once.Do(func() {
		fired = true
		defer close(t.done)
		t.run(ctx)
	})

	return fired
}

// FireAsync calls Fire in a new goroutine so startup is never blocked on the refresh.
func (t *Trigger) FireAsync(ctx context.Context) {
	go t.Fire(ctx)
}

// Done is closed once the startup refresh has settled.
func (t *Trigger) Done() <-chan struct{} {
	return t.done
}

func (t *Trigger) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Startup refresh panicked", "panic", r)
		}
	}()

	t.logger.Info("Refreshing all servers")
	records := t.refresher.RefreshAll(ctx)

	counts := map[domain.Status]int{}
	for _, rec := range records {
		counts[rec.Status]++
		if rec.Status == domain.StatusError {
			t.logger.Warn("Server unavailable", "id", rec.ID, "name", rec.Name, "error", rec.ErrorDetail)
		}
	}

	t.logger.Info(
		"Startup refresh settled",
		"servers", len(records),
		string(domain.StatusConnected), counts[domain.StatusConnected],
		string(domain.StatusError), counts[domain.StatusError],
	)
}
