// Package registry holds the set of known tool servers and their derived status.
//
// The Registry is the only writer of a server's status. Each record moves through the states
//
//	disconnected|connected|error -> connecting -> connected|error
//
// driven by info probes. A record only returns to disconnected when it is disabled.
package registry

import (
	"context"
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mozilla-ai/mcpconnect/internal/contracts"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
	"github.com/mozilla-ai/mcpconnect/internal/errors"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

var _ contracts.ServerRegistry = (*Registry)(nil)

// Registry is the in-memory, authoritative set of tool servers.
// It is safe for concurrent use by multiple goroutines.
// New should be used to create instances of Registry.
type Registry struct {
	logger      hclog.Logger
	prober      contracts.Prober
	concurrency int
	listeners   []StatusListener
	now         func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string

	// refreshes merges concurrent refreshes of the same record into a single probe.
	refreshes singleflight.Group
}

// entry wraps a record with the generation of its latest refresh.
// A probe result is only applied when its generation is still current,
// so a probe that outlives a disable or restore never overwrites the newer state.
type entry struct {
	record     domain.ServerRecord
	generation uint64
}

// New creates an empty Registry which uses prober to check servers.
func New(logger hclog.Logger, prober contracts.Prober, opt ...Option) (*Registry, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if prober == nil || reflect.ValueOf(prober).IsNil() {
		return nil, fmt.Errorf("prober cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid registry options: %w", err)
	}

	return &Registry{
		logger:      logger.Named("registry"),
		prober:      prober,
		concurrency: opts.RefreshConcurrency,
		listeners:   opts.Listeners,
		now:         opts.Clock,
		entries:     make(map[string]*entry),
	}, nil
}

// Add registers a new server. The record starts disconnected, no probe is scheduled.
func (r *Registry) Add(name string, baseURL string, enabled bool) (domain.ServerRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ServerRecord{}, fmt.Errorf("%w: server name cannot be empty", errors.ErrBadRequest)
	}

	normalized, err := upstream.ValidateBaseURL(baseURL)
	if err != nil {
		return domain.ServerRecord{}, err
	}

	rec := domain.ServerRecord{
		ID:      uuid.NewString(),
		Name:    name,
		BaseURL: normalized,
		Status:  domain.StatusDisconnected,
		Enabled: enabled,
	}

	r.mu.Lock()
	r.insert(rec)
	r.mu.Unlock()

	r.logger.Info("Server registered", "id", rec.ID, "name", rec.Name, "url", rec.BaseURL, "enabled", rec.Enabled)

	return rec.Clone(), nil
}

// Restore loads previously persisted records, keeping their ID, name, base URL and enabled flag.
// Derived state is not restored, every record starts disconnected.
// A record whose ID is already registered replaces the existing one.
func (r *Registry) Restore(records ...domain.ServerRecord) error {
	var errs []error

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("%w: server '%s' has an empty id", errors.ErrBadRequest, rec.Name))
			continue
		}

		normalized, err := upstream.ValidateBaseURL(rec.BaseURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("server '%s': %w", id, err))
			continue
		}

		r.insert(domain.ServerRecord{
			ID:      id,
			Name:    rec.Name,
			BaseURL: normalized,
			Status:  domain.StatusDisconnected,
			Enabled: rec.Enabled,
		})
	}

	return stdErrors.Join(errs...)
}

// Remove deletes a server. Any probe still in flight for it is discarded when it completes.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", errors.ErrServerNotFound, id)
	}

	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("Server removed", "id", id)

	return nil
}

// SetEnabled toggles a server. Disabling moves it to disconnected and discards any in-flight probe.
// Enabling does not probe, the next refresh does.
func (r *Registry) SetEnabled(id string, enabled bool) (domain.ServerRecord, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return domain.ServerRecord{}, fmt.Errorf("%w: %s", errors.ErrServerNotFound, id)
	}

	changed := e.record.Enabled != enabled
	e.record.Enabled = enabled
	transitioned := false
	if !enabled && e.record.Status != domain.StatusDisconnected {
		e.generation++
		e.record.Status = domain.StatusDisconnected
		transitioned = true
	}
	rec := e.record.Clone()
	r.mu.Unlock()

	if changed {
		r.logger.Info("Server toggled", "id", id, "enabled", enabled)
	}
	if transitioned {
		r.notify(rec)
	}

	return rec, nil
}

// Rename changes a server's display name.
func (r *Registry) Rename(id string, name string) (domain.ServerRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ServerRecord{}, fmt.Errorf("%w: server name cannot be empty", errors.ErrBadRequest)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return domain.ServerRecord{}, fmt.Errorf("%w: %s", errors.ErrServerNotFound, id)
	}
	e.record.Name = name

	return e.record.Clone(), nil
}

// Get returns a copy of the record with the given ID.
func (r *Registry) Get(id string) (domain.ServerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return domain.ServerRecord{}, fmt.Errorf("%w: %s", errors.ErrServerNotFound, id)
	}

	return e.record.Clone(), nil
}

// List returns copies of all records in registration order.
func (r *Registry) List() []domain.ServerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ServerRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].record.Clone())
	}

	return out
}

// RefreshAll probes every enabled server concurrently and returns once all probes have settled.
// A failing probe only affects its own record. The returned records reflect each refresh outcome.
func (r *Registry) RefreshAll(ctx context.Context) []domain.ServerRecord {
	r.mu.RLock()
	ids := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if r.entries[id].record.Enabled {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	r.logger.Debug("Refreshing servers", "count", len(ids))

	results := make([]*domain.ServerRecord, len(ids))

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			rec, err := r.RefreshOne(ctx, id)
			if err != nil {
				// Removed or disabled while the cycle was running.
				r.logger.Debug("Skipped server refresh", "id", id, "error", err)
				return nil
			}
			results[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.ServerRecord, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			out = append(out, *rec)
		}
	}

	return out
}

// RefreshOne probes a single enabled server and returns its record once the probe has settled.
// A caller arriving while a refresh of the same record is in flight joins it and receives its result.
func (r *Registry) RefreshOne(ctx context.Context, id string) (domain.ServerRecord, error) {
	v, err, shared := r.refreshes.Do(id, func() (any, error) {
		gen, baseURL, err := r.beginRefresh(id)
		if err != nil {
			return domain.ServerRecord{}, err
		}

		outcome := r.prober.ProbeInfo(ctx, baseURL)

		return r.completeRefresh(id, gen, outcome)
	})
	if err != nil {
		return domain.ServerRecord{}, err
	}
	if shared {
		r.logger.Debug("Joined in-flight refresh", "id", id)
	}

	return v.(domain.ServerRecord).Clone(), nil
}

// beginRefresh moves a record to connecting and returns the generation of this refresh.
func (r *Registry) beginRefresh(id string) (uint64, string, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return 0, "", fmt.Errorf("%w: %s", errors.ErrServerNotFound, id)
	}
	if !e.record.Enabled {
		r.mu.Unlock()
		return 0, "", fmt.Errorf("%w: %s", errors.ErrServerDisabled, id)
	}

	e.generation++
	e.record.Status = domain.StatusConnecting
	gen := e.generation
	baseURL := e.record.BaseURL
	rec := e.record.Clone()
	r.mu.Unlock()

	r.notify(rec)

	return gen, baseURL, nil
}

// completeRefresh applies a probe outcome, unless a disable or restore has superseded it.
// Refreshes of one record never overlap, so a superseded record is never left connecting.
func (r *Registry) completeRefresh(id string, gen uint64, outcome upstream.Outcome) (domain.ServerRecord, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return domain.ServerRecord{}, fmt.Errorf("%w: %s: removed during refresh", errors.ErrServerNotFound, id)
	}
	if e.generation != gen {
		rec := e.record.Clone()
		r.mu.Unlock()
		r.logger.Debug("Discarding stale probe result", "id", id)
		return rec, nil
	}

	now := r.now()
	e.record.LastChecked = &now

	failure := outcome.Failure
	var info domain.ServerInfo
	if failure == nil {
		var err error
		info, err = upstream.ParseServerInfo(outcome.Payload)
		if err != nil {
			failure = &domain.Failure{Kind: domain.FailureServer, Message: err.Error(), StatusCode: outcome.StatusCode}
		}
	}

	if failure != nil {
		// Tools are kept from the last successful probe.
		e.record.Status = domain.StatusError
		e.record.ErrorDetail = failure.Message
	} else {
		e.record.Status = domain.StatusConnected
		e.record.ErrorDetail = ""
		e.record.Tools = info.Tools
		e.record.Info = &info
	}
	rec := e.record.Clone()
	r.mu.Unlock()

	if failure != nil {
		r.logger.Warn("Server probe failed", "id", id, "url", rec.BaseURL, "kind", failure.Kind, "error", failure.Message)
	} else {
		r.logger.Info("Server connected", "id", id, "url", rec.BaseURL, "tools", len(rec.Tools), "latency", outcome.Latency)
	}
	r.notify(rec)

	return rec, nil
}

// insert adds or replaces a record, the caller must hold the write lock.
func (r *Registry) insert(rec domain.ServerRecord) {
	if e, ok := r.entries[rec.ID]; ok {
		e.generation++
		e.record = rec
		return
	}

	r.entries[rec.ID] = &entry{record: rec}
	r.order = append(r.order, rec.ID)
}

func (r *Registry) notify(rec domain.ServerRecord) {
	for _, fn := range r.listeners {
		fn(rec.Clone())
	}
}
