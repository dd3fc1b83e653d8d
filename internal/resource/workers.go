package resource

import (
	"context"

	"github.com/crewdeck/crewctl/internal/cache"
	"github.com/crewdeck/crewctl/internal/platform"
)

// Resource names used as the first cache key segment.
const (
	WorkersResource         = "workers"
	ActivityResource        = "activity"
	ActivitySummaryResource = "activity_summary"
	ProvidersResource       = "providers"
	CredentialsResource     = "credentials"
)

// Workers composes the result cache and request client for the worker family.
type Workers struct {
	client *platform.Client
	cache  *cache.Cache
}

// NewWorkers creates the workers accessor.
func NewWorkers(client *platform.Client, c *cache.Cache) *Workers {
	return &Workers{client: client, cache: c}
}

// List retrieves workers matching the filter. Distinct filter combinations
// cache independently: the parameters are part of the cache key.
func (w *Workers) List(ctx context.Context, filter platform.WorkerFilter) (*platform.WorkerList, error) {
	key := cache.ListKey(WorkersResource, filter.Query())
	value, err := w.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return w.client.ListWorkers(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return value.(*platform.WorkerList), nil
}

// Get retrieves one worker by id. With no id the accessor is inert: it
// issues no request and returns nothing.
func (w *Workers) Get(ctx context.Context, id string) (*platform.Worker, error) {
	if id == "" {
		return nil, nil
	}

	key := cache.DetailKey(WorkersResource, id)
	value, err := w.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return w.client.GetWorker(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return value.(*platform.Worker), nil
}

// Create adds a worker and invalidates the whole list scope.
func (w *Workers) Create(ctx context.Context, req platform.CreateWorkerRequest) (*platform.Worker, error) {
	worker, err := w.client.CreateWorker(ctx, req)
	if err != nil {
		return nil, err
	}

	w.cache.InvalidateList(WorkersResource)
	return worker, nil
}

// Update patches a worker. The server-returned payload is written straight
// into the detail key before lists are invalidated, so a subsequent detail
// read is correct without waiting on a round trip.
func (w *Workers) Update(ctx context.Context, id string, req platform.UpdateWorkerRequest) (*platform.Worker, error) {
	worker, err := w.client.UpdateWorker(ctx, id, req)
	if err != nil {
		return nil, err
	}

	w.cache.Put(cache.DetailKey(WorkersResource, id), worker)
	w.cache.InvalidateList(WorkersResource)
	return worker, nil
}

// Delete removes a worker and invalidates both its detail key and the list
// scope.
func (w *Workers) Delete(ctx context.Context, id string) error {
	if err := w.client.DeleteWorker(ctx, id); err != nil {
		return err
	}

	w.cache.InvalidateDetail(WorkersResource, id)
	w.cache.InvalidateList(WorkersResource)
	return nil
}

// Lifecycle actions only issue the request; the cache is never mutated
// optimistically. The remote side may reject the transition, so callers rely
// on a subsequent read or poll to observe the resulting state.

// Start requests that a worker start running.
func (w *Workers) Start(ctx context.Context, id string) error {
	_, err := w.client.StartWorker(ctx, id)
	return err
}

// Stop requests that a worker stop.
func (w *Workers) Stop(ctx context.Context, id string) error {
	_, err := w.client.StopWorker(ctx, id)
	return err
}

// Pause requests that a running worker pause.
func (w *Workers) Pause(ctx context.Context, id string) error {
	_, err := w.client.PauseWorker(ctx, id)
	return err
}

// Resume requests that a paused worker resume.
func (w *Workers) Resume(ctx context.Context, id string) error {
	_, err := w.client.ResumeWorker(ctx, id)
	return err
}
