package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewctl/internal/cache"
	"github.com/crewdeck/crewctl/internal/platform"
)

func newWorkersFixture(t *testing.T, handler http.Handler) (*Workers, *cache.Cache) {
	t.Helper()
	server := newTestServer(t, handler)
	client := platform.NewClient(server.URL).WithToken("tok")
	c := cache.New()
	return NewWorkers(client, c), c
}

func TestWorkers_ListCachesByFilter(t *testing.T) {
	hits := newHitCounter()
	accessor, _ := newWorkersFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.record(r)
		status := r.URL.Query().Get("status")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(platform.WorkerList{
			Workers: []platform.Worker{{ID: "w-1", Status: status}},
		})
	}))

	ctx := context.Background()

	// Same filter twice: one network call.
	_, err := accessor.List(ctx, platform.WorkerFilter{Status: "running"})
	require.NoError(t, err)
	_, err = accessor.List(ctx, platform.WorkerFilter{Status: "running"})
	require.NoError(t, err)
	assert.Equal(t, 1, hits.get("GET", "/employees"))

	// A different filter combination caches independently.
	list, err := accessor.List(ctx, platform.WorkerFilter{Status: "paused"})
	require.NoError(t, err)
	assert.Equal(t, "paused", list.Workers[0].Status)
	assert.Equal(t, 2, hits.get("GET", "/employees"))
}

func TestWorkers_GetInertWithoutID(t *testing.T) {
	accessor, _ := newWorkersFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	}))

	worker, err := accessor.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, worker)
}

func TestWorkers_UpdateWritesThroughDetailKey(t *testing.T) {
	hits := newHitCounter()
	accessor, _ := newWorkersFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.record(r)
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPatch:
			_ = json.NewEncoder(w).Encode(platform.Worker{ID: "w-1", Name: "Renamed"})
		default:
			_ = json.NewEncoder(w).Encode(platform.Worker{ID: "w-1", Name: "Original"})
		}
	}))

	ctx := context.Background()
	name := "Renamed"
	updated, err := accessor.Update(ctx, "w-1", platform.UpdateWorkerRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	// The detail read yields the server-returned payload with no round trip.
	worker, err := accessor.Get(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", worker.Name)
	assert.Equal(t, 0, hits.get("GET", "/employees/w-1"),
		"detail read after update must be served from the written-through payload")
}

func TestWorkers_CreateInvalidatesListScope(t *testing.T) {
	hits := newHitCounter()
	accessor, c := newWorkersFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.record(r)
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(platform.Worker{ID: "w-9"})
			return
		}
		_ = json.NewEncoder(w).Encode(platform.WorkerList{})
	}))

	ctx := context.Background()
	_, err := accessor.List(ctx, platform.WorkerFilter{})
	require.NoError(t, err)
	_, err = accessor.List(ctx, platform.WorkerFilter{Status: "running"})
	require.NoError(t, err)
	assert.Equal(t, 2, hits.get("GET", "/employees"))

	_, err = accessor.Create(ctx, platform.CreateWorkerRequest{Name: "New"})
	require.NoError(t, err)

	// Every previously cached filter combination is now stale.
	_, _, fresh := c.Get(cache.ListKey(WorkersResource, platform.WorkerFilter{}.Query()))
	assert.False(t, fresh)
	_, _, fresh = c.Get(cache.ListKey(WorkersResource, platform.WorkerFilter{Status: "running"}.Query()))
	assert.False(t, fresh)

	// A stale read serves immediately and refetches in the background.
	_, err = accessor.List(ctx, platform.WorkerFilter{})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return hits.get("GET", "/employees") >= 3
	}, 5*time.Second, 10*time.Millisecond, "stale list read should trigger a refetch")
}

func TestWorkers_DeleteInvalidatesDetailAndList(t *testing.T) {
	accessor, c := newWorkersFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case strings.HasPrefix(r.URL.Path, "/employees/"):
			_ = json.NewEncoder(w).Encode(platform.Worker{ID: "w-1"})
		default:
			_ = json.NewEncoder(w).Encode(platform.WorkerList{})
		}
	}))

	ctx := context.Background()
	_, err := accessor.Get(ctx, "w-1")
	require.NoError(t, err)
	_, err = accessor.List(ctx, platform.WorkerFilter{})
	require.NoError(t, err)

	require.NoError(t, accessor.Delete(ctx, "w-1"))

	_, _, fresh := c.Get(cache.DetailKey(WorkersResource, "w-1"))
	assert.False(t, fresh)
	_, _, fresh = c.Get(cache.ListKey(WorkersResource, platform.WorkerFilter{}.Query()))
	assert.False(t, fresh)
}

func TestWorkers_LifecycleDoesNotTouchCache(t *testing.T) {
	hits := newHitCounter()
	accessor, c := newWorkersFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.record(r)
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/start") {
			_ = json.NewEncoder(w).Encode(platform.Worker{ID: "w-1", Status: "running"})
			return
		}
		_ = json.NewEncoder(w).Encode(platform.Worker{ID: "w-1", Status: "stopped"})
	}))

	ctx := context.Background()
	_, err := accessor.Get(ctx, "w-1")
	require.NoError(t, err)

	require.NoError(t, accessor.Start(ctx, "w-1"))

	// The cached detail still shows the pre-transition state: no optimistic
	// mutation. The server may have rejected the transition.
	value, ok, fresh := c.Get(cache.DetailKey(WorkersResource, "w-1"))
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, "stopped", value.(*platform.Worker).Status)
	assert.Equal(t, 1, hits.get("GET", "/employees/w-1"))
}
