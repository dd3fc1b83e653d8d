package resource

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/crewdeck/crewctl/internal/cache"
	"github.com/crewdeck/crewctl/internal/log"
	"github.com/crewdeck/crewctl/internal/platform"
)

// Activity composes the result cache and request client for the activity
// event stream.
type Activity struct {
	client *platform.Client
	cache  *cache.Cache
	logger *log.Logger
}

// NewActivity creates the activity accessor.
func NewActivity(client *platform.Client, c *cache.Cache, logger *log.Logger) *Activity {
	return &Activity{client: client, cache: c, logger: logger}
}

// List retrieves activity events matching the filter.
func (a *Activity) List(ctx context.Context, filter platform.ActivityFilter) (*platform.ActivityList, error) {
	key := cache.ListKey(ActivityResource, filter.Query())
	value, err := a.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return a.client.ListActivity(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return value.(*platform.ActivityList), nil
}

// Summary retrieves aggregated event counts for a worker over a recent
// window of hours.
func (a *Activity) Summary(ctx context.Context, employeeID string, hours int) (*platform.ActivitySummary, error) {
	params := url.Values{}
	if employeeID != "" {
		params.Set("employeeId", employeeID)
	}
	params.Set("hours", strconv.Itoa(hours))

	key := cache.ListKey(ActivitySummaryResource, params)
	value, err := a.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return a.client.GetActivitySummary(ctx, employeeID, hours)
	})
	if err != nil {
		return nil, err
	}
	return value.(*platform.ActivitySummary), nil
}

// Poll re-fetches the filtered activity list on a fixed interval regardless
// of staleness, writing each result through the cache and delivering it on
// the returned channel. The poll is owned by the subscriber: it stops and the
// channel closes when ctx is cancelled, so no refresh continues unobserved.
func (a *Activity) Poll(ctx context.Context, interval time.Duration, filter platform.ActivityFilter) <-chan *platform.ActivityList {
	updates := make(chan *platform.ActivityList, 1)
	key := cache.ListKey(ActivityResource, filter.Query())

	go func() {
		defer close(updates)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				list, err := a.client.ListActivity(ctx, filter)
				if err != nil {
					a.logger.WithError(err).Debug("activity poll fetch failed")
					continue
				}
				a.cache.Put(key, list)

				select {
				case updates <- list:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates
}
