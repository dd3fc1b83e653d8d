package platform

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Activity represents one event in a worker's activity stream.
type Activity struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	EventType  string    `json:"event_type"`
	Importance int       `json:"importance"`
	Summary    string    `json:"summary"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ActivityFilter narrows an activity listing.
type ActivityFilter struct {
	EmployeeID    string
	Page          int
	PageSize      int
	EventType     string
	MinImportance int
	Since         time.Time
}

// Query encodes the filter as request query parameters.
func (f ActivityFilter) Query() url.Values {
	query := url.Values{}
	if f.EmployeeID != "" {
		query.Set("employeeId", f.EmployeeID)
	}
	if f.Page > 0 {
		query.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	if f.EventType != "" {
		query.Set("eventType", f.EventType)
	}
	if f.MinImportance > 0 {
		query.Set("minImportance", strconv.Itoa(f.MinImportance))
	}
	if !f.Since.IsZero() {
		query.Set("since", f.Since.UTC().Format(time.RFC3339))
	}
	return query
}

// ActivityList represents a paginated activity listing.
type ActivityList struct {
	Activities []Activity `json:"activities"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// ActivitySummary aggregates event counts over a recent window.
type ActivitySummary struct {
	EventCounts map[string]int `json:"eventCounts"`
	Total       int            `json:"total"`
}

// ListActivity retrieves activity events matching the filter.
func (c *Client) ListActivity(ctx context.Context, filter ActivityFilter) (*ActivityList, error) {
	var list ActivityList
	if err := c.get(ctx, "/activity", filter.Query(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetActivitySummary retrieves event counts for a worker over the last
// `hours` hours. An empty employeeID summarizes across the tenant.
func (c *Client) GetActivitySummary(ctx context.Context, employeeID string, hours int) (*ActivitySummary, error) {
	query := url.Values{}
	if employeeID != "" {
		query.Set("employeeId", employeeID)
	}
	if hours > 0 {
		query.Set("hours", strconv.Itoa(hours))
	}

	var summary ActivitySummary
	if err := c.get(ctx, "/activity/summary", query, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
