package platform

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Worker represents a digital worker managed through the dashboard.
type Worker struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	TasksDone   int       `json:"tasks_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkerFilter narrows a worker listing. Distinct filter combinations cache
// independently at the accessor layer.
type WorkerFilter struct {
	Status   string
	Role     string
	Page     int
	PageSize int
}

// Query encodes the filter as request query parameters.
func (f WorkerFilter) Query() url.Values {
	query := url.Values{}
	if f.Status != "" {
		query.Set("status", f.Status)
	}
	if f.Role != "" {
		query.Set("role", f.Role)
	}
	if f.Page > 0 {
		query.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	return query
}

// WorkerList represents a paginated worker listing.
type WorkerList struct {
	Workers    []Worker `json:"workers"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// CreateWorkerRequest represents a request to create a worker.
type CreateWorkerRequest struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description,omitempty"`
}

// UpdateWorkerRequest represents a partial update to a worker.
type UpdateWorkerRequest struct {
	Name        *string `json:"name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListWorkers retrieves workers matching the filter.
func (c *Client) ListWorkers(ctx context.Context, filter WorkerFilter) (*WorkerList, error) {
	var list WorkerList
	if err := c.get(ctx, "/employees", filter.Query(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetWorker retrieves a worker by id.
func (c *Client) GetWorker(ctx context.Context, id string) (*Worker, error) {
	var worker Worker
	if err := c.get(ctx, "/employees/"+url.PathEscape(id), nil, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// CreateWorker creates a new worker.
func (c *Client) CreateWorker(ctx context.Context, req CreateWorkerRequest) (*Worker, error) {
	var worker Worker
	if err := c.post(ctx, "/employees", req, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// UpdateWorker applies a partial update and returns the server's view of the
// worker afterwards.
func (c *Client) UpdateWorker(ctx context.Context, id string, req UpdateWorkerRequest) (*Worker, error) {
	var worker Worker
	if err := c.patch(ctx, "/employees/"+url.PathEscape(id), req, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// DeleteWorker removes a worker.
func (c *Client) DeleteWorker(ctx context.Context, id string) error {
	return c.delete(ctx, "/employees/"+url.PathEscape(id))
}

// lifecycleAction requests a worker state transition. The server may reject
// the transition, so callers must not assume the new state until a re-read.
func (c *Client) lifecycleAction(ctx context.Context, id, action string) (*Worker, error) {
	var worker Worker
	path := fmt.Sprintf("/employees/%s/%s", url.PathEscape(id), action)
	if err := c.post(ctx, path, nil, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// StartWorker requests that a worker start running.
func (c *Client) StartWorker(ctx context.Context, id string) (*Worker, error) {
	return c.lifecycleAction(ctx, id, "start")
}

// StopWorker requests that a worker stop.
func (c *Client) StopWorker(ctx context.Context, id string) (*Worker, error) {
	return c.lifecycleAction(ctx, id, "stop")
}

// PauseWorker requests that a running worker pause.
func (c *Client) PauseWorker(ctx context.Context, id string) (*Worker, error) {
	return c.lifecycleAction(ctx, id, "pause")
}

// ResumeWorker requests that a paused worker resume.
func (c *Client) ResumeWorker(ctx context.Context, id string) (*Worker, error) {
	return c.lifecycleAction(ctx, id, "resume")
}
