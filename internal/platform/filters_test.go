package platform

import (
	"testing"
	"time"
)

func TestWorkerFilter_Query(t *testing.T) {
	tests := []struct {
		name   string
		filter WorkerFilter
		want   string
	}{
		{"empty", WorkerFilter{}, ""},
		{"status only", WorkerFilter{Status: "running"}, "status=running"},
		{
			"all fields",
			WorkerFilter{Status: "paused", Role: "support", Page: 2, PageSize: 50},
			"page=2&pageSize=50&role=support&status=paused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Query().Encode(); got != tt.want {
				t.Errorf("Query() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActivityFilter_Query(t *testing.T) {
	since := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	filter := ActivityFilter{
		EmployeeID:    "w-1",
		Page:          1,
		PageSize:      20,
		EventType:     "task_completed",
		MinImportance: 3,
		Since:         since,
	}

	want := "employeeId=w-1&eventType=task_completed&minImportance=3&page=1&pageSize=20&since=2026-08-01T12%3A00%3A00Z"
	if got := filter.Query().Encode(); got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
}

func TestActivityFilter_QueryOmitsZeroValues(t *testing.T) {
	if got := (ActivityFilter{}).Query().Encode(); got != "" {
		t.Errorf("Query() = %q, want empty", got)
	}
}
