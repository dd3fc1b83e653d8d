package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/crewdeck/crewctl/internal/errors"
)

func TestClient_Login(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login must not carry a bearer token, got %q", r.Header.Get("Authorization"))
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Email != "a@b.com" {
			t.Errorf("unexpected email: %s", req.Email)
		}
		if req.TenantSlug != "acme" {
			t.Errorf("unexpected tenant slug: %s", req.TenantSlug)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(LoginResponse{
			Token:      "tok-123",
			UserID:     "user-1",
			TenantID:   "tenant-1",
			UserName:   "Ada",
			TenantName: "Acme",
			Role:       "admin",
		})
	}))

	client := NewClient(server.URL)
	resp, err := client.Login(context.Background(), "a@b.com", "acme")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if resp.Token != "tok-123" {
		t.Errorf("unexpected token: %s", resp.Token)
	}
	if resp.TenantName != "Acme" {
		t.Errorf("unexpected tenant name: %s", resp.TenantName)
	}
}

func TestClient_LoginValidation(t *testing.T) {
	client := NewClient("http://unused.invalid")

	tests := []struct {
		name       string
		email      string
		tenantSlug string
	}{
		{"empty email", "", "acme"},
		{"malformed email", "not-an-email", "acme"},
		{"empty tenant", "a@b.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Login(context.Background(), tt.email, tt.tenantSlug)
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Login() error = %v, want VALIDATE-001", err)
			}
		})
	}
}

func TestClient_BearerTokenAttached(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok-123")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(WorkerList{})
	}))

	client := NewClient(server.URL).WithToken("tok-123")
	if _, err := client.ListWorkers(context.Background(), WorkerFilter{}); err != nil {
		t.Fatalf("ListWorkers() error = %v", err)
	}
}

func TestClient_WithTokenDoesNotMutateReceiver(t *testing.T) {
	base := NewClient("http://api.example")
	authed := base.WithToken("tok-123")

	if base.Token() != "" {
		t.Errorf("base client token = %q, want empty", base.Token())
	}
	if authed.Token() != "tok-123" {
		t.Errorf("derived client token = %q, want tok-123", authed.Token())
	}

	// A second derivation leaves the first untouched.
	rotated := authed.WithToken("tok-456")
	if authed.Token() != "tok-123" {
		t.Errorf("first derived client mutated to %q", authed.Token())
	}
	if rotated.Token() != "tok-456" {
		t.Errorf("second derived client token = %q, want tok-456", rotated.Token())
	}
}

func TestClient_AuthFailureFiresHandlerOnce(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	fired := 0
	client := NewClient(server.URL, WithAuthErrorHandler(func() { fired++ })).WithToken("stale")

	_, err := client.ListWorkers(context.Background(), WorkerFilter{})
	if !errors.IsUnauthorized(err) {
		t.Fatalf("ListWorkers() error = %v, want authorization failure", err)
	}
	if fired != 1 {
		t.Errorf("auth handler fired %d times, want exactly 1", fired)
	}
}

func TestClient_ServerFailureSurfacesMessage(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "worker is already running"})
	}))

	client := NewClient(server.URL).WithToken("tok")
	_, err := client.StartWorker(context.Background(), "w-1")
	if err == nil {
		t.Fatal("StartWorker() expected error")
	}

	var crewErr *errors.CrewError
	if !errors.HasCode(err, errors.ErrCodeServer) {
		t.Fatalf("error = %v, want server failure", err)
	}
	if e, ok := err.(*errors.CrewError); ok {
		crewErr = e
	}
	if crewErr.Status != http.StatusConflict {
		t.Errorf("status = %d, want 409", crewErr.Status)
	}
	if crewErr.Message != "worker is already running" {
		t.Errorf("message = %q, want server message", crewErr.Message)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url)
	_, err := client.ListProviders(context.Background())
	if !errors.IsTransport(err) {
		t.Errorf("error = %v, want transport failure", err)
	}
}

func TestClient_AuthFailureNotRetried(t *testing.T) {
	calls := 0
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))

	client := NewClient(server.URL, WithAuthErrorHandler(func() {})).WithToken("stale")
	_, _ = client.GetWorker(context.Background(), "w-1")

	if calls != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry at this layer)", calls)
	}
}
