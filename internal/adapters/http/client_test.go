package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"

	"github.com/meshkit/meshdeploy/internal/domain"
	"github.com/meshkit/meshdeploy/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "test-key", srv.Client(), mockLogger{})
	// No backoff delay in tests.
	c.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxRetries)
	}
	return c
}

func testSpec() domain.DeploymentSpec {
	return domain.DeploymentSpec{
		Name:          "mesh-app",
		ResourceGroup: "staging",
		Image:         "registry.example.com/mesh-app:1.0",
		Replicas:      2,
	}
}

func TestCreateOrUpdateSendsSpec(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody deploymentRequest

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.CreateOrUpdate(context.Background(), testSpec()); err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if gotPath != "PUT /v1/deployments/staging/mesh-app" {
		t.Errorf("request = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody.Image != "registry.example.com/mesh-app:1.0" || gotBody.Replicas != 2 {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestCreateOrUpdateRetriesTransientFailures(t *testing.T) {
	var calls int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.CreateOrUpdate(context.Background(), testSpec()); err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestCreateOrUpdateDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such resource group", http.StatusBadRequest)
	}))

	if err := c.CreateOrUpdate(context.Background(), testSpec()); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1 (4xx is permanent)", n)
	}
}

func TestDelete(t *testing.T) {
	var gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))

	if err := c.Delete(context.Background(), "mesh-app", "staging"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotPath != "DELETE /v1/deployments/staging/mesh-app" {
		t.Errorf("request = %q", gotPath)
	}
}

func TestStatusQueries(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var status string
		switch r.URL.Path {
		case "/v1/deployments/staging/mesh-app/status/application":
			status = "Creating"
		case "/v1/deployments/staging/mesh-app/status/service":
			status = "Pending"
		case "/v1/deployments/staging/mesh-app/status/agent":
			if r.URL.Query().Get("replica") != "1" {
				t.Errorf("replica = %q, want 1", r.URL.Query().Get("replica"))
			}
			status = "Ready"
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(statusResponse{Status: status})
	}))

	app, err := c.ApplicationStatus(context.Background(), "mesh-app", "staging")
	if err != nil || app != domain.ApplicationCreating {
		t.Errorf("ApplicationStatus = %v, %v", app, err)
	}
	svc, err := c.ServiceStatus(context.Background(), "mesh-app", "staging")
	if err != nil || svc != domain.ServicePending {
		t.Errorf("ServiceStatus = %v, %v", svc, err)
	}
	agent, err := c.AgentStatus(context.Background(), "mesh-app", "staging", 1, false)
	if err != nil || agent != domain.AgentReady {
		t.Errorf("AgentStatus = %v, %v", agent, err)
	}
}

func TestStatusQueryDoesNotRetry(t *testing.T) {
	var calls int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := c.ApplicationStatus(context.Background(), "mesh-app", "staging"); err == nil {
		t.Fatal("expected error for 500 response")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestUnknownStatusValuesParseToUnknown(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(statusResponse{Status: "Provisioning"})
	}))

	app, err := c.ApplicationStatus(context.Background(), "mesh-app", "staging")
	if err != nil {
		t.Fatalf("ApplicationStatus: %v", err)
	}
	if app != domain.ApplicationUnknown {
		t.Errorf("status = %v, want Unknown", app)
	}
}
