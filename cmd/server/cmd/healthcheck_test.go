package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProbeReadiness(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantStatus string
		wantErr    string
	}{
		{name: "healthy", statusCode: http.StatusOK, body: `{"status":"healthy"}`, wantStatus: "healthy"},
		{name: "degraded", statusCode: http.StatusOK, body: `{"status":"degraded"}`, wantStatus: "degraded"},
		{name: "unhealthy", statusCode: http.StatusServiceUnavailable, body: `{"status":"unhealthy"}`, wantErr: "status 503"},
		{name: "shutting down", statusCode: http.StatusServiceUnavailable, body: `{"status":"shutting_down"}`, wantErr: "shutting_down"},
		{name: "unknown status", statusCode: http.StatusOK, body: `{"status":"starting"}`, wantErr: "status=starting"},
		{name: "invalid body", statusCode: http.StatusOK, body: `not json`, wantErr: "parse health check response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/readyz" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			status, err := probeReadiness(context.Background(), server.Client(), server.URL+"/readyz")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, status)
			}
		})
	}
}

func TestProbeReadinessUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/readyz"
	server.Close()

	if _, err := probeReadiness(context.Background(), http.DefaultClient, url); err == nil {
		t.Error("expected error for a closed server")
	}
}

func TestHealthcheckCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","checks":{}}`))
	}))
	defer server.Close()

	output, err := executeCommand(t, "healthcheck", "--url", server.URL+"/readyz", "--timeout", "2s")
	if err != nil {
		t.Fatalf("healthcheck failed: %v", err)
	}
	if strings.TrimSpace(output) != "healthy" {
		t.Errorf("expected 'healthy', got %q", output)
	}
}
