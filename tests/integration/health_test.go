//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHealth_Liveness(t *testing.T) {
	resp := doGet(t, "/livez", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestHealth_Readiness(t *testing.T) {
	resp := doGet(t, "/readyz", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestRateLimitHeadersPresent(t *testing.T) {
	resp := doGet(t, "/api/products", testAPIKey)
	defer resp.Body.Close()

	if resp.Header.Get("X-RateLimit-Limit") == "" {
		t.Error("X-RateLimit-Limit header missing")
	}
	if resp.Header.Get("X-Request-Id") == "" && resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
