package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthReportsAllChecks(t *testing.T) {
	s := NewServer(0, "1.2.3")
	s.RegisterCheck("venue.binance", func(context.Context) (bool, string) {
		return true, ""
	})
	s.RegisterCheck("venue.indodax", func(context.Context) (bool, string) {
		return false, "auth rejected"
	})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if report.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", report.Status)
	}
	if report.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", report.Version)
	}
	if !report.Checks["venue.binance"].Healthy {
		t.Error("binance check should be healthy")
	}
	if c := report.Checks["venue.indodax"]; c.Healthy || c.Message != "auth rejected" {
		t.Errorf("indodax check = %+v, want unhealthy with message", c)
	}
}

func TestHealthAllHealthy(t *testing.T) {
	s := NewServer(0, "dev")
	s.RegisterCheck("venue.kucoin", func(context.Context) (bool, string) {
		return true, ""
	})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyFailsOnAnyUnhealthyCheck(t *testing.T) {
	s := NewServer(0, "dev")
	s.RegisterCheck("venue.kucoin", func(context.Context) (bool, string) {
		return false, "timeout"
	})

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	rec = httptest.NewRecorder()
	s.handleLive(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want %d", rec.Code, http.StatusOK)
	}
}
