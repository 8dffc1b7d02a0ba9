package frankfurter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/internal/logger"
)

func newTestProvider(t *testing.T, cfg Config) *Provider {
	t.Helper()
	p, err := New(cfg, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestProviderOverrideWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("override must short-circuit the live lookup")
	}))
	defer server.Close()

	p := newTestProvider(t, Config{
		LookupURL: server.URL,
		Override:  decimal.RequireFromString("16000"),
		Fallback:  decimal.RequireFromString("15000"),
	})

	got := p.USDToLocal(context.Background(), "IDR")
	if !got.Equal(decimal.RequireFromString("16000")) {
		t.Errorf("rate = %s, want 16000", got)
	}
}

func TestProviderLiveLookupAndPersistence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from"); got != "USD" {
			t.Errorf("from = %q, want USD", got)
		}
		if got := r.URL.Query().Get("to"); got != "IDR" {
			t.Errorf("to = %q, want IDR", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"amount":1.0,"base":"USD","rates":{"IDR":15234.5}}`))
	}))
	defer server.Close()

	cacheFile := filepath.Join(t.TempDir(), "rates.json")
	p := newTestProvider(t, Config{
		LookupURL: server.URL,
		Fallback:  decimal.RequireFromString("15000"),
		CacheFile: cacheFile,
	})

	got := p.USDToLocal(context.Background(), "IDR")
	if !got.Equal(decimal.RequireFromString("15234.5")) {
		t.Fatalf("rate = %s, want 15234.5", got)
	}

	// The live rate must have been persisted for later fallback use.
	rate, ok := p.loadPersisted("IDR")
	if !ok {
		t.Fatal("live rate was not persisted")
	}
	if !rate.Equal(decimal.RequireFromString("15234.5")) {
		t.Errorf("persisted rate = %s, want 15234.5", rate)
	}
}

func TestProviderFallsBackToPersistedRate(t *testing.T) {
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"amount":1.0,"base":"USD","rates":{"IDR":15100}}`))
	}))

	cacheFile := filepath.Join(t.TempDir(), "rates.json")
	cfg := Config{
		LookupURL: live.URL,
		Fallback:  decimal.RequireFromString("15000"),
		CacheFile: cacheFile,
	}

	// Warm the cache with one successful lookup, then take the API away.
	warm := newTestProvider(t, cfg)
	warm.USDToLocal(context.Background(), "IDR")
	live.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	cfg.LookupURL = down.URL

	p := newTestProvider(t, cfg)
	got := p.USDToLocal(context.Background(), "IDR")
	if !got.Equal(decimal.RequireFromString("15100")) {
		t.Errorf("rate = %s, want persisted 15100", got)
	}
}

func TestProviderFallsBackToConfiguredDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := newTestProvider(t, Config{
		LookupURL: server.URL,
		Fallback:  decimal.RequireFromString("15000"),
		CacheFile: filepath.Join(t.TempDir(), "rates.json"),
	})

	got := p.USDToLocal(context.Background(), "IDR")
	if !got.Equal(decimal.RequireFromString("15000")) {
		t.Errorf("rate = %s, want configured default 15000", got)
	}
}
