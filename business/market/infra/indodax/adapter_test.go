package indodax

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/logger"
)

const testSecret = "test-secret"

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	a, err := New(Config{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		SecretKey: testSecret,
	}, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

// verifyTAPIRequest checks the Key/Sign headers against the raw form body and
// returns the decoded parameters.
func verifyTAPIRequest(t *testing.T, r *http.Request) url.Values {
	t.Helper()

	if got := r.Header.Get("Key"); got != "test-key" {
		t.Errorf("Key = %q, want test-key", got)
	}

	body, _ := io.ReadAll(r.Body)
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	if want := hex.EncodeToString(mac.Sum(nil)); r.Header.Get("Sign") != want {
		t.Errorf("Sign = %q, want HMAC-SHA512 of the body", r.Header.Get("Sign"))
	}

	params, err := url.ParseQuery(string(body))
	if err != nil {
		t.Fatalf("unparseable form body: %v", err)
	}
	if params.Get("timestamp") == "" {
		t.Fatal("form body carries no timestamp")
	}
	return params
}

func TestAdapterPairFor(t *testing.T) {
	a := newTestAdapter(t, "http://localhost")

	tests := []struct {
		symbol string
		want   string
	}{
		{symbol: "BTC", want: "btc_idr"},
		{symbol: "btc_idr", want: "btc_idr"},
		{symbol: " SHIB ", want: "shib_idr"},
	}
	for _, tt := range tests {
		if got := a.PairFor(tt.symbol); got != tt.want {
			t.Errorf("PairFor(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestAdapterFetchTicker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ticker/btc_idr" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ticker":{"high":"980000000","low":"960000000","last":"975000000"}}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	price, err := a.FetchTicker(context.Background(), "btc_idr")
	if err != nil {
		t.Fatalf("FetchTicker: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("975000000")) {
		t.Errorf("price = %s, want 975000000", price)
	}
}

func TestAdapterFetchBalances(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tapi" {
			t.Errorf("path = %s", r.URL.Path)
		}
		params := verifyTAPIRequest(t, r)
		if got := params.Get("method"); got != "getInfo" {
			t.Errorf("method = %q, want getInfo", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":1,"return":{
			"balance":{"idr":12500000,"btc":"0.005","xrp":0},
			"balance_hold":{"idr":0,"btc":"0.001","xrp":0}
		}}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	sheet, err := a.FetchBalances(context.Background())
	if err != nil {
		t.Fatalf("FetchBalances: %v", err)
	}

	// Asset keys are uppercased; numbers and strings both parse.
	if got := sheet.Free("IDR"); !got.Equal(decimal.RequireFromString("12500000")) {
		t.Errorf("Free(IDR) = %s, want 12500000", got)
	}
	if got := sheet.Free("BTC"); !got.Equal(decimal.RequireFromString("0.005")) {
		t.Errorf("Free(BTC) = %s, want 0.005", got)
	}
	if got := sheet["BTC"].Locked; !got.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("Locked(BTC) = %s, want 0.001", got)
	}
}

func TestAdapterFetchBalancesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":0,"error":"Invalid credentials"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	if _, err := a.FetchBalances(context.Background()); err == nil {
		t.Fatal("FetchBalances accepted a success=0 response")
	}
}

func TestAdapterTransfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := verifyTAPIRequest(t, r)
		if got := params.Get("method"); got != "withdrawCoin" {
			t.Errorf("method = %q, want withdrawCoin", got)
		}
		if got := params.Get("currency"); got != "XRP" {
			t.Errorf("currency = %q, want XRP", got)
		}
		if got := params.Get("withdraw_amount"); got != "25.5" {
			t.Errorf("withdraw_amount = %q, want 25.5", got)
		}
		if got := params.Get("withdraw_memo"); got != "12345" {
			t.Errorf("withdraw_memo = %q, want 12345", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":1,"return":{}}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	err := a.Transfer(context.Background(), domain.TransferRequest{
		Symbol:  "xrp",
		Amount:  decimal.RequireFromString("25.5"),
		Address: "rDeposit",
		Tag:     "12345",
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
}

func TestAdapterTransferRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":0,"error":"Insufficient balance."}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	err := a.Transfer(context.Background(), domain.TransferRequest{
		Symbol:  "BTC",
		Amount:  decimal.RequireFromString("10"),
		Address: "bc1qdeposit",
	})
	if err == nil {
		t.Fatal("Transfer accepted a success=0 response")
	}
}
