// Package kucoin implements the KuCoin venue adapter.
package kucoin

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/crossarb/crossarb/internal/circuitbreaker"
	"github.com/crossarb/crossarb/internal/httpclient"
	"github.com/crossarb/crossarb/internal/logger"
	"github.com/crossarb/crossarb/internal/ratelimit"
)

const (
	defaultBaseURL = "https://api.kucoin.com"

	tickerEndpoint   = "/api/v1/market/orderbook/level1"
	accountsEndpoint = "/api/v1/accounts"
	withdrawEndpoint = "/api/v2/withdrawals"

	httpTimeout = 10 * time.Second

	requestsPerMinute = 300

	successCode = "200000"
)

// Config holds the adapter's credentials and endpoint.
type Config struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Passphrase string
}

// Adapter is the KuCoin implementation of the venue capability interface.
// Settlement currency is USDT.
type Adapter struct {
	client  httpclient.Client
	config  Config
	logger  logger.LoggerInterface
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Breaker[decimal.Decimal]
}

// New creates a KuCoin adapter. Missing credentials are an initialization
// error: the caller excludes the venue from the active set.
func New(cfg Config, log logger.LoggerInterface) (*Adapter, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.Passphrase == "" {
		return nil, apperror.New(apperror.CodeVenueInitFailed,
			apperror.WithContext("kucoin: api key, secret and passphrase are required"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("kucoin"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(httpTimeout),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, apperror.New(apperror.CodeVenueInitFailed, apperror.WithCause(err))
	}

	return &Adapter{
		client:  client,
		config:  cfg,
		logger:  log,
		limiter: ratelimit.New(requestsPerMinute),
		breaker: circuitbreaker.New[decimal.Decimal](circuitbreaker.DefaultConfig("kucoin-ticker")),
	}, nil
}

// Name implements the venue capability interface.
func (a *Adapter) Name() string { return "kucoin" }

// BaseCurrency implements the venue capability interface.
func (a *Adapter) BaseCurrency() string { return "USDT" }

// PairFor maps BTC -> BTC-USDT.
func (a *Adapter) PairFor(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.ReplaceAll(s, "_", "-")
	if strings.HasSuffix(s, "-USDT") {
		return s
	}
	return s + "-USDT"
}

// envelope is the common KuCoin response wrapper.
type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (e *envelope) ok() bool { return e.Code == successCode }

// FetchTicker returns the last price for a native pair in USDT.
func (a *Adapter) FetchTicker(ctx context.Context, nativeSymbol string) (decimal.Decimal, error) {
	return a.breaker.Execute(func() (decimal.Decimal, error) {
		if err := a.limiter.Wait(ctx); err != nil {
			return decimal.Zero, err
		}

		query := "symbol=" + nativeSymbol

		var result envelope
		resp, err := a.client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "ticker")),
		).
			SetHeaders(a.sign("GET", tickerEndpoint+"?"+query, "")).
			SetResult(&result).
			Get(ctx, tickerEndpoint+"?"+query)
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithCause(err),
				apperror.WithContext("kucoin ticker "+nativeSymbol))
		}
		if resp.StatusCode == 401 {
			return decimal.Zero, apperror.New(apperror.CodeVenueAuthFailed,
				apperror.WithContext("kucoin: check api key, secret and passphrase"))
		}
		if resp.IsError() || !result.ok() {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithContext(fmt.Sprintf("kucoin ticker %s: HTTP %d code %s",
					nativeSymbol, resp.StatusCode, result.Code)))
		}

		var level1 struct {
			Price string `json:"price"`
		}
		if err := json.Unmarshal(result.Data, &level1); err != nil || level1.Price == "" {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithContext("kucoin ticker "+nativeSymbol+": price missing in response"))
		}

		price, err := decimal.NewFromString(level1.Price)
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithCause(err),
				apperror.WithContext("kucoin ticker "+nativeSymbol+": unparseable price"))
		}
		return price, nil
	})
}

type accountEntry struct {
	Currency  string `json:"currency"`
	Type      string `json:"type"`
	Available string `json:"available"`
	Holds     string `json:"holds"`
}

// FetchBalances returns trade-account balances via the signed accounts endpoint.
func (a *Adapter) FetchBalances(ctx context.Context) (domain.BalanceSheet, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result envelope
	resp, err := a.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "accounts")),
	).
		SetHeaders(a.sign("GET", accountsEndpoint, "")).
		SetResult(&result).
		Get(ctx, accountsEndpoint)
	if err != nil {
		return nil, apperror.New(apperror.CodeBalanceFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext("kucoin accounts"))
	}
	if resp.IsError() || !result.ok() {
		return nil, apperror.New(apperror.CodeBalanceFetchFailed,
			apperror.WithContext(fmt.Sprintf("kucoin accounts: HTTP %d code %s msg %s",
				resp.StatusCode, result.Code, result.Msg)))
	}

	var entries []accountEntry
	if err := json.Unmarshal(result.Data, &entries); err != nil {
		return nil, apperror.New(apperror.CodeBalanceFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext("kucoin accounts: unexpected payload"))
	}

	sheet := make(domain.BalanceSheet, len(entries))
	for _, e := range entries {
		if e.Type != "trade" {
			continue
		}
		free, errF := decimal.NewFromString(e.Available)
		holds, errH := decimal.NewFromString(e.Holds)
		if errF != nil || errH != nil {
			continue
		}
		sheet[e.Currency] = domain.Balance{Free: free, Locked: holds}
	}
	return sheet, nil
}

// Transfer submits a withdrawal via the signed withdrawals endpoint.
func (a *Adapter) Transfer(ctx context.Context, req domain.TransferRequest) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	body := map[string]string{
		"currency": strings.ToUpper(req.Symbol),
		"address":  req.Address,
		"amount":   req.Amount.String(),
		"chain":    a.chainFor(req),
	}
	if req.Tag != "" {
		body["memo"] = req.Tag
	}

	// The signature covers the exact JSON bytes sent, so marshal once and
	// send the same bytes as the body.
	payload, err := json.Marshal(body)
	if err != nil {
		return apperror.New(apperror.CodeTransferFailed, apperror.WithCause(err))
	}

	var result envelope
	resp, err := a.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "withdraw")),
	).
		SetHeaders(a.sign("POST", withdrawEndpoint, string(payload))).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&result).
		Post(ctx, withdrawEndpoint)
	if err != nil {
		return apperror.New(apperror.CodeTransferFailed,
			apperror.WithCause(err),
			apperror.WithContext("kucoin withdraw "+req.Symbol))
	}
	if resp.IsError() || !result.ok() {
		return apperror.New(apperror.CodeTransferFailed,
			apperror.WithContext(fmt.Sprintf("kucoin withdraw %s: HTTP %d code %s msg %s",
				req.Symbol, resp.StatusCode, result.Code, result.Msg)))
	}

	a.logger.Info(ctx, "kucoin withdrawal accepted",
		"symbol", req.Symbol, "amount", req.Amount.String())
	return nil
}

// chainFor picks the withdrawal chain: explicit request network first, then a
// per-asset default.
func (a *Adapter) chainFor(req domain.TransferRequest) string {
	if req.Network != "" {
		return req.Network
	}
	switch strings.ToUpper(req.Symbol) {
	case "BTC":
		return "BTC"
	case "BNB":
		return "BEP20"
	case "XRP":
		return "XRP"
	default:
		return "ERC20"
	}
}

// sign builds the KC-API v2 authentication headers. The signature is the
// base64 HMAC-SHA256 of timestamp + method + endpoint(+query) + body; the
// passphrase is itself HMAC-signed with the API secret.
func (a *Adapter) sign(method, endpointWithQuery, body string) map[string]string {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	strToSign := now + method + endpointWithQuery + body

	mac := hmac.New(sha256.New, []byte(a.config.APISecret))
	mac.Write([]byte(strToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	pmac := hmac.New(sha256.New, []byte(a.config.APISecret))
	pmac.Write([]byte(a.config.Passphrase))
	passphrase := base64.StdEncoding.EncodeToString(pmac.Sum(nil))

	return map[string]string{
		"KC-API-KEY":         a.config.APIKey,
		"KC-API-SIGN":        signature,
		"KC-API-TIMESTAMP":   now,
		"KC-API-PASSPHRASE":  passphrase,
		"KC-API-KEY-VERSION": "2",
	}
}
