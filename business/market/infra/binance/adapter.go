// Package binance implements the Binance venue adapter.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
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
	defaultBaseURL = "https://api.binance.com"

	tickerEndpoint   = "/api/v3/ticker/price"
	accountEndpoint  = "/api/v3/account"
	withdrawEndpoint = "/sapi/v1/capital/withdraw/apply"

	httpTimeout = 10 * time.Second

	// Binance allows 1200 request weight per minute; stay well under it.
	requestsPerMinute = 600
)

// Config holds the adapter's credentials and endpoint.
type Config struct {
	BaseURL   string
	APIKey    string
	SecretKey string
}

// Adapter is the Binance implementation of the venue capability interface.
// Settlement currency is USDT.
type Adapter struct {
	client  httpclient.Client
	config  Config
	logger  logger.LoggerInterface
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Breaker[decimal.Decimal]
}

// New creates a Binance adapter. Missing credentials are an initialization
// error: the caller excludes the venue from the active set.
func New(cfg Config, log logger.LoggerInterface) (*Adapter, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, apperror.New(apperror.CodeVenueInitFailed,
			apperror.WithContext("binance: api key and secret key are required"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(httpTimeout),
		httpclient.WithHeaders(map[string]string{
			"Accept":       "application/json",
			"X-MBX-APIKEY": cfg.APIKey,
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
		breaker: circuitbreaker.New[decimal.Decimal](circuitbreaker.DefaultConfig("binance-ticker")),
	}, nil
}

// Name implements the venue capability interface.
func (a *Adapter) Name() string { return "binance" }

// BaseCurrency implements the venue capability interface.
func (a *Adapter) BaseCurrency() string { return "USDT" }

// PairFor maps BTC -> BTCUSDT.
func (a *Adapter) PairFor(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(s, "USDT") {
		return s
	}
	return s + "USDT"
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// FetchTicker returns the last price for a native pair in USDT.
func (a *Adapter) FetchTicker(ctx context.Context, nativeSymbol string) (decimal.Decimal, error) {
	return a.breaker.Execute(func() (decimal.Decimal, error) {
		if err := a.limiter.Wait(ctx); err != nil {
			return decimal.Zero, err
		}

		var result tickerResponse
		resp, err := a.client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "ticker")),
			httpclient.WithResponseErrorHandler(errorHandler),
		).
			SetQueryParam("symbol", nativeSymbol).
			SetResult(&result).
			Get(ctx, tickerEndpoint)
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithCause(err),
				apperror.WithContext("binance ticker "+nativeSymbol))
		}
		if resp.IsError() {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithContext(fmt.Sprintf("binance ticker %s: HTTP %d", nativeSymbol, resp.StatusCode)))
		}

		price, err := decimal.NewFromString(result.Price)
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithCause(err),
				apperror.WithContext("binance ticker "+nativeSymbol+": unparseable price"))
		}
		return price, nil
	})
}

type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// FetchBalances returns all asset balances via the signed account endpoint.
func (a *Adapter) FetchBalances(ctx context.Context) (domain.BalanceSheet, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result accountResponse
	resp, err := a.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "account")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetResult(&result).
		Get(ctx, accountEndpoint+"?"+a.sign(url.Values{}))
	if err != nil {
		return nil, apperror.New(apperror.CodeBalanceFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext("binance account"))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeBalanceFetchFailed,
			apperror.WithContext(fmt.Sprintf("binance account: HTTP %d", resp.StatusCode)))
	}

	sheet := make(domain.BalanceSheet, len(result.Balances))
	for _, b := range result.Balances {
		free, errF := decimal.NewFromString(b.Free)
		locked, errL := decimal.NewFromString(b.Locked)
		if errF != nil || errL != nil {
			continue
		}
		sheet[b.Asset] = domain.Balance{Free: free, Locked: locked}
	}
	return sheet, nil
}

// Transfer submits a withdrawal via the signed capital withdraw endpoint.
func (a *Adapter) Transfer(ctx context.Context, req domain.TransferRequest) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("coin", strings.ToUpper(req.Symbol))
	params.Set("address", req.Address)
	params.Set("amount", req.Amount.String())
	if req.Tag != "" {
		params.Set("addressTag", req.Tag)
	}
	if req.Network != "" {
		params.Set("network", req.Network)
	}

	var result struct {
		ID string `json:"id"`
	}
	resp, err := a.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "withdraw")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(a.sign(params)).
		SetResult(&result).
		Post(ctx, withdrawEndpoint)
	if err != nil {
		return apperror.New(apperror.CodeTransferFailed,
			apperror.WithCause(err),
			apperror.WithContext("binance withdraw "+req.Symbol))
	}
	if resp.IsError() || result.ID == "" {
		return apperror.New(apperror.CodeTransferFailed,
			apperror.WithContext(fmt.Sprintf("binance withdraw %s: HTTP %d %s",
				req.Symbol, resp.StatusCode, resp.String())))
	}

	a.logger.Info(ctx, "binance withdrawal accepted",
		"symbol", req.Symbol, "amount", req.Amount.String(), "id", result.ID)
	return nil
}

// sign adds a timestamp, encodes the params, and appends the HMAC-SHA256
// signature last, per the Binance signed endpoint scheme. The returned string
// is the exact wire payload; it must not be re-encoded.
func (a *Adapter) sign(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	payload := params.Encode()
	mac := hmac.New(sha256.New, []byte(a.config.SecretKey))
	mac.Write([]byte(payload))
	return payload + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
