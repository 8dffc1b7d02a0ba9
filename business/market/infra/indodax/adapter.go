// Package indodax implements the Indodax venue adapter. Indodax settles in
// IDR, so its prices need FX conversion before they can join the USD matrix.
package indodax

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
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
	defaultBaseURL = "https://indodax.com"

	tapiEndpoint = "/tapi"

	httpTimeout = 10 * time.Second

	requestsPerMinute = 120
)

// Config holds the adapter's credentials and endpoint.
type Config struct {
	BaseURL   string
	APIKey    string
	SecretKey string
}

// Adapter is the Indodax implementation of the venue capability interface.
type Adapter struct {
	client  httpclient.Client
	config  Config
	logger  logger.LoggerInterface
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Breaker[decimal.Decimal]
}

// New creates an Indodax adapter. Missing credentials are an initialization
// error: the caller excludes the venue from the active set.
func New(cfg Config, log logger.LoggerInterface) (*Adapter, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, apperror.New(apperror.CodeVenueInitFailed,
			apperror.WithContext("indodax: api key and secret key are required"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("indodax"),
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
		breaker: circuitbreaker.New[decimal.Decimal](circuitbreaker.DefaultConfig("indodax-ticker")),
	}, nil
}

// Name implements the venue capability interface.
func (a *Adapter) Name() string { return "indodax" }

// BaseCurrency implements the venue capability interface.
func (a *Adapter) BaseCurrency() string { return "IDR" }

// PairFor maps BTC -> btc_idr.
func (a *Adapter) PairFor(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if strings.HasSuffix(s, "_idr") {
		return s
	}
	return s + "_idr"
}

// FetchTicker returns the last traded price for a native pair in IDR.
func (a *Adapter) FetchTicker(ctx context.Context, nativeSymbol string) (decimal.Decimal, error) {
	return a.breaker.Execute(func() (decimal.Decimal, error) {
		if err := a.limiter.Wait(ctx); err != nil {
			return decimal.Zero, err
		}

		var result struct {
			Ticker struct {
				Last string `json:"last"`
			} `json:"ticker"`
		}
		resp, err := a.client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "ticker")),
		).
			SetResult(&result).
			Get(ctx, "/api/ticker/"+nativeSymbol)
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithCause(err),
				apperror.WithContext("indodax ticker "+nativeSymbol))
		}
		if resp.IsError() || result.Ticker.Last == "" {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithContext(fmt.Sprintf("indodax ticker %s: HTTP %d", nativeSymbol, resp.StatusCode)))
		}

		price, err := decimal.NewFromString(result.Ticker.Last)
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithCause(err),
				apperror.WithContext("indodax ticker "+nativeSymbol+": unparseable price"))
		}
		return price, nil
	})
}

type tapiResponse struct {
	Success int    `json:"success"`
	Error   string `json:"error"`
	Return  struct {
		Balance     map[string]any `json:"balance"`
		BalanceHold map[string]any `json:"balance_hold"`
	} `json:"return"`
}

// FetchBalances returns all asset balances via the signed TAPI getInfo method.
func (a *Adapter) FetchBalances(ctx context.Context) (domain.BalanceSheet, error) {
	params := url.Values{}
	params.Set("method", "getInfo")

	var result tapiResponse
	if err := a.postTAPI(ctx, "getInfo", params, &result); err != nil {
		return nil, apperror.New(apperror.CodeBalanceFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext("indodax getInfo"))
	}
	if result.Success != 1 {
		return nil, apperror.New(apperror.CodeBalanceFetchFailed,
			apperror.WithContext("indodax getInfo: "+result.Error))
	}

	sheet := make(domain.BalanceSheet, len(result.Return.Balance))
	for asset, raw := range result.Return.Balance {
		free, ok := toDecimal(raw)
		if !ok {
			continue
		}
		locked, _ := toDecimal(result.Return.BalanceHold[asset])
		sheet[strings.ToUpper(asset)] = domain.Balance{Free: free, Locked: locked}
	}
	return sheet, nil
}

// Transfer submits a withdrawal via the signed TAPI withdrawCoin method.
func (a *Adapter) Transfer(ctx context.Context, req domain.TransferRequest) error {
	params := url.Values{}
	params.Set("method", "withdrawCoin")
	params.Set("currency", strings.ToUpper(req.Symbol))
	params.Set("withdraw_address", req.Address)
	params.Set("withdraw_amount", req.Amount.String())
	params.Set("withdraw_memo", req.Tag)

	var result tapiResponse
	if err := a.postTAPI(ctx, "withdrawCoin", params, &result); err != nil {
		return apperror.New(apperror.CodeTransferFailed,
			apperror.WithCause(err),
			apperror.WithContext("indodax withdraw "+req.Symbol))
	}
	if result.Success != 1 {
		return apperror.New(apperror.CodeTransferFailed,
			apperror.WithContext("indodax withdraw "+req.Symbol+": "+result.Error))
	}

	a.logger.Info(ctx, "indodax withdrawal accepted",
		"symbol", req.Symbol, "amount", req.Amount.String())
	return nil
}

// postTAPI sends a signed TAPI request. The Sign header is the HMAC-SHA512 of
// the exact form body, so the encoded payload is sent verbatim.
func (a *Adapter) postTAPI(ctx context.Context, method string, params url.Values, result any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	payload := params.Encode()

	mac := hmac.New(sha512.New, []byte(a.config.SecretKey))
	mac.Write([]byte(payload))

	resp, err := a.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", method)),
	).
		SetHeader("Key", a.config.APIKey).
		SetHeader("Sign", hex.EncodeToString(mac.Sum(nil))).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(payload).
		SetResult(result).
		Post(ctx, tapiEndpoint)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
	}
	return nil
}

// toDecimal converts a TAPI balance value, which may arrive as a JSON string
// or number.
func toDecimal(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
