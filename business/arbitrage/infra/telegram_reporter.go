package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	"github.com/crossarb/crossarb/internal/logger"
)

// TelegramReporter delivers opportunity and transfer notifications via the
// Telegram Bot API. Delivery failures are logged, never propagated: losing a
// notification must not affect the cycle.
type TelegramReporter struct {
	apiURL string
	token  string
	chatID string
	client *http.Client
	log    logger.LoggerInterface
}

// NewTelegramReporter creates a TelegramReporter for the given bot token and
// chat ID.
func NewTelegramReporter(token, chatID string, log logger.LoggerInterface) *TelegramReporter {
	return &TelegramReporter{
		apiURL: "https://api.telegram.org",
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Report sends an opportunity summary.
func (t *TelegramReporter) Report(ctx context.Context, opp *domain.Opportunity) {
	status := "executable"
	if !opp.Plan.Executable {
		status = "insufficient balance"
	}
	text := fmt.Sprintf(
		"*Arbitrage: %s*\nbuy %s @ $%s\nsell %s @ $%s\nnet $%s (%s%%)\nvolume %s\nstatus: %s",
		opp.Symbol,
		opp.BuyVenue, opp.BuyPrice.StringFixed(6),
		opp.SellVenue, opp.SellPrice.StringFixed(6),
		opp.Profit.NetProfit.StringFixed(6),
		opp.Profit.NetProfitPercent.StringFixed(2),
		opp.Plan.RequiredAmount.StringFixed(6),
		status,
	)
	t.send(ctx, text)
}

// ReportTransfer sends a transfer outcome notification.
func (t *TelegramReporter) ReportTransfer(ctx context.Context, rec domain.TransferRecord) {
	text := fmt.Sprintf(
		"*Transfer %s*\n%s %s\n%s -> %s",
		rec.Status,
		rec.Amount.StringFixed(6), rec.Symbol,
		rec.FromVenue, rec.ToVenue,
	)
	if rec.Reason != "" {
		text += "\nreason: " + rec.Reason
	}
	t.send(ctx, text)
}

func (t *TelegramReporter) send(ctx context.Context, text string) {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)

	payload := map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.log.Warn(ctx, "telegram: marshal payload failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.log.Warn(ctx, "telegram: create request failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Warn(ctx, "telegram: send failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		t.log.Warn(ctx, "telegram: unexpected status",
			"status", resp.StatusCode, "body", string(respBody))
	}
}
