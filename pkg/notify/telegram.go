package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// TelegramNotifier sends messages through the Bot API. A rate limiter keeps
// us inside Telegram's per-chat throughput; bursts of simultaneous alerts
// queue instead of getting 429'd.
type TelegramNotifier struct {
	token   string
	chatID  string
	client  *http.Client
	limiter *rate.Limiter
}

func NewTelegramNotifier(token, chatID string, client *http.Client) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 2),
	}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Send delivers one Markdown message with the trade-link keyboard, retrying
// transient failures.
func (t *TelegramNotifier) Send(ctx context.Context, text, tokenAddress string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	payload := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	if tokenAddress != "" {
		payload["reply_markup"] = inlineKeyboard(tokenAddress)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		lastErr = t.post(ctx, url, body)
		if lastErr == nil {
			return nil
		}
		log.Warn().Err(lastErr).Int("attempt", attempt).Msg("telegram send failed")
	}
	return lastErr
}

func (t *TelegramNotifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("telegram HTTP %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// inlineKeyboard builds the trade/chart shortcut buttons under each alert.
func inlineKeyboard(address string) map[string]any {
	return map[string]any{
		"inline_keyboard": [][]map[string]string{{
			{"text": "⚡ Trade on Jupiter", "url": "https://jup.ag/swap/SOL-" + address},
			{"text": "📊 Chart", "url": "https://dexscreener.com/solana/" + address},
		}},
	}
}
