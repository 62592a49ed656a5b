package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Default configuration values.
const (
	DefaultTelegramTimeout = 10 * time.Second
	telegramAPIBase        = "https://api.telegram.org"
)

// Telegram delivers notifications through the Telegram bot API. Delivery is
// fire-and-forget: failures are logged and never surfaced to the caller.
type Telegram struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
	logger  *log.Logger
}

// TelegramOption configures Telegram.
type TelegramOption func(*Telegram)

// WithTelegramBaseURL overrides the API base URL, for tests.
func WithTelegramBaseURL(baseURL string) TelegramOption {
	return func(t *Telegram) {
		t.baseURL = baseURL
	}
}

// WithTelegramHTTPClient sets a custom http.Client.
func WithTelegramHTTPClient(client *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.client = client
	}
}

// WithTelegramLogger sets the logger for delivery failures.
func WithTelegramLogger(logger *log.Logger) TelegramOption {
	return func(t *Telegram) {
		t.logger = logger
	}
}

// NewTelegram creates a Telegram notifier for a bot token and chat.
func NewTelegram(token, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		baseURL: telegramAPIBase,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: DefaultTelegramTimeout},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ Notifier = (*Telegram)(nil)

func (t *Telegram) Send(ctx context.Context, kind Kind, message string) {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    fmt.Sprintf("[%s] %s", kind, message),
	})
	if err != nil {
		t.logger.Printf("[notify] telegram marshal failed: %v", err)
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.logger.Printf("[notify] telegram request failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Printf("[notify] telegram send failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.logger.Printf("[notify] telegram send returned %d: %s", resp.StatusCode, body)
	}
}
