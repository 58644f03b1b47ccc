// Package notify delivers outbound alerts through the Telegram Bot API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultAPIURL  = "https://api.telegram.org"
	DefaultTimeout = 10 * time.Second
)

type Telegram struct {
	token   string
	baseURL string
	client  *http.Client
}

type sendMessagePayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// NewTelegram returns a notifier. An empty token yields an unconfigured
// notifier rather than an error.
func NewTelegram(token, baseURL string, timeout time.Duration) *Telegram {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Telegram{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *Telegram) Configured() bool {
	return t.token != ""
}

func (t *Telegram) Notify(ctx context.Context, chatID, text string) error {
	if !t.Configured() {
		return fmt.Errorf("telegram bot token not configured")
	}

	jsonData, err := json.Marshal(sendMessagePayload{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.client.Do(req)
	if err != nil {
		// The url carries the token; do not leak it through the error.
		return fmt.Errorf("telegram sendMessage: %s", redact(err.Error(), t.token))
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("telegram sendMessage failed with status %d: %s", res.StatusCode, string(body))
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
