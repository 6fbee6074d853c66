// Package notify sends Telegram messages through the Bot API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramClient talks to the Telegram Bot API for one bot token.
type TelegramClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewTelegramClient creates a client. An empty token produces a client
// whose sends are no-ops, so callers need no nil checks.
func NewTelegramClient(token string) *TelegramClient {
	return &TelegramClient{
		token:      token,
		baseURL:    telegramAPIBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether the client holds a bot token.
func (c *TelegramClient) Enabled() bool {
	return c.token != ""
}

// SendMessage delivers a text message to one chat.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string) error {
	if !c.Enabled() {
		return nil
	}

	reqBody := map[string]string{
		"chat_id": chatID,
		"text":    text,
	}
	body, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram error: %s", result.Description)
	}
	return nil
}
