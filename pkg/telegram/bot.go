package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiBase = "https://api.telegram.org"

type Bot struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewBot(token string) *Bot {
	return NewBotWithBase(apiBase, token, &http.Client{Timeout: 10 * time.Second})
}

// NewBotWithBase points the bot at another API host.
func NewBotWithBase(base, token string, client *http.Client) *Bot {
	return &Bot{
		token:   token,
		baseURL: strings.TrimRight(base, "/") + "/bot" + token,
		client:  client,
	}
}

func (b *Bot) SendMessage(ctx context.Context, chatID, text string) error {
	endpoint := b.baseURL + "/sendMessage"

	params := url.Values{}
	params.Add("chat_id", chatID)
	params.Add("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.Status, Code: resp.StatusCode}
	}

	return nil
}

// APIError is a non-200 answer from the Bot API. 4xx other than 429 will not heal on retry.
type APIError struct {
	Status string
	Code   int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: %s", e.Status)
}

func (e *APIError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}
