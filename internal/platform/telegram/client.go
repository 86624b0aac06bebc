package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiBase = "https://api.telegram.org/bot"

type Client struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return NewClientWithOptions(token, apiBase, &http.Client{Timeout: 15 * time.Second})
}

func NewClientWithOptions(token, base string, hc *http.Client) *Client {
	if base == "" {
		base = apiBase
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		token:      token,
		apiBase:    strings.TrimRight(base, "/"),
		httpClient: hc,
	}
}

// SendMessage sends text as Markdown and resends it as plain text when
// Telegram cannot parse the entities.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	err := c.sendJSON(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}, nil)
	if err == nil || !isEntityParseError(err) {
		return err
	}
	return c.sendJSON(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

// GetMe returns the bot account behind the token.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	var u User
	err := c.sendJSON(ctx, "getMe", map[string]any{}, &u)
	return u, err
}

func (c *Client) sendJSON(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", method, err)
	}

	url := fmt.Sprintf("%s%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s read: %w", method, err)
	}

	var env apiResponse
	_ = json.Unmarshal(respBody, &env)
	if resp.StatusCode != http.StatusOK || !env.OK {
		desc := env.Description
		if desc == "" {
			desc = strings.TrimSpace(string(respBody))
		}
		return &APIError{Method: method, StatusCode: resp.StatusCode, Description: desc}
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("%s decode: %w", method, err)
		}
	}
	return nil
}

func isEntityParseError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Description), "can't parse entities")
}
