// Package linebot pushes text messages through the LINE Messaging API.
package linebot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is the LINE push message endpoint.
const DefaultEndpoint = "https://api.line.me/v2/bot/message/push"

// MaxTextLength is the longest text message LINE accepts.
const MaxTextLength = 5000

var ErrNotConfigured = errors.New("linebot: channel access token is not configured")

// Pusher delivers a text message to a LINE user, group or room.
type Pusher interface {
	PushText(ctx context.Context, to, text string) error
}

type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

func NewClient(endpoint, accessToken string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// APIError is a non-2xx answer from the Messaging API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("linebot: push failed with status %d: %s", e.StatusCode, e.Body)
}

// PushText implements Pusher.
func (c *Client) PushText(ctx context.Context, to, text string) error {
	if c.accessToken == "" {
		return ErrNotConfigured
	}
	if r := []rune(text); len(r) > MaxTextLength {
		text = string(r[:MaxTextLength-1]) + "…"
	}

	body, err := json.Marshal(pushRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("linebot: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("linebot: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("linebot: push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
