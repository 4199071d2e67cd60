// Package chatclient calls the external chat service once a match is created.
// The call is fire-and-forget from the matcher's point of view: a failure is
// logged by the caller and never rolls back the match.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type createChatRequest struct {
	UserA          string `json:"user_a"`
	UserB          string `json:"user_b"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CreateChat opens a chat room between the two matched users. The idempotency
// key makes retries safe on the chat service side.
func (c *Client) CreateChat(ctx context.Context, userA, userB string) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("chat client is not configured")
	}
	if userA == "" || userB == "" {
		return fmt.Errorf("both user ids are required")
	}

	payload, err := json.Marshal(createChatRequest{
		UserA:          userA,
		UserB:          userB,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("marshal create chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chats", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("create chat: unexpected status %d", resp.StatusCode)
	}
	return nil
}
