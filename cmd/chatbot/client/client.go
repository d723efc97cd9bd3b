// Package client is a small HTTP client for a running chatbot server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/chatbot/api"
)

// DefaultServerURL is where the CLI looks for a server when none is given.
const DefaultServerURL = "http://localhost:8080"

// Client talks to a chatbot server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// completions can be slow
			Timeout: 5 * time.Minute,
		},
	}
}

// ServerError is a non-2xx answer from the server.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Send posts one chat message. An empty sessionID asks the server for a new session.
func (c *Client) Send(ctx context.Context, message, sessionID string) (*api.ChatResponse, error) {
	body, err := json.Marshal(api.ChatRequest{UserMessage: message, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newServerError(resp.StatusCode, respBody)
	}

	var result api.ChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	return &result, nil
}

// Health checks the server's liveness route.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat/health", nil)
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", newServerError(resp.StatusCode, body)
	}

	return string(body), nil
}

// newServerError prefers the message from a JSON error envelope and falls
// back to the raw body.
func newServerError(code int, body []byte) *ServerError {
	var envelope api.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return &ServerError{StatusCode: code, Message: envelope.Message}
	}
	return &ServerError{StatusCode: code, Message: strings.TrimSpace(string(body))}
}
