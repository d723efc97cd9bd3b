// Package llm provides the wire types for the Gemini generateContent API and a
// blocking client that turns a plain-text prompt into generated text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientConfig is the Gemini client configuration.
type ClientConfig struct {
	// APIURL is the full generateContent endpoint, e.g.
	// "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	APIURL string

	// APIKey is sent as the "key" query parameter.
	APIKey string

	// Timeout bounds a single round trip. Zero means no client-side timeout.
	Timeout time.Duration
}

// GeminiClient issues one synchronous POST per completion. It keeps no state
// between calls and never retries.
type GeminiClient struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGeminiClient creates a new GeminiClient.
func NewGeminiClient(config ClientConfig, logger *zap.Logger) (*GeminiClient, error) {
	if config.APIURL == "" {
		return nil, fmt.Errorf("gemini api url is required")
	}
	if _, err := url.Parse(config.APIURL); err != nil {
		return nil, fmt.Errorf("invalid gemini api url: %w", err)
	}

	return &GeminiClient{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// APIKeyConfigured reports whether a non-blank API key is set.
func (g *GeminiClient) APIKeyConfigured() bool {
	return strings.TrimSpace(g.config.APIKey) != ""
}

// Complete sends the prompt to the provider and returns the generated text.
// A well-formed envelope without generated text yields a fallback string;
// everything else that goes wrong is an error.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := g.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to get AI response from Gemini API: %w", err)
	}
	return text, nil
}

func (g *GeminiClient) complete(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(NewGenerateRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint, err := g.endpoint()
	if err != nil {
		return "", err
	}

	g.logger.Debug("sending completion request",
		zap.String("url", g.config.APIURL),
		zap.Int("body_size", len(reqBody)),
		zap.String("prompt_preview", truncate(prompt, 50)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", &APIError{StatusCode: httpResp.StatusCode, Body: string(body)}
	}

	text, err := ExtractText(body)
	if err != nil {
		return "", err
	}

	g.logger.Debug("received completion",
		zap.Int("status", httpResp.StatusCode),
		zap.String("content_preview", truncate(text, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return text, nil
}

// endpoint returns the configured URL with the API key query parameter set.
func (g *GeminiClient) endpoint() (string, error) {
	u, err := url.Parse(g.config.APIURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}

	q := u.Query()
	q.Set("key", g.config.APIKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
