// Package gpt provides the client for the language-model endpoint. One
// request is sent per user turn; the reply text is pulled out of the
// response body by an ordered chain of extractors so that several upstream
// response shapes are understood.
package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// Defaults for the public proxy the client was built against.
const (
	DefaultEndpoint = "https://openai-proxy-ucgy.onrender.com/v1/responses"
	DefaultModel    = "gpt-4.1-mini"
)

// Compile-time interface check.
var _ domain.Requester = (*Client)(nil)

// ── Wire types ───────────────────────────────────────────────────

// payload is the request body sent to the endpoint.
type payload struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ── Client ───────────────────────────────────────────────────────

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithModel overrides the default model name.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithAPIKey sends the key as a bearer token. The public proxy needs none.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// Client talks to a responses-style endpoint.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
	log      *logger.Logger
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string, log *logger.Logger, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		model:    DefaultModel,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string { return c.model }

// Respond sends the input and returns the extracted reply. A body that is
// valid JSON but matches none of the known shapes yields FallbackReply and
// no error; transport failures and non-JSON bodies are errors.
func (c *Client) Respond(ctx context.Context, input string) (string, error) {
	jsonData, err := json.Marshal(payload{Model: c.model, Input: input})
	if err != nil {
		return "", fmt.Errorf("gpt: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("gpt: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.Debug("POST %s (%d bytes)", c.endpoint, len(jsonData))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gpt: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gpt: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("endpoint answered %s: %s", resp.Status, truncate(string(respBody), 200))
	}

	reply, err := ParseReply(respBody)
	if err != nil {
		return "", err
	}
	c.log.Debug("reply (%d chars): %s", len(reply), truncate(reply, 120))
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
