// Package chat talks to an OpenAI-compatible chat-completions endpoint.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Roles of a chat message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultFallbackReply is returned by Reply when the remote call fails.
const DefaultFallbackReply = "Sorry, I can't answer your question right now. Please try again later or contact the administrator."

// Config holds chat service configuration.
type Config struct {
	Endpoint      string
	APIKey        string
	Model         string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
	FallbackReply string
}

// DefaultConfig returns the configuration used when fields are left empty.
func DefaultConfig() Config {
	return Config{
		Endpoint:      "https://api.siliconflow.cn/v1/chat/completions",
		Model:         "Qwen/Qwen2.5-7B-Instruct",
		Temperature:   0.7,
		MaxTokens:     2000,
		Timeout:       60 * time.Second,
		FallbackReply: DefaultFallbackReply,
	}
}

// Message is one entry of a conversation as sent on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client sends conversations to the endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for transport failures.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client. Zero fields of config take DefaultConfig values.
func NewClient(config Config, opts ...ClientOption) *Client {
	def := DefaultConfig()
	if config.Endpoint == "" {
		config.Endpoint = def.Endpoint
	}
	if config.Model == "" {
		config.Model = def.Model
	}
	if config.Temperature == 0 {
		config.Temperature = def.Temperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = def.MaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	if config.FallbackReply == "" {
		config.FallbackReply = def.FallbackReply
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// WithContext prefixes msgs with a system message carrying noteContext. An
// empty noteContext returns msgs unchanged.
func WithContext(noteContext string, msgs []Message) []Message {
	if noteContext == "" {
		return msgs
	}
	out := make([]Message, 0, len(msgs)+1)
	out = append(out, Message{Role: RoleSystem, Content: "Context: " + noteContext})
	return append(out, msgs...)
}

// Complete sends msgs and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, msgs []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.config.Model,
		Messages:    msgs,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result completionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("chat API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

// Reply is Complete with user-facing recovery: any failure is logged and
// replaced by the fallback reply.
func (c *Client) Reply(ctx context.Context, msgs []Message) string {
	reply, err := c.Complete(ctx, msgs)
	if err != nil {
		c.logger.Warn("chat request failed", "endpoint", c.config.Endpoint, "error", err)
		return c.config.FallbackReply
	}
	return reply
}
