// Package completion sends a single prompt to an OpenAI-compatible chat-completion endpoint
// and collects the streamed answer.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codingwithyou/internal/logger"
)

// DefaultEndpoint is the chat-completion URL used when none is configured.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// DefaultModel is the model requested when none is configured.
const DefaultModel = "gpt-3.5-turbo"

// Config holds the settings for a Client.
type Config struct {
	Endpoint string
	Model    string
	Timeout  time.Duration // zero means no timeout
}

// Client issues chat-completion requests.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// Request is the JSON body sent to the endpoint.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the outcome of a completion request.
// When the service reports an error, Text holds its message verbatim and APIError is true.
type Result struct {
	Text       string
	APIError   bool
	StatusCode int
	Chunks     int
}

// NewClient creates a Client from config, filling in defaults.
func NewClient(config Config) *Client {
	endpoint := strings.TrimSpace(config.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		endpoint: endpoint,
		model:    model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Complete sends prompt as a single user message, authenticated with apiKey,
// and returns the concatenated completion.
// An empty apiKey is sent as is and the service's rejection comes back in the Result.
func (c *Client) Complete(ctx context.Context, apiKey, prompt string) (*Result, error) {
	payload := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	logger.Debug("Sending completion request", "endpoint", c.endpoint, "model", c.model, "prompt_length", len(prompt), "has_key", apiKey != "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	result, err := ReadStream(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response (HTTP %d): %w", resp.StatusCode, err)
	}
	result.StatusCode = resp.StatusCode

	if resp.StatusCode >= http.StatusBadRequest && !result.APIError && result.Text == "" {
		return nil, fmt.Errorf("HTTP error %d", resp.StatusCode)
	}

	logger.Debug("Completion received", "status", resp.StatusCode, "chunks", result.Chunks, "api_error", result.APIError, "length", len(result.Text))
	return result, nil
}

// ReadStream collects the completion from a newline-delimited JSON body.
func ReadStream(body io.Reader) (*Result, error) {
	result := &Result{}
	var text strings.Builder

	err := NewDecoder(body).Each(func(chunk Chunk) bool {
		result.Chunks++
		if chunk.HasError {
			result.Text = chunk.ErrorMessage
			result.APIError = true
			return false
		}
		text.WriteString(chunk.Content)
		return true
	})
	if err != nil {
		return nil, err
	}

	if !result.APIError {
		result.Text = text.String()
	}
	return result, nil
}
