package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message roles used by the chat completions API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a chat completions request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client provides HTTP client functionality for the Groq chat completions
// API (OpenAI-compatible).
type Client struct {
	config     Config
	httpClient *http.Client
}

// Config contains chat API client configuration
type Config struct {
	Endpoint    string // API base URL, e.g. https://api.groq.com/openai/v1
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// completionRequest is the chat completions request body
type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// completionResponse is the chat completions response body
type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewClient creates a new chat completions client
func NewClient(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	if config.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.config.Model
}

// Complete sends the message sequence to the chat completions API and
// returns the generated text of the first choice.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := completionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(c.config.Endpoint, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("failed to parse response JSON: %w", err)
	}

	// The API reports failures in a structured error object; surface its
	// message so the caller can classify it.
	if completion.Error != nil {
		return "", fmt.Errorf("HTTP error %d: %s", resp.StatusCode, completion.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}

	return completion.Choices[0].Message.Content, nil
}

// Ping sends a minimal completion request to verify API connectivity and
// credentials. Used by the health endpoint and startup probe.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, []Message{{Role: RoleUser, Content: "Hello"}})
	return err
}
