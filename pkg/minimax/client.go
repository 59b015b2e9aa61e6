package minimax

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the MiniMax API root, including the version prefix.
	DefaultBaseURL = "https://api.minimaxi.com/v1"

	// DefaultChatModel is used when a request does not name a model.
	DefaultChatModel = "abab6.5s-chat"

	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// StatusError carries the HTTP status of a failed MiniMax call.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("minimax %s error: status %d", e.Endpoint, e.Status)
}

// Client calls the MiniMax chat-completion and speech endpoints.
// All provider-specific payload shapes live here so callers never
// construct MiniMax requests directly.
type Client struct {
	baseURL    string
	apiKey     string
	chatModel  string
	httpClient *http.Client
}

// NewClient builds a MiniMax client. baseURL may be empty to use the default.
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// SetChatModel overrides the model used when a request does not name one.
func (c *Client) SetChatModel(model string) {
	model = strings.TrimSpace(model)
	if model != "" {
		c.chatModel = model
	}
}

// Message is one role-tagged chat turn. Content is either a plain string or,
// for multimodal turns, a list of content parts.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ChatRequest describes one chat-completion exchange.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

type chatPayload struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends an ordered list of messages and returns the first completion text.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("minimax chat: messages required")
	}
	payload := chatPayload{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if payload.Model == "" {
		payload.Model = c.chatModel
	}
	if payload.Model == "" {
		payload.Model = DefaultChatModel
	}
	if payload.Temperature == 0 {
		payload.Temperature = defaultTemperature
	}
	if payload.MaxTokens == 0 {
		payload.MaxTokens = defaultMaxTokens
	}

	var resp chatResponse
	if err := c.post(ctx, "/text/chatcompletion_v2", payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("minimax chat: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("minimax request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Endpoint: path, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("minimax decode: %w", err)
	}
	return nil
}
