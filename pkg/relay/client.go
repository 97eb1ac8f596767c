package relay

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

// Client calls a running relay over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithClientHTTP sets the underlying HTTP client.
func WithClientHTTP(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a client for the relay at baseURL (e.g. http://localhost:3001).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout + 10*time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Solve posts req to /api/solve. A non-2xx answer is returned as an *Error carrying
// the relay's message.
func (c *Client) Solve(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/solve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		relayErr := &Error{Status: resp.StatusCode}
		if err := json.Unmarshal(data, relayErr); err != nil || relayErr.Message == "" {
			relayErr.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
			relayErr.Details = strings.TrimSpace(string(data))
		}
		return nil, relayErr
	}

	var out struct {
		Content *string `json:"content"`
		chatResponse
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Fall back to an OpenAI-shaped body, then to the raw JSON.
	switch {
	case out.Content != nil && *out.Content != "":
		return &Response{Content: *out.Content}, nil
	case len(out.Choices) > 0 && out.Choices[0].Message.Content != "":
		return &Response{Content: out.Choices[0].Message.Content}, nil
	default:
		return &Response{Content: string(data)}, nil
	}
}
