// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

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

// Completer sends a chat completion request and returns the first choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm request failed: status %d, body: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	body := chatRequest{
		Model:    c.model,
		Messages: req.Messages,
	}
	if req.Schema != nil {
		body.ResponseFormat = &ResponseFormat{Type: "json_schema", JSONSchema: req.Schema}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: %v, body: %s", ErrMalformedResponse, err, string(respBody))
	}
	if len(result.Choices) == 0 || len(result.Choices[0].Message.Content) == 0 ||
		string(result.Choices[0].Message.Content) == "null" {
		return nil, fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}

	return &Completion{Content: result.Choices[0].Message.Content}, nil
}
