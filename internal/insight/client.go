// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client sends chat-completion requests to a configured LLM endpoint.
// Grounded on the teacher's resty usage (app/job/monitor/ip.go) and the
// original Groq-backed chat_completion call it stands in for.
type Client struct {
	http     *resty.Client
	endpoint string
	apiKey   string
	model    string
}

// NewClient creates a Client bound to an OpenAI-compatible chat-completion
// endpoint.
func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	http := resty.New().SetTimeout(timeout)
	return &Client{http: http, endpoint: endpoint, apiKey: apiKey, model: model}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the given messages to the configured model and returns the
// first choice's message content, trimmed of surrounding whitespace.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body := chatRequest{Model: c.model, Messages: messages, Temperature: 0.2}

	var out chatResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("insight: chat completion request failed: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("insight: chat completion returned status %d: %s", res.StatusCode(), res.String())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("insight: chat completion returned no choices")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Generate builds the prompt for req and completes it against the LLM.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	messages, err := BuildMessages(req)
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, messages)
}
