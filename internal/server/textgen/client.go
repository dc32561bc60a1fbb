// Package textgen is a minimal client for an OpenAI-compatible chat
// completion endpoint.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned by Complete when no API key is set.
var ErrNotConfigured = errors.New("text generation is not configured")

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type Client struct {
	http   *resty.Client
	apiKey string
	model  string
}

func New(cfg *config.Config) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.OpenAIBaseURL, "/")).
		SetTimeout(cfg.OpenAITimeout).
		SetHeader("Content-Type", "application/json")
	if cfg.OpenAIAPIKey != "" {
		rc.SetAuthToken(cfg.OpenAIAPIKey)
	}

	return &Client{http: rc, apiKey: cfg.OpenAIAPIKey, model: cfg.OpenAIModel}
}

// Complete sends prompt as a single user message and returns the trimmed
// content of the first choice. A response without choices yields "".
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	var (
		out    chatResponse
		apiErr errorResponse
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{Model: c.model, Messages: []message{{Role: "user", Content: prompt}}}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat completion: status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}

	if len(out.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
