package model

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

const (
	// DefaultAnthropicBaseURL is the public Anthropic API host.
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	anthropicVersion = "2023-06-01"
	messagesPath     = "/v1/messages"
)

// AnthropicAdapter serves models through the Anthropic Messages API.
type AnthropicAdapter struct {
	client *resty.Client
}

// NewAnthropicAdapter creates an adapter for the Anthropic API.
func NewAnthropicAdapter(apiKey, baseURL string, logger zerolog.Logger) *AnthropicAdapter {
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}
	client := newRESTClient("anthropic", baseURL, logger).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", anthropicVersion)
	return &AnthropicAdapter{client: client}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements Adapter.
func (a *AnthropicAdapter) Complete(ctx context.Context, req Request) (Completion, error) {
	var (
		body   anthropicResponse
		apiErr anthropicError
	)
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(anthropicRequest{
			Model:       req.WireModel,
			MaxTokens:   req.MaxTokens,
			System:      req.System,
			Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
			Temperature: req.Temperature,
		}).
		SetResult(&body).
		SetError(&apiErr).
		Post(messagesPath)
	if err != nil {
		return Completion{}, fmt.Errorf("anthropic: %w", err)
	}
	if resp.IsError() {
		return Completion{}, fmt.Errorf("anthropic: status %d: %s", resp.StatusCode(), vendorError(resp, apiErr.Error.Message))
	}

	idx := slices.IndexFunc(body.Content, func(block anthropicContent) bool { return block.Type == "text" })
	if idx < 0 {
		return Completion{}, fmt.Errorf("%w: no text content in anthropic response", ErrGeneration)
	}

	return Completion{
		Content:      body.Content[idx].Text,
		Usage:        body.Usage,
		FinishReason: body.StopReason,
		Tokens: TokenCount{
			Input:  body.Usage.InputTokens,
			Output: body.Usage.OutputTokens,
		},
	}, nil
}
