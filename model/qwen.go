package model

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"
)

// DefaultQwenBaseURL is the OpenAI-compatible endpoint of DashScope.
const DefaultQwenBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"

// QwenAdapter serves models from any OpenAI-compatible chat completions
// endpoint; by default the Qwen one.
type QwenAdapter struct {
	client *resty.Client
	apiKey string
}

// NewQwenAdapter creates an adapter posting to baseURL + "/chat/completions".
func NewQwenAdapter(apiKey, baseURL string, logger zerolog.Logger) *QwenAdapter {
	if baseURL == "" {
		baseURL = DefaultQwenBaseURL
	}
	return &QwenAdapter{
		client: newRESTClient("qwen", baseURL, logger),
		apiKey: apiKey,
	}
}

// Complete implements Adapter.
func (a *QwenAdapter) Complete(ctx context.Context, req Request) (Completion, error) {
	var (
		body   openai.ChatCompletionResponse
		apiErr openai.ErrorResponse
	)
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetBody(chatCompletionRequest(req)).
		SetResult(&body).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return Completion{}, fmt.Errorf("qwen: %w", err)
	}
	if resp.IsError() {
		var message string
		if apiErr.Error != nil {
			message = apiErr.Error.Message
		}
		return Completion{}, fmt.Errorf("qwen: status %d: %s", resp.StatusCode(), vendorError(resp, message))
	}
	return completionFromChat(body)
}
