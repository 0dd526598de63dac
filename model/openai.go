package model

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter serves models through the OpenAI chat completions API.
type OpenAIAdapter struct {
	client *openai.Client
}

// NewOpenAIAdapter creates an adapter for the OpenAI API. An empty baseURL
// uses the library default.
func NewOpenAIAdapter(apiKey, baseURL string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{client: openai.NewClientWithConfig(cfg)}
}

// Complete implements Adapter.
func (a *OpenAIAdapter) Complete(ctx context.Context, req Request) (Completion, error) {
	resp, err := a.client.CreateChatCompletion(ctx, chatCompletionRequest(req))
	if err != nil {
		return Completion{}, fmt.Errorf("openai: %w", err)
	}
	return completionFromChat(resp)
}

func chatCompletionRequest(req Request) openai.ChatCompletionRequest {
	temperature := float32(req.Temperature)
	if temperature == 0 {
		// go-openai drops a zero temperature from the payload.
		temperature = math.SmallestNonzeroFloat32
	}
	return openai.ChatCompletionRequest{
		Model: req.WireModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	}
}

func completionFromChat(resp openai.ChatCompletionResponse) (Completion, error) {
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("%w: no choices in response", ErrGeneration)
	}
	choice := resp.Choices[0]
	return Completion{
		Content:      choice.Message.Content,
		Usage:        resp.Usage,
		FinishReason: string(choice.FinishReason),
		Tokens: TokenCount{
			Input:  resp.Usage.PromptTokens,
			Output: resp.Usage.CompletionTokens,
		},
	}, nil
}
