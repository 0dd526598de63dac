package model

import (
	"context"
	"fmt"
)

// Request is the provider-agnostic input handed to an adapter. System holds
// the fixed preamble; Prompt is the user's message.
type Request struct {
	WireModel   string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// TokenCount is a normalized token tally used for accounting. The vendor's
// own usage payload travels separately in Completion.Usage.
type TokenCount struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Completion is what an adapter extracts from a vendor response.
type Completion struct {
	Content      string
	Usage        any
	FinishReason string
	Extra        map[string]any
	Tokens       TokenCount
}

// Adapter translates a Request into one vendor's wire format and back.
// Implementations return vendor errors as-is; the engine turns them into
// failure envelopes.
type Adapter interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// AdapterFunc lets an ordinary function act as an Adapter.
type AdapterFunc func(ctx context.Context, req Request) (Completion, error)

func (f AdapterFunc) Complete(ctx context.Context, req Request) (Completion, error) {
	return f(ctx, req)
}

// Adapters holds one adapter slot per provider. Adding a provider means adding
// a field here and a case in For.
type Adapters struct {
	OpenAI    Adapter
	Anthropic Adapter
	Gemini    Adapter
	Qwen      Adapter
}

// For returns the adapter serving p.
func (a Adapters) For(p Provider) (Adapter, error) {
	var adapter Adapter
	switch p {
	case ProviderOpenAI:
		adapter = a.OpenAI
	case ProviderAnthropic:
		adapter = a.Anthropic
	case ProviderGemini:
		adapter = a.Gemini
	case ProviderQwen:
		adapter = a.Qwen
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, p)
	}
	if adapter == nil {
		return nil, fmt.Errorf("%w: no adapter configured for %s", ErrUnknownProvider, p)
	}
	return adapter, nil
}
