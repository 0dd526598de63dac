package model

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func succeeding(content string) Adapter {
	return AdapterFunc(func(ctx context.Context, req Request) (Completion, error) {
		return Completion{Content: content, FinishReason: "stop", Usage: map[string]int{"total": 3}}, nil
	})
}

func failing(msg string) Adapter {
	return AdapterFunc(func(ctx context.Context, req Request) (Completion, error) {
		return Completion{}, errors.New(msg)
	})
}

func sleeping(d time.Duration, err error) Adapter {
	return AdapterFunc(func(ctx context.Context, req Request) (Completion, error) {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		}
		if err != nil {
			return Completion{}, err
		}
		return Completion{Content: req.WireModel}, nil
	})
}

func allSucceeding() Adapters {
	return Adapters{
		OpenAI:    succeeding("from openai"),
		Anthropic: succeeding("from anthropic"),
		Gemini:    succeeding("from gemini"),
		Qwen:      succeeding("from qwen"),
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []CallStats
}

func (o *recordingObserver) ObserveCall(s CallStats) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, s)
}

func TestGenerateSuccess(t *testing.T) {
	e := NewEngine(newDefaultRegistry(t), allSucceeding())

	env, err := e.Generate(context.Background(), "claude-3-sonnet", "hi", nil)
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Equal(t, "claude-3-sonnet", env.ModelID)
	assert.Equal(t, ProviderAnthropic, env.Provider)
	assert.Equal(t, "from anthropic", env.Content)
	assert.Empty(t, env.Error)
	assert.Equal(t, "claude-3-sonnet-20240229", env.Metadata.WireModel)
	assert.Equal(t, "stop", env.Metadata.FinishReason)
	assert.Equal(t, map[string]int{"total": 3}, env.Metadata.Usage)
	assert.Contains(t, env.Metadata.Strengths, "Summarization")
	assert.GreaterOrEqual(t, env.Metadata.ResponseTimeMs, int64(0))
}

func TestGenerateExactlyOneOfContentOrError(t *testing.T) {
	for _, adapters := range []Adapters{
		allSucceeding(),
		{OpenAI: failing("a"), Anthropic: failing("b"), Gemini: failing("c"), Qwen: failing("d")},
	} {
		e := NewEngine(newDefaultRegistry(t), adapters)
		for _, d := range e.Registry().List() {
			env, err := e.Generate(context.Background(), d.ID, "p", nil)
			require.NoError(t, err)

			if env.Success {
				assert.NotEmpty(t, env.Content, d.ID)
				assert.Empty(t, env.Error, d.ID)
			} else {
				assert.Empty(t, env.Content, d.ID)
				assert.NotEmpty(t, env.Error, d.ID)
			}
		}
	}
}

func TestGenerateProviderFailureIsEnvelope(t *testing.T) {
	adapters := allSucceeding()
	adapters.OpenAI = failing("invalid api key")
	e := NewEngine(newDefaultRegistry(t), adapters)

	env, err := e.Generate(context.Background(), "gpt-4", "hi", nil)
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid api key", env.Error)
	assert.Equal(t, ProviderOpenAI, env.Provider)
	assert.Equal(t, "gpt-4", env.ModelID)
}

func TestGenerateUnknownModel(t *testing.T) {
	e := NewEngine(newDefaultRegistry(t), allSucceeding())

	_, err := e.Generate(context.Background(), "nope", "hi", nil)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestGenerateMissingAdapter(t *testing.T) {
	adapters := allSucceeding()
	adapters.Qwen = nil
	e := NewEngine(newDefaultRegistry(t), adapters)

	env, err := e.Generate(context.Background(), "qwen-max", "hi", nil)
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, ErrUnknownProvider.Error())
	assert.Equal(t, ProviderQwen, env.Provider)
}

func TestAdaptersForUnknownProvider(t *testing.T) {
	_, err := allSucceeding().For("mistral")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestGenerateRequestShape(t *testing.T) {
	var got Request
	adapters := allSucceeding()
	adapters.Gemini = AdapterFunc(func(ctx context.Context, req Request) (Completion, error) {
		got = req
		return Completion{Content: "ok"}, nil
	})
	e := NewEngine(newDefaultRegistry(t), adapters)

	temperature := 0.2
	_, err := e.Generate(context.Background(), "gemini-pro", "why is the sky blue?", &Options{Temperature: &temperature})
	require.NoError(t, err)
	assert.Equal(t, "gemini-pro", got.WireModel)
	assert.Equal(t, SystemPrompt, got.System)
	assert.Equal(t, "why is the sky blue?", got.Prompt)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	assert.Equal(t, 4000, got.MaxTokens)

	_, err = e.Generate(context.Background(), "gemini-pro", "again", nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)

	maxTokens, zero := 256, 0.0
	_, err = e.Generate(context.Background(), "gemini-pro", "again", &Options{MaxTokens: &maxTokens, Temperature: &zero})
	require.NoError(t, err)
	assert.Equal(t, 256, got.MaxTokens)
	assert.Zero(t, got.Temperature)
}

func TestGenerateTimeout(t *testing.T) {
	adapters := allSucceeding()
	adapters.OpenAI = sleeping(time.Second, nil)
	e := NewEngine(newDefaultRegistry(t), adapters, WithTimeout(20*time.Millisecond))

	env, err := e.Generate(context.Background(), "gpt-4", "hi", nil)
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "timed out")
}

func TestGenerateMeasuresAdapterCall(t *testing.T) {
	adapters := allSucceeding()
	adapters.OpenAI = sleeping(30*time.Millisecond, nil)
	e := NewEngine(newDefaultRegistry(t), adapters)

	env, err := e.Generate(context.Background(), "gpt-4", "hi", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, env.Metadata.ResponseTimeMs, int64(30))
}

func TestGenerateNotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	adapters := allSucceeding()
	adapters.Anthropic = failing("overloaded")
	e := NewEngine(newDefaultRegistry(t), adapters, WithObserver(obs))

	_, _ = e.Generate(context.Background(), "gpt-4", "hi", nil)
	_, _ = e.Generate(context.Background(), "claude-3-haiku", "hi", nil)

	require.Len(t, obs.calls, 2)
	assert.Equal(t, ProviderOpenAI, obs.calls[0].Provider)
	assert.NoError(t, obs.calls[0].Err)
	assert.Equal(t, "claude-3-haiku", obs.calls[1].ModelID)
	assert.EqualError(t, obs.calls[1].Err, "overloaded")
}

func TestCompareAllKeepsOrderAndLength(t *testing.T) {
	adapters := allSucceeding()
	adapters.Anthropic = failing("anthropic down")
	e := NewEngine(newDefaultRegistry(t), adapters)

	ids := []string{"gemini-pro", "does-not-exist", "claude-3-sonnet", "gpt-4", "gemini-pro"}
	got := e.CompareAll(context.Background(), "hi", ids, nil)

	require.Len(t, got, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, got[i].ModelID)
	}

	assert.True(t, got[0].Success)
	assert.Equal(t, "from gemini", got[0].Content)

	assert.False(t, got[1].Success)
	assert.Equal(t, ProviderUnknown, got[1].Provider)
	assert.Contains(t, got[1].Error, "does-not-exist")

	assert.False(t, got[2].Success)
	assert.Equal(t, ProviderAnthropic, got[2].Provider)
	assert.Equal(t, "anthropic down", got[2].Error)

	assert.True(t, got[3].Success)
	assert.True(t, got[4].Success)
}

func TestCompareAllRunsConcurrently(t *testing.T) {
	const latency = 150 * time.Millisecond
	adapters := Adapters{
		OpenAI:    sleeping(latency, nil),
		Anthropic: sleeping(latency, errors.New("provider B unavailable")),
		Gemini:    sleeping(latency, nil),
	}
	e := NewEngine(newDefaultRegistry(t), adapters)

	start := time.Now()
	got := e.CompareAll(context.Background(), "hi", []string{"gpt-4", "claude-3-sonnet", "gemini-pro"}, nil)
	elapsed := time.Since(start)

	require.Len(t, got, 3)
	assert.True(t, got[0].Success)
	assert.False(t, got[1].Success)
	assert.Equal(t, "provider B unavailable", got[1].Error)
	assert.True(t, got[2].Success)
	assert.Less(t, elapsed, 2*latency, "calls should overlap rather than run back to back")
}

func TestCompareAllRecoversPanics(t *testing.T) {
	adapters := allSucceeding()
	adapters.Qwen = AdapterFunc(func(ctx context.Context, req Request) (Completion, error) {
		panic("boom")
	})
	e := NewEngine(newDefaultRegistry(t), adapters)

	got := e.CompareAll(context.Background(), "hi", []string{"qwen-max", "gpt-4"}, nil)
	require.Len(t, got, 2)
	assert.False(t, got[0].Success)
	assert.Equal(t, ProviderQwen, got[0].Provider)
	assert.Contains(t, got[0].Error, "boom")
	assert.True(t, got[1].Success)
}

func TestGenerateRecoversAdapterPanic(t *testing.T) {
	adapters := allSucceeding()
	adapters.OpenAI = AdapterFunc(func(ctx context.Context, req Request) (Completion, error) {
		var resp *struct{ Choices []string }
		return Completion{Content: resp.Choices[0]}, nil
	})
	obs := &recordingObserver{}
	e := NewEngine(newDefaultRegistry(t), adapters, WithObserver(obs))

	var env Envelope
	var err error
	require.NotPanics(t, func() {
		env, err = e.Generate(context.Background(), "gpt-4", "hi", nil)
	})
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, ProviderOpenAI, env.Provider)
	assert.Contains(t, env.Error, "panic")
	assert.GreaterOrEqual(t, env.Metadata.ResponseTimeMs, int64(0))

	require.Len(t, obs.calls, 1)
	assert.ErrorIs(t, obs.calls[0].Err, ErrGeneration)
}

func TestCompareAllEmpty(t *testing.T) {
	e := NewEngine(newDefaultRegistry(t), allSucceeding())
	assert.Empty(t, e.CompareAll(context.Background(), "hi", nil, nil))
}

func TestEnvelopeJSON(t *testing.T) {
	ok, err := json.Marshal(Envelope{Success: true, ModelID: "gpt-4", Provider: ProviderOpenAI, Content: ""})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(ok, &fields))
	assert.Contains(t, fields, "content")
	assert.NotContains(t, fields, "error")

	bad, err := json.Marshal(Envelope{ModelID: "gpt-4", Provider: ProviderOpenAI, Error: "boom"})
	require.NoError(t, err)

	fields = nil
	require.NoError(t, json.Unmarshal(bad, &fields))
	assert.NotContains(t, fields, "content")
	assert.Equal(t, "boom", fields["error"])

	var decoded Envelope
	require.NoError(t, json.Unmarshal(bad, &decoded))
	assert.Equal(t, "boom", decoded.Error)
	assert.False(t, decoded.Success)
}

func TestGenerateCopiesTokenCounts(t *testing.T) {
	adapters := allSucceeding()
	adapters.Qwen = AdapterFunc(func(ctx context.Context, req Request) (Completion, error) {
		return Completion{Content: "ok", Tokens: TokenCount{Input: 3, Output: 7}}, nil
	})
	e := NewEngine(newDefaultRegistry(t), adapters)

	env, err := e.Generate(context.Background(), "qwen-max", "hi", nil)
	require.NoError(t, err)
	require.NotNil(t, env.Metadata.Tokens)
	assert.Equal(t, TokenCount{Input: 3, Output: 7}, *env.Metadata.Tokens)

	env, err = e.Generate(context.Background(), "gpt-4", "hi", nil)
	require.NoError(t, err)
	assert.Nil(t, env.Metadata.Tokens)
}
