package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/maano.go/internal/server"
	"github.com/sokinpui/maano.go/model"
)

func startServer(t *testing.T, capture *model.Request) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reply := func(content string) model.Adapter {
		return model.AdapterFunc(func(ctx context.Context, req model.Request) (model.Completion, error) {
			if capture != nil {
				*capture = req
			}
			return model.Completion{Content: content}, nil
		})
	}
	reg, err := model.NewRegistry(model.DefaultCatalog()...)
	require.NoError(t, err)
	engine := model.NewEngine(reg, model.Adapters{
		OpenAI:    reply("openai says hi"),
		Anthropic: reply("anthropic says hi"),
		Gemini: model.AdapterFunc(func(ctx context.Context, req model.Request) (model.Completion, error) {
			return model.Completion{}, errors.New("quota exceeded")
		}),
		Qwen: reply("qwen says hi"),
	})

	srv := httptest.NewServer(server.New(engine).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", url, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestModelsCommand(t *testing.T) {
	out, err := run(t, startServer(t, nil), "models")
	require.NoError(t, err)
	assert.Contains(t, out, "gpt-4  openai  gpt-4")
	assert.Contains(t, out, "claude-3-haiku  anthropic  claude-3-haiku-20240307")
}

func TestChatCommand(t *testing.T) {
	var got model.Request
	out, err := run(t, startServer(t, &got), "chat", "claude-3-sonnet", "hello", "there", "--max-tokens", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic says hi")
	assert.Contains(t, out, "claude-3-sonnet (anthropic)")
	assert.Equal(t, "hello there", got.Prompt)
	assert.Equal(t, 50, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
}

func TestCompareCommand(t *testing.T) {
	out, err := run(t, startServer(t, nil), "compare", "--models", "qwen-max,gemini-pro", "why?")
	require.NoError(t, err)
	assert.Contains(t, out, "== qwen-max (qwen)")
	assert.Contains(t, out, "qwen says hi")
	assert.Contains(t, out, "== gemini-pro (gemini)")
	assert.Contains(t, out, "error: quota exceeded")
}

func TestCompareCommandRejectsUnknownModels(t *testing.T) {
	_, err := run(t, startServer(t, nil), "compare", "--models", "gpt-4,nope", "why?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid models: nope")
}

func TestRecommendCommand(t *testing.T) {
	out, err := run(t, startServer(t, nil), "recommend", "summarize", "this", "article")
	require.NoError(t, err)
	assert.Contains(t, out, "1. claude-3-sonnet (anthropic)")
	assert.Contains(t, out, `Based on your prompt about "summarize this article"`)
}

func TestGenerationFlagsUnsetMeansNil(t *testing.T) {
	cmd := &cobra.Command{Use: "probe"}
	var g generationFlags
	g.register(cmd)
	assert.Nil(t, g.options(cmd))

	require.NoError(t, cmd.Flags().Set("temperature", "0"))
	opts := g.options(cmd)
	require.NotNil(t, opts)
	assert.Nil(t, opts.MaxTokens)
	assert.Equal(t, 0.0, *opts.Temperature)
}
