package model

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"google.golang.org/genai"
)

// GeminiAdapter serves models through the Gemini API. Requests rotate over
// the configured keys in random order until one succeeds.
type GeminiAdapter struct {
	apiKeys []string
	baseURL string
}

// NewGeminiAdapter creates an adapter for the Gemini API. An empty baseURL
// uses the library default.
func NewGeminiAdapter(apiKeys []string, baseURL string) *GeminiAdapter {
	return &GeminiAdapter{
		apiKeys: apiKeys,
		baseURL: baseURL,
	}
}

func (m *GeminiAdapter) getShuffledKeys() []string {
	shuffledKeys := make([]string, len(m.apiKeys))
	copy(shuffledKeys, m.apiKeys)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(shuffledKeys), func(i, j int) { shuffledKeys[i], shuffledKeys[j] = shuffledKeys[j], shuffledKeys[i] })

	return shuffledKeys
}

func (m *GeminiAdapter) clientConfig(apiKey string) *genai.ClientConfig {
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if m.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: m.baseURL}
	}
	return cfg
}

// Complete implements Adapter.
func (m *GeminiAdapter) Complete(ctx context.Context, req Request) (Completion, error) {
	if len(m.apiKeys) == 0 {
		return Completion{}, fmt.Errorf("%w: API key is required for generation", ErrConfiguration)
	}

	content := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	genConfig := getGenConfig(req)
	var lastErr error

	for _, apiKey := range m.getShuffledKeys() {
		client, err := genai.NewClient(ctx, m.clientConfig(apiKey))
		if err != nil {
			lastErr = fmt.Errorf("failed to create genai client: %w", err)
			continue
		}

		resp, err := client.Models.GenerateContent(ctx, req.WireModel, content, genConfig)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrGeneration, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		return completionFromGemini(resp)
	}

	return Completion{}, fmt.Errorf("gemini: all API keys failed: %w", lastErr)
}

func getGenConfig(req Request) *genai.GenerateContentConfig {
	temperature := float32(req.Temperature)
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   int32(req.MaxTokens),
	}
}

func completionFromGemini(resp *genai.GenerateContentResponse) (Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Completion{}, fmt.Errorf("%w: no content in response", ErrGeneration)
	}

	candidate := resp.Candidates[0]
	c := Completion{
		Content:      resp.Text(),
		FinishReason: string(candidate.FinishReason),
	}
	if len(candidate.SafetyRatings) > 0 {
		c.Extra = map[string]any{"safetyRatings": candidate.SafetyRatings}
	}
	if usage := resp.UsageMetadata; usage != nil {
		c.Usage = usage
		c.Tokens = TokenCount{
			Input:  int(usage.PromptTokenCount),
			Output: int(usage.CandidatesTokenCount),
		}
	}
	return c, nil
}
