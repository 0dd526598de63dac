package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sokinpui/maano.go/internal/history"
	"github.com/sokinpui/maano.go/model"
)

func TestRenderText(t *testing.T) {
	rec := history.Record{
		ID:        "c1",
		Kind:      history.KindChat,
		Prompt:    "Why is the sky blue?",
		ContextID: "lesson-4",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Responses: []model.Envelope{{
			Success:  true,
			ModelID:  "gpt-4",
			Provider: model.ProviderOpenAI,
			Content:  "Rayleigh scattering.",
			Metadata: model.Metadata{ResponseTimeMs: 812},
		}},
	}

	want := "Conversation c1\n" +
		"Kind: chat\n" +
		"Created: 2025-03-01T09:00:00Z\n" +
		"Context: lesson-4\n" +
		"\nPrompt:\nWhy is the sky blue?\n" +
		"\n--- gpt-4 (openai) ---\nRayleigh scattering.\nResponse time: 812 ms\n"
	assert.Equal(t, want, renderText(rec))
}
