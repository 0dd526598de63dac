package model

import (
	"slices"
	"strings"
)

type category struct {
	keywords []string
	models   []string
}

// categories are checked in order and the first match wins, even when a
// prompt mentions keywords from several categories.
var categories = []category{
	{keywords: []string{"code", "programming"}, models: []string{"gpt-4", "qwen-max", "claude-3-sonnet"}},
	{keywords: []string{"math", "calculate"}, models: []string{"qwen-max", "gpt-4", "claude-3-sonnet"}},
	{keywords: []string{"creative", "write"}, models: []string{"gpt-4", "claude-3-sonnet", "gemini-pro"}},
	{keywords: []string{"analyze", "summarize"}, models: []string{"claude-3-sonnet", "gpt-4", "gemini-pro"}},
	{keywords: []string{"research", "web"}, models: []string{"gemini-pro", "claude-3-sonnet", "gpt-4"}},
}

var defaultRecommendation = []string{"gpt-4", "claude-3-sonnet", "gemini-pro"}

// Recommend returns a ranked list of model ids suited to prompt. The subject
// is accepted for callers that have one but does not change the ranking.
func (r *Registry) Recommend(prompt, subject string) []string {
	lower := strings.ToLower(prompt)
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return slices.Clone(c.models)
			}
		}
	}
	return slices.Clone(defaultRecommendation)
}
