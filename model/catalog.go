package model

// DefaultCatalog returns the built-in models served by the service.
func DefaultCatalog() []Descriptor {
	return []Descriptor{
		{
			ID:          "gpt-4",
			Provider:    ProviderOpenAI,
			WireModel:   "gpt-4",
			MaxTokens:   4000,
			Temperature: 0.7,
			Strengths:   []string{"Creative Writing", "Coding", "Complex Reasoning"},
			Weaknesses:  []string{"Real-time Information", "Cost"},
		},
		{
			ID:          "gpt-3.5-turbo",
			Provider:    ProviderOpenAI,
			WireModel:   "gpt-3.5-turbo",
			MaxTokens:   4000,
			Temperature: 0.7,
			Strengths:   []string{"Fast Response", "Cost Effective", "General Purpose"},
			Weaknesses:  []string{"Less Creative", "Limited Context"},
		},
		{
			ID:          "claude-3-sonnet",
			Provider:    ProviderAnthropic,
			WireModel:   "claude-3-sonnet-20240229",
			MaxTokens:   4000,
			Temperature: 0.7,
			Strengths:   []string{"Analysis", "Summarization", "Safety", "Long Context"},
			Weaknesses:  []string{"Creative Writing", "Real-time Info"},
		},
		{
			ID:          "claude-3-haiku",
			Provider:    ProviderAnthropic,
			WireModel:   "claude-3-haiku-20240307",
			MaxTokens:   4000,
			Temperature: 0.7,
			Strengths:   []string{"Fast Response", "Cost Effective", "Analysis"},
			Weaknesses:  []string{"Limited Creativity", "Shorter Context"},
		},
		{
			ID:          "gemini-pro",
			Provider:    ProviderGemini,
			WireModel:   "gemini-pro",
			MaxTokens:   4000,
			Temperature: 0.7,
			Strengths:   []string{"Research", "Web Content", "Multilingual", "Free Tier"},
			Weaknesses:  []string{"Creative Writing", "Complex Reasoning"},
		},
		{
			ID:          "qwen-max",
			Provider:    ProviderQwen,
			WireModel:   "qwen-max",
			MaxTokens:   4000,
			Temperature: 0.7,
			Strengths:   []string{"Coding", "Mathematics", "Chinese Language", "Cost Effective"},
			Weaknesses:  []string{"English Writing", "Limited Context"},
		},
	}
}
