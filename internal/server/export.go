package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/sokinpui/maano.go/internal/history"
)

// renderText formats a saved conversation as plain text.
func renderText(rec history.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Conversation %s\n", rec.ID)
	fmt.Fprintf(&b, "Kind: %s\n", rec.Kind)
	fmt.Fprintf(&b, "Created: %s\n", rec.CreatedAt.UTC().Format(time.RFC3339))
	if rec.ContextID != "" {
		fmt.Fprintf(&b, "Context: %s\n", rec.ContextID)
	}

	b.WriteString("\nPrompt:\n")
	b.WriteString(rec.Prompt)
	b.WriteString("\n")

	for _, env := range rec.Responses {
		fmt.Fprintf(&b, "\n--- %s (%s) ---\n", env.ModelID, env.Provider)
		if env.Success {
			b.WriteString(env.Content)
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "Error: %s\n", env.Error)
		}
		fmt.Fprintf(&b, "Response time: %d ms\n", env.Metadata.ResponseTimeMs)
	}

	return b.String()
}
