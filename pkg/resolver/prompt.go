package resolver

import (
	"fmt"
	"strings"

	"ai-docs-assistant-be/internal/constant"
	"ai-docs-assistant-be/pkg/vector"
)

func quickSearchPrompt(query, matches string) string {
	return fmt.Sprintf(constant.QuickSearchAnswerPrompt, matches, query)
}

func vectorPrompt(query, contextText string) string {
	return fmt.Sprintf(constant.VectorAnswerPrompt, contextText, query)
}

func fulltextPrompt(query, contextText string) string {
	return fmt.Sprintf(constant.FulltextAnswerPrompt, contextText, query)
}

// buildVectorContext joins chunk contents into one context window, capped
// at maxChars so the prompt stays inside the generator's budget.
func buildVectorContext(chunks []vector.DocumentChunk, maxChars int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Content)
	}
	text := b.String()
	if maxChars > 0 {
		if runes := []rune(text); len(runes) > maxChars {
			return string(runes[:maxChars])
		}
	}
	return text
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
