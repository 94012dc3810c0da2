package llm

import "strings"

// CleanJSONBlock strips a markdown code fence from a model response. Gemini
// wraps JSON in ```json fences often enough, even with a JSON response MIME
// type set, that every caller expecting JSON runs its output through here.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")

	// The fence may open with a language tag ("json", "JSON") on its own
	// line. A first line containing spaces or a brace is already payload.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {") {
			text = text[idx+1:]
		}
	}

	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
