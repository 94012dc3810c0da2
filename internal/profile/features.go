// Package profile extracts normalized features from free-text attendee fields.
package profile

import (
	"fmt"
	"strings"

	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// SplitList parses a comma-separated free-text list into lower-cased,
// trimmed phrases. Empty entries are dropped; a missing field yields an
// empty slice, never nil dereferences downstream.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		phrase := strings.ToLower(strings.TrimSpace(p))
		if phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}

// Needs returns the attendee's stated needs as normalized phrases.
func Needs(a *types.Attendee) []string {
	if a == nil {
		return []string{}
	}
	return SplitList(a.Needs)
}

// Assets returns the attendee's stated capabilities as normalized phrases.
func Assets(a *types.Attendee) []string {
	if a == nil {
		return []string{}
	}
	return SplitList(a.Assets)
}

// EmbeddingText builds the single text blob submitted to the embedding
// capability. Each field appears under a short label; missing fields render
// as empty strings so the blob shape is stable across sparse profiles.
func EmbeddingText(a *types.Attendee) string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	write := func(label, value string) {
		sb.WriteString(fmt.Sprintf("%s: %s\n", label, strings.TrimSpace(value)))
	}

	write("Role", a.Role)
	write("Organization", a.Organization)
	write("Industry", a.Industry)
	write("City", a.City)
	write("Revenue driver", a.RevenueDriver)
	write("Constraint", a.Constraint)
	write("Assets", a.Assets)
	write("Needs", a.Needs)
	write("Fun fact", a.FunFact)

	return sb.String()
}
