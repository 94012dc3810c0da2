package research

import (
	"fmt"
	"strings"

	"github.com/AILLCSteve/rotary-networking-app/internal/profile"
	"github.com/AILLCSteve/rotary-networking-app/internal/scoring"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// FallbackRationale produces a deterministic, minimally useful rationale
// with no external calls. It always succeeds and all three fields are
// always non-empty, no matter how sparse the two profiles are.
func FallbackRationale(subject, candidate *types.Attendee) types.Rationale {
	return types.Rationale{
		Strategic:          fallbackStrategic(subject, candidate),
		CollaborationAngle: fallbackAngle(candidate),
		ConversationOpener: fallbackOpener(subject, candidate),
	}
}

// fallbackStrategic derives a sentence from the first keyword-level
// need/asset match, or falls back to shared industry, or a generic line.
func fallbackStrategic(subject, candidate *types.Attendee) string {
	name := displayName(candidate)

	if need, asset, ok := firstMatch(profile.Needs(subject), profile.Assets(candidate)); ok {
		return fmt.Sprintf("You mentioned needing %s, and %s brings %s to the table, a direct fit worth exploring.", need, name, asset)
	}
	if need, asset, ok := firstMatch(profile.Needs(candidate), profile.Assets(subject)); ok {
		return fmt.Sprintf("%s is looking for %s, which lines up with your strength in %s. You have something they need.", name, need, asset)
	}

	subjectInd := strings.TrimSpace(subject.Industry)
	candidateInd := strings.TrimSpace(candidate.Industry)
	if subjectInd != "" && strings.EqualFold(subjectInd, candidateInd) {
		return fmt.Sprintf("You and %s both work in %s, so comparing notes on what's working right now should pay off quickly.", name, candidateInd)
	}

	return fmt.Sprintf("%s runs in different circles than you do, and that outside perspective is often where the best referrals come from.", name)
}

func fallbackAngle(candidate *types.Attendee) string {
	name := displayName(candidate)
	if org := strings.TrimSpace(candidate.Organization); org != "" {
		return fmt.Sprintf("Start small: trade one warm referral each with %s at %s and see where it leads.", name, org)
	}
	return fmt.Sprintf("Start small: trade one warm referral each with %s and see where it leads.", name)
}

// fallbackOpener references the subject's stated constraint when present.
func fallbackOpener(subject, candidate *types.Attendee) string {
	name := displayName(candidate)
	if constraint := strings.TrimSpace(subject.Constraint); constraint != "" {
		return fmt.Sprintf("Open by sharing the thing holding you back right now (%q) and ask %s how they'd approach it.", constraint, name)
	}
	return fmt.Sprintf("Open by asking %s what their best customer looked like this year. It's a question everyone enjoys answering.", name)
}

// firstMatch returns the first complementary (need, asset) pair.
func firstMatch(needs, assets []string) (string, string, bool) {
	for _, need := range needs {
		for _, asset := range assets {
			if scoring.IsComplementary(need, asset) {
				return need, asset, true
			}
		}
	}
	return "", "", false
}

func displayName(a *types.Attendee) string {
	if a == nil || strings.TrimSpace(a.Name) == "" {
		return "your match"
	}
	return strings.TrimSpace(a.Name)
}
