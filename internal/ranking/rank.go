// Package ranking produces ordered, tiered match shortlists for a subject attendee.
package ranking

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/AILLCSteve/rotary-networking-app/internal/scoring"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// DefaultTopCap is the size of the high-confidence "top" shortlist.
const DefaultTopCap = 3

// TierConfig parameterizes one ranking pass. The same ranking function
// serves both tiers; only the configuration differs.
type TierConfig struct {
	Tier TierName
	// Cap limits how many candidates are returned; 0 means no cap.
	Cap int
	// Exclude removes candidates already selected into another tier for
	// the same subject.
	Exclude map[uuid.UUID]bool
}

// TierName aliases types.Tier for readability at call sites.
type TierName = types.Tier

// TopConfig returns the configuration for the "top" tier.
func TopConfig() TierConfig {
	return TierConfig{Tier: types.TierTop, Cap: DefaultTopCap}
}

// BroaderConfig returns the configuration for the "broader" tier,
// excluding IDs already placed in "top".
func BroaderConfig(topIDs []uuid.UUID) TierConfig {
	exclude := make(map[uuid.UUID]bool, len(topIDs))
	for _, id := range topIDs {
		exclude[id] = true
	}
	return TierConfig{Tier: types.TierBroader, Exclude: exclude}
}

// Candidate pairs an attendee with its embedding vector (nil when absent).
type Candidate struct {
	Attendee *types.Attendee
	Vector   []float32
}

// Ranked is one scored candidate in rank order.
type Ranked struct {
	Attendee  *types.Attendee
	Breakdown *types.ScoreBreakdown
}

// EmbedFunc computes and persists an embedding vector for one attendee.
// It is the ranker's only side effect: lazy vector fill before scoring.
type EmbedFunc func(ctx context.Context, a *types.Attendee) ([]float32, error)

// Rank scores every candidate in the pool against the subject and returns
// the tier's shortlist, sorted by total score descending with the original
// pool order preserved for ties.
//
// Candidates missing a vector get one computed via embed first; an
// embedding failure is logged and the candidate is scored with similarity
// 0 rather than skipped. A scoring failure excludes only that candidate.
// Zero-score results (self pairs, errors) are filtered out.
func Rank(ctx context.Context, subject Candidate, pool []Candidate, cfg TierConfig, embed EmbedFunc) ([]Ranked, error) {
	if subject.Attendee == nil {
		return nil, fmt.Errorf("subject attendee is required")
	}

	subjectVec, err := ensureVector(ctx, subject, embed)
	if err != nil {
		log.Printf("[rank] subject %s embedding unavailable: %v", subject.Attendee.ID, err)
		subjectVec = nil
	}

	ranked := make([]Ranked, 0, len(pool))
	for _, cand := range pool {
		if cand.Attendee == nil {
			continue
		}
		if cfg.Exclude[cand.Attendee.ID] {
			continue
		}

		vec, err := ensureVector(ctx, cand, embed)
		if err != nil {
			log.Printf("[rank] candidate %s embedding unavailable: %v", cand.Attendee.ID, err)
			vec = nil
		}

		breakdown, err := scoreCandidate(subject.Attendee, cand.Attendee, subjectVec, vec)
		if err != nil {
			log.Printf("[rank] scoring candidate %s failed, excluding: %v", cand.Attendee.ID, err)
			continue
		}
		if breakdown.Total == 0 {
			// Zero score is the self-pair/error sentinel, never a real match.
			continue
		}

		ranked = append(ranked, Ranked{Attendee: cand.Attendee, Breakdown: breakdown})
	}

	// Stable sort keeps original pool order as the tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Breakdown.Total > ranked[j].Breakdown.Total
	})

	if cfg.Cap > 0 && len(ranked) > cfg.Cap {
		ranked = ranked[:cfg.Cap]
	}

	return ranked, nil
}

// scoreCandidate isolates one candidate's scoring so a panic from a
// malformed stored record degrades to a per-candidate error.
func scoreCandidate(subject, candidate *types.Attendee, subjectVec, candidateVec []float32) (breakdown *types.ScoreBreakdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	similarity := scoring.CosineSimilarity(subjectVec, candidateVec)
	return scoring.Score(subject, candidate, similarity, nil), nil
}

func ensureVector(ctx context.Context, c Candidate, embed EmbedFunc) ([]float32, error) {
	if len(c.Vector) > 0 {
		return c.Vector, nil
	}
	if embed == nil {
		return nil, nil
	}
	return embed(ctx, c.Attendee)
}

// TopIDs extracts the attendee IDs from a ranked shortlist, for exclusion
// when building the broader tier.
func TopIDs(ranked []Ranked) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Attendee.ID)
	}
	return ids
}
