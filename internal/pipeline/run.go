// Package pipeline provides the high-level orchestration for match generation.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/observability"
	"github.com/AILLCSteve/rotary-networking-app/internal/profile"
	"github.com/AILLCSteve/rotary-networking-app/internal/ranking"
	"github.com/AILLCSteve/rotary-networking-app/internal/research"
	"github.com/AILLCSteve/rotary-networking-app/internal/scoring"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetAttendee(ctx context.Context, id uuid.UUID) (*types.Attendee, error)
	ListConsentingAttendees(ctx context.Context, excludeID uuid.UUID) ([]*types.Attendee, error)
	GetVector(ctx context.Context, attendeeID uuid.UUID) (*types.EmbeddingVector, error)
	UpsertVector(ctx context.Context, v *types.EmbeddingVector) error
	UpsertMatch(ctx context.Context, m *types.MatchRecord) error
}

// Researcher produces a meeting rationale for one attendee pair.
type Researcher interface {
	Run(ctx context.Context, subject, candidate *types.Attendee, breakdown *types.ScoreBreakdown) *research.Result
}

// ProgressEvent represents a progress update during match generation
type ProgressEvent struct {
	Step      string `json:"step"`
	Message   string `json:"message"`
	SubjectID string `json:"subject_id,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Progress step names.
const (
	StepLoadSubject = "load_subject"
	StepLoadPool    = "load_pool"
	StepEmbed       = "embed"
	StepRank        = "rank"
	StepResearch    = "research"
	StepPersist     = "persist"
)

// RunOptions holds configuration for running the match generation pipeline
type RunOptions struct {
	Store      Store
	Client     llm.Client
	Researcher Researcher // Only consulted for the top tier; nil means fallback rationales
	Verbose    bool
	OnProgress ProgressCallback
}

// Result holds the outcome of one pipeline run.
type Result struct {
	SubjectID uuid.UUID
	Tier      types.Tier
	Matches   []*types.MatchRecord
	// Fallbacks counts top-tier pairs whose rationale came from the
	// deterministic generator rather than AI synthesis.
	Fallbacks int
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, message string, subjectID uuid.UUID, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:      step,
			Message:   message,
			SubjectID: subjectID.String(),
			Content:   content,
		})
	}
}

// Run generates and persists one tier of matches for the subject attendee.
//
// A top-tier run researches each shortlisted pair sequentially in rank order
// and refines the pair's score once with any collaboration findings. A
// broader-tier run skips research entirely and attaches fallback rationales.
// Persistence is per match record: a failed write is logged and skipped, and
// the run reports the records that did land.
func Run(ctx context.Context, opts RunOptions, subjectID uuid.UUID, tier types.Tier) (*Result, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	printer := observability.NewPrinter(os.Stdout)

	subject, err := opts.Store.GetAttendee(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("loading subject failed: %w", err)
	}
	if subject == nil {
		return nil, fmt.Errorf("attendee %s not found", subjectID)
	}
	if !subject.Consent {
		return nil, fmt.Errorf("attendee %s has not consented to matching", subjectID)
	}
	if opts.Verbose {
		printer.PrintAttendee(subject)
	}
	emitProgress(&opts, StepLoadSubject, fmt.Sprintf("Loaded subject %s", subject.Name), subjectID, nil)

	pool, err := opts.Store.ListConsentingAttendees(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("loading candidate pool failed: %w", err)
	}
	emitProgress(&opts, StepLoadPool, fmt.Sprintf("Loaded %d consenting candidates", len(pool)), subjectID, nil)

	// vectors caches every embedding seen or computed during this run so
	// the refinement re-score can recompute pair similarity locally.
	vectors := make(map[uuid.UUID][]float32)
	embed := embedFunc(&opts, vectors)

	subjectCand, err := loadCandidate(ctx, opts.Store, subject, vectors)
	if err != nil {
		return nil, err
	}
	candidates := make([]ranking.Candidate, 0, len(pool))
	for _, a := range pool {
		c, err := loadCandidate(ctx, opts.Store, a, vectors)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	// The broader tier is defined by exclusion, so ranking it always
	// starts with a top pass to learn which IDs to leave out.
	top, err := ranking.Rank(ctx, subjectCand, candidates, ranking.TopConfig(), embed)
	if err != nil {
		return nil, fmt.Errorf("ranking failed: %w", err)
	}

	var shortlist []ranking.Ranked
	if tier == types.TierBroader {
		shortlist, err = ranking.Rank(ctx, subjectCand, candidates, ranking.BroaderConfig(ranking.TopIDs(top)), embed)
		if err != nil {
			return nil, fmt.Errorf("ranking failed: %w", err)
		}
	} else {
		shortlist = top
	}
	emitProgress(&opts, StepRank, fmt.Sprintf("Ranked %d candidates into tier %s", len(shortlist), tier), subjectID, nil)

	result := &Result{SubjectID: subjectID, Tier: tier}
	var persistErr error

	for i, ranked := range shortlist {
		candidate := ranked.Attendee
		breakdown := ranked.Breakdown
		var rationale types.Rationale

		if tier == types.TierTop && opts.Researcher != nil {
			fmt.Printf("Researching pair %d/%d: %s...\n", i+1, len(shortlist), candidate.Name)
			res := opts.Researcher.Run(ctx, subject, candidate, breakdown)
			rationale = res.Rationale
			if res.UsedFallback() {
				result.Fallbacks++
			}
			if refined := refineScore(subject, candidate, vectors, breakdown, res.Context.Collaboration); refined != nil {
				breakdown = refined
			}
			if opts.Verbose {
				printer.PrintRationale(rationale)
			}
			emitProgress(&opts, StepResearch,
				fmt.Sprintf("Researched pair with %s (fallback: %t)", candidate.Name, res.UsedFallback()), subjectID, nil)
		} else {
			rationale = research.FallbackRationale(subject, candidate)
		}

		record := &types.MatchRecord{
			SubjectID:   subjectID,
			CandidateID: candidate.ID,
			Tier:        tier,
			Score:       breakdown.Total,
			Breakdown:   breakdown,
			Rationale:   rationale,
			Status:      types.StatusDraft,
		}
		if err := opts.Store.UpsertMatch(ctx, record); err != nil {
			log.Printf("[pipeline] persisting match %s -> %s failed: %v", subjectID, candidate.ID, err)
			persistErr = err
			continue
		}
		result.Matches = append(result.Matches, record)
	}

	if opts.Verbose {
		printer.PrintMatches(tier, result.Matches)
	}
	emitProgress(&opts, StepPersist, fmt.Sprintf("Persisted %d match records", len(result.Matches)), subjectID, result.Matches)

	if len(result.Matches) == 0 && persistErr != nil {
		return nil, fmt.Errorf("persisting matches failed: %w", persistErr)
	}
	return result, nil
}

// embedFunc builds the lazy embedding filler handed to the ranker. Computed
// vectors are persisted and cached; persistence failures are logged but do
// not block ranking.
func embedFunc(opts *RunOptions, vectors map[uuid.UUID][]float32) ranking.EmbedFunc {
	if opts.Client == nil {
		return nil
	}
	return func(ctx context.Context, a *types.Attendee) ([]float32, error) {
		// The broader pass ranks the same pool again; skip recomputation.
		if cached, ok := vectors[a.ID]; ok {
			return cached, nil
		}

		values, err := opts.Client.Embed(ctx, profile.EmbeddingText(a))
		if err != nil {
			return nil, err
		}
		vectors[a.ID] = values

		v := &types.EmbeddingVector{
			AttendeeID: a.ID,
			Values:     values,
			Model:      opts.Client.GetModel(llm.TierLite),
			UpdatedAt:  time.Now(),
		}
		if err := opts.Store.UpsertVector(ctx, v); err != nil {
			log.Printf("[pipeline] persisting vector for %s failed: %v", a.ID, err)
		}
		emitProgress(opts, StepEmbed, fmt.Sprintf("Computed embedding for %s", a.Name), a.ID, nil)
		return values, nil
	}
}

// loadCandidate fetches an attendee's stored vector, caching it for the
// refinement pass.
func loadCandidate(ctx context.Context, store Store, a *types.Attendee, vectors map[uuid.UUID][]float32) (ranking.Candidate, error) {
	v, err := store.GetVector(ctx, a.ID)
	if err != nil {
		return ranking.Candidate{}, fmt.Errorf("loading vector for %s failed: %w", a.ID, err)
	}

	c := ranking.Candidate{Attendee: a}
	if v != nil {
		c.Vector = v.Values
		vectors[a.ID] = v.Values
	}
	return c, nil
}

// refineScore re-scores a pair once with collaboration findings folded in.
// Refinement only ever raises the score; a nil return means keep the
// original breakdown.
func refineScore(subject, candidate *types.Attendee, vectors map[uuid.UUID][]float32, original *types.ScoreBreakdown, collab *types.CollaborationResearch) *types.ScoreBreakdown {
	if collab == nil {
		return nil
	}

	similarity := scoring.CosineSimilarity(vectors[subject.ID], vectors[candidate.ID])
	refined := scoring.Score(subject, candidate, similarity, collab)
	if original != nil && refined.Total < original.Total {
		return nil
	}
	return refined
}
