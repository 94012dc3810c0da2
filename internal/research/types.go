// Package research drives the staged AI pipeline that turns a scored pair
// of attendees into a personalized introduction rationale.
package research

import (
	"fmt"
	"time"

	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// Stage identifies one state of the per-pair research pipeline.
type Stage string

// Pipeline stages, in execution order. Transitions are strictly forward;
// a failure at any stage routes directly to StageFallback, skipping the
// rest. This bounds worst-case latency per pair to the sum of the stage
// timeouts.
const (
	StageIndustryResearch      Stage = "industry_research"
	StageEntityResearch        Stage = "entity_research"
	StageCollaborationResearch Stage = "collaboration_research"
	StageSynthesis             Stage = "synthesis"
	StageDone                  Stage = "done"
	StageFallback              Stage = "fallback"
)

// Per-stage call timeouts.
const (
	researchStageTimeout  = 60 * time.Second
	synthesisStageTimeout = 90 * time.Second
)

// IncompleteResponseError indicates the AI returned a response missing
// required fields for a stage. It always routes the pipeline to fallback;
// partial reads are never attempted.
type IncompleteResponseError struct {
	Stage Stage
	Cause error
}

func (e *IncompleteResponseError) Error() string {
	return fmt.Sprintf("incomplete AI response at stage %s: %v", e.Stage, e.Cause)
}

func (e *IncompleteResponseError) Unwrap() error {
	return e.Cause
}

// Result is the outcome of one pipeline run for a (subject, candidate) pair.
type Result struct {
	// Rationale is always fully populated: by synthesis when the pipeline
	// completes, by the fallback generator otherwise.
	Rationale types.Rationale
	// Context holds whatever stage outputs were successfully obtained
	// before completion or failure. A collaboration result obtained before
	// a later failure is still usable for score refinement.
	Context types.ResearchContext
	// Stage is StageDone on full success, StageFallback otherwise.
	Stage Stage
	// FailedStage names the stage that failed when Stage is StageFallback.
	FailedStage Stage
}

// UsedFallback reports whether the rationale came from the deterministic
// fallback generator.
func (r *Result) UsedFallback() bool {
	return r.Stage == StageFallback
}
