package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/prompts"
	"github.com/AILLCSteve/rotary-networking-app/internal/schemas"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// Orchestrator runs the staged research pipeline for one attendee pair.
// The LLM client is constructor-injected so tests can substitute fakes.
type Orchestrator struct {
	client llm.Client

	// Timeouts are fields rather than constants so tests can shrink them.
	researchTimeout  time.Duration
	synthesisTimeout time.Duration
}

// NewOrchestrator creates an Orchestrator backed by the given LLM client.
func NewOrchestrator(client llm.Client) *Orchestrator {
	return &Orchestrator{
		client:           client,
		researchTimeout:  researchStageTimeout,
		synthesisTimeout: synthesisStageTimeout,
	}
}

// Run executes the stages in order: IndustryResearch, EntityResearch,
// CollaborationResearch, Synthesis. The first stage failure is logged and
// routes to the fallback generator; no retries within a stage. Run never
// returns an error; the result always carries a complete rationale.
func (o *Orchestrator) Run(ctx context.Context, subject, candidate *types.Attendee, breakdown *types.ScoreBreakdown) *Result {
	result := &Result{Stage: StageDone}

	subjectProfile := formatProfile(subject)
	candidateProfile := formatProfile(candidate)

	// Stage 1: industry research.
	var industry types.IndustryResearch
	prompt := prompts.Format(prompts.MustGet("research.json", "industry-research"), map[string]string{
		"SubjectProfile":   subjectProfile,
		"CandidateProfile": candidateProfile,
	})
	if err := o.callStage(ctx, StageIndustryResearch, prompt, llm.TierLite, schemas.IndustryResearch, &industry); err != nil {
		return o.fallback(result, StageIndustryResearch, err, subject, candidate)
	}
	result.Context.Industry = &industry

	// Stage 2: entity research, fed by stage 1.
	var entities types.EntityResearch
	prompt = prompts.Format(prompts.MustGet("research.json", "entity-research"), map[string]string{
		"IndustryContext":  marshalContext(result.Context.Industry),
		"SubjectProfile":   subjectProfile,
		"CandidateProfile": candidateProfile,
	})
	if err := o.callStage(ctx, StageEntityResearch, prompt, llm.TierStandard, schemas.EntityResearch, &entities); err != nil {
		return o.fallback(result, StageEntityResearch, err, subject, candidate)
	}
	result.Context.Entities = &entities

	// Stage 3: creative collaboration research, fed by stages 1-2.
	var collab types.CollaborationResearch
	prompt = prompts.Format(prompts.MustGet("research.json", "collaboration-research"), map[string]string{
		"ResearchContext":  marshalContext(result.Context),
		"SubjectProfile":   subjectProfile,
		"CandidateProfile": candidateProfile,
	})
	if err := o.callStage(ctx, StageCollaborationResearch, prompt, llm.TierStandard, schemas.CollaborationResearch, &collab); err != nil {
		return o.fallback(result, StageCollaborationResearch, err, subject, candidate)
	}
	result.Context.Collaboration = &collab

	// Stage 4: synthesis of everything into the three rationale fields.
	var synthesis types.Synthesis
	prompt = prompts.Format(prompts.MustGet("research.json", "synthesis"), map[string]string{
		"SubjectProfile":   subjectProfile,
		"CandidateProfile": candidateProfile,
		"ResearchContext":  marshalContext(result.Context),
		"ScoreSummary":     scoreSummary(breakdown),
	})
	if err := o.callStage(ctx, StageSynthesis, prompt, llm.TierAdvanced, schemas.Synthesis, &synthesis); err != nil {
		return o.fallback(result, StageSynthesis, err, subject, candidate)
	}
	if blank(synthesis.StrategicRationale) || blank(synthesis.CollaborationAngle) || blank(synthesis.ConversationOpener) {
		err := &IncompleteResponseError{Stage: StageSynthesis, Cause: fmt.Errorf("blank rationale field")}
		return o.fallback(result, StageSynthesis, err, subject, candidate)
	}
	result.Context.Synthesis = &synthesis

	result.Rationale = types.Rationale{
		Strategic:          synthesis.StrategicRationale,
		CollaborationAngle: synthesis.CollaborationAngle,
		ConversationOpener: synthesis.ConversationOpener,
	}
	return result
}

// callStage performs one time-boxed AI call, validates the response against
// the stage schema, and decodes it. Any deviation from the expected field
// set is an IncompleteResponseError.
func (o *Orchestrator) callStage(ctx context.Context, stage Stage, prompt string, tier llm.ModelTier, schema string, out any) error {
	timeout := o.researchTimeout
	if stage == StageSynthesis {
		timeout = o.synthesisTimeout
	}
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := o.client.GenerateJSON(stageCtx, prompt, tier)
	if err != nil {
		return fmt.Errorf("stage %s call failed: %w", stage, err)
	}

	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schema, raw); err != nil {
		return &IncompleteResponseError{Stage: stage, Cause: err}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &IncompleteResponseError{Stage: stage, Cause: err}
	}
	return nil
}

// fallback logs the failed stage and completes the result deterministically.
func (o *Orchestrator) fallback(result *Result, failed Stage, cause error, subject, candidate *types.Attendee) *Result {
	log.Printf("[research] %s -> %s falling back at stage %s: %v", subject.ID, candidate.ID, failed, cause)
	result.Stage = StageFallback
	result.FailedStage = failed
	result.Rationale = FallbackRationale(subject, candidate)
	return result
}

// formatProfile renders an attendee for inclusion in a prompt.
func formatProfile(a *types.Attendee) string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", label, strings.TrimSpace(value)))
		}
	}

	add("Name", a.Name)
	add("Organization", a.Organization)
	add("Role", a.Role)
	add("Industry", a.Industry)
	add("City", a.City)
	add("Revenue driver", a.RevenueDriver)
	add("Current constraint", a.Constraint)
	add("Assets", a.Assets)
	add("Needs", a.Needs)
	add("Fun fact", a.FunFact)

	if sb.Len() == 0 {
		return "- (no profile details provided)\n"
	}
	return sb.String()
}

// marshalContext renders accumulated research as JSON for later prompts.
func marshalContext(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func scoreSummary(b *types.ScoreBreakdown) string {
	if b == nil {
		return "not scored"
	}

	parts := make([]string, 0, len(b.Categories)+1)
	parts = append(parts, fmt.Sprintf("total %d/100 (%s)", b.Total, b.Grade))
	for _, c := range b.Categories {
		parts = append(parts, fmt.Sprintf("%s %d/%d", c.Label, c.Points, c.MaxPoints))
	}
	return strings.Join(parts, "; ")
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
