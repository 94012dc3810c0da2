package research

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// scriptedClient returns canned JSON responses in call order.
type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
}

func (c *scriptedClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func (c *scriptedClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.GenerateJSON(ctx, prompt, tier)
}

func (c *scriptedClient) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c *scriptedClient) GetModel(_ llm.ModelTier) string { return "scripted" }
func (c *scriptedClient) Close() error                    { return nil }

// timeoutClient blocks until the stage context expires.
type timeoutClient struct{}

func (c *timeoutClient) GenerateJSON(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (c *timeoutClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.GenerateJSON(ctx, prompt, tier)
}

func (c *timeoutClient) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c *timeoutClient) GetModel(_ llm.ModelTier) string { return "timeout" }
func (c *timeoutClient) Close() error                    { return nil }

const (
	industryJSON  = `{"subject_industry_trends":["a"],"candidate_industry_trends":["b"],"shared_opportunities":["c"],"summary":"industry summary"}`
	entityJSON    = `{"subject_position":"leader","candidate_position":"challenger","common_ground":["smb focus"],"summary":"entity summary"}`
	collabJSON    = `{"ideas":["joint workshop","referral swap"],"potential":"high","summary":"collab summary"}`
	synthesisJSON = `{"strategic_rationale":"Meet them because it matters.","collaboration_angle":"Run a joint event.","conversation_opener":"1. Ask X 2. Ask Y 3. Ask Z"}`
)

func pair() (*types.Attendee, *types.Attendee) {
	return &types.Attendee{ID: uuid.New(), Name: "Ada", Industry: "Technology"},
		&types.Attendee{ID: uuid.New(), Name: "Grace", Industry: "Marketing"}
}

func TestRun_AllStagesSucceed(t *testing.T) {
	client := &scriptedClient{responses: []string{industryJSON, entityJSON, collabJSON, synthesisJSON}}
	o := NewOrchestrator(client)
	subject, candidate := pair()

	result := o.Run(context.Background(), subject, candidate, nil)

	assert.Equal(t, StageDone, result.Stage)
	assert.False(t, result.UsedFallback())
	require.NotNil(t, result.Context.Industry)
	require.NotNil(t, result.Context.Entities)
	require.NotNil(t, result.Context.Collaboration)
	require.NotNil(t, result.Context.Synthesis)
	assert.Equal(t, "Meet them because it matters.", result.Rationale.Strategic)
	assert.Equal(t, "Run a joint event.", result.Rationale.CollaborationAngle)
	assert.Equal(t, 4, client.calls)
}

func TestRun_FirstStageFailureSkipsRest(t *testing.T) {
	client := &scriptedClient{errs: []error{fmt.Errorf("quota exceeded")}}
	o := NewOrchestrator(client)
	subject, candidate := pair()

	result := o.Run(context.Background(), subject, candidate, nil)

	assert.Equal(t, StageFallback, result.Stage)
	assert.Equal(t, StageIndustryResearch, result.FailedStage)
	// No further stages attempted after the failure.
	assert.Equal(t, 1, client.calls)
	assert.Nil(t, result.Context.Industry)
	// Fallback still yields a complete rationale.
	assert.NotEmpty(t, result.Rationale.Strategic)
	assert.NotEmpty(t, result.Rationale.CollaborationAngle)
	assert.NotEmpty(t, result.Rationale.ConversationOpener)
}

func TestRun_MidPipelineSchemaViolation(t *testing.T) {
	// Collaboration response missing "potential".
	badCollab := `{"ideas":["x"],"summary":"s"}`
	client := &scriptedClient{responses: []string{industryJSON, entityJSON, badCollab}}
	o := NewOrchestrator(client)
	subject, candidate := pair()

	result := o.Run(context.Background(), subject, candidate, nil)

	assert.Equal(t, StageFallback, result.Stage)
	assert.Equal(t, StageCollaborationResearch, result.FailedStage)
	// Earlier stage outputs are retained.
	assert.NotNil(t, result.Context.Industry)
	assert.NotNil(t, result.Context.Entities)
	assert.Nil(t, result.Context.Collaboration)
	assert.Equal(t, 3, client.calls)
}

func TestRun_SynthesisFailureKeepsCollaboration(t *testing.T) {
	client := &scriptedClient{
		responses: []string{industryJSON, entityJSON, collabJSON},
		errs:      []error{nil, nil, nil, fmt.Errorf("timed out")},
	}
	o := NewOrchestrator(client)
	subject, candidate := pair()

	result := o.Run(context.Background(), subject, candidate, nil)

	assert.Equal(t, StageFallback, result.Stage)
	assert.Equal(t, StageSynthesis, result.FailedStage)
	// The collaboration result survives for score refinement.
	require.NotNil(t, result.Context.Collaboration)
	assert.Equal(t, "high", result.Context.Collaboration.Potential)
}

func TestRun_BlankSynthesisFieldIsFailure(t *testing.T) {
	blankSynthesis := `{"strategic_rationale":"  ","collaboration_angle":"y","conversation_opener":"z"}`
	client := &scriptedClient{responses: []string{industryJSON, entityJSON, collabJSON, blankSynthesis}}
	o := NewOrchestrator(client)
	subject, candidate := pair()

	result := o.Run(context.Background(), subject, candidate, nil)

	assert.Equal(t, StageFallback, result.Stage)
	assert.NotEmpty(t, result.Rationale.Strategic)
}

func TestRun_TimeoutRoutesToFallback(t *testing.T) {
	o := NewOrchestrator(&timeoutClient{})
	o.researchTimeout = 10 * time.Millisecond
	o.synthesisTimeout = 10 * time.Millisecond
	subject, candidate := pair()

	result := o.Run(context.Background(), subject, candidate, nil)

	assert.Equal(t, StageFallback, result.Stage)
	assert.Equal(t, StageIndustryResearch, result.FailedStage)
	// Rationale equals what the fallback generator independently produces.
	assert.Equal(t, FallbackRationale(subject, candidate), result.Rationale)
}

func TestRun_MarkdownWrappedResponseAccepted(t *testing.T) {
	wrapped := "```json\n" + industryJSON + "\n```"
	client := &scriptedClient{responses: []string{wrapped, entityJSON, collabJSON, synthesisJSON}}
	o := NewOrchestrator(client)
	subject, candidate := pair()

	result := o.Run(context.Background(), subject, candidate, nil)

	assert.Equal(t, StageDone, result.Stage)
}
