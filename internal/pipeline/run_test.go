package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/research"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	attendees map[uuid.UUID]*types.Attendee
	vectors   map[uuid.UUID]*types.EmbeddingVector
	matches   []*types.MatchRecord

	failUpsertFor uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		attendees: make(map[uuid.UUID]*types.Attendee),
		vectors:   make(map[uuid.UUID]*types.EmbeddingVector),
	}
}

func (s *fakeStore) GetAttendee(_ context.Context, id uuid.UUID) (*types.Attendee, error) {
	return s.attendees[id], nil
}

func (s *fakeStore) ListConsentingAttendees(_ context.Context, excludeID uuid.UUID) ([]*types.Attendee, error) {
	var pool []*types.Attendee
	for _, a := range s.attendees {
		if a.ID != excludeID && a.Consent {
			pool = append(pool, a)
		}
	}
	return pool, nil
}

func (s *fakeStore) GetVector(_ context.Context, attendeeID uuid.UUID) (*types.EmbeddingVector, error) {
	return s.vectors[attendeeID], nil
}

func (s *fakeStore) UpsertVector(_ context.Context, v *types.EmbeddingVector) error {
	s.vectors[v.AttendeeID] = v
	return nil
}

func (s *fakeStore) UpsertMatch(_ context.Context, m *types.MatchRecord) error {
	if m.CandidateID == s.failUpsertFor {
		return fmt.Errorf("write failed")
	}
	// Keyed on (subject, candidate, tier) like the matches table.
	for i, existing := range s.matches {
		if existing.SubjectID == m.SubjectID && existing.CandidateID == m.CandidateID && existing.Tier == m.Tier {
			m.ID = existing.ID
			s.matches[i] = m
			return nil
		}
	}
	m.ID = uuid.New()
	s.matches = append(s.matches, m)
	return nil
}

// embedClient returns a constant vector and counts calls.
type embedClient struct {
	vector []float32
	calls  int
}

func (c *embedClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (c *embedClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (c *embedClient) Embed(_ context.Context, _ string) ([]float32, error) {
	c.calls++
	return c.vector, nil
}

func (c *embedClient) GetModel(_ llm.ModelTier) string { return "fake-embedder" }
func (c *embedClient) Close() error                    { return nil }

// fakeResearcher returns a canned research result for every pair.
type fakeResearcher struct {
	result research.Result
	calls  int
}

func (r *fakeResearcher) Run(_ context.Context, _, _ *types.Attendee, _ *types.ScoreBreakdown) *research.Result {
	r.calls++
	out := r.result
	return &out
}

func attendee(name, industry, city string) *types.Attendee {
	return &types.Attendee{
		ID:       uuid.New(),
		Name:     name,
		Industry: industry,
		City:     city,
		Consent:  true,
	}
}

func seedStore(t *testing.T, names ...string) (*fakeStore, *types.Attendee, []*types.Attendee) {
	t.Helper()
	store := newFakeStore()

	subject := attendee("Subject", "consulting", "Tulsa")
	store.attendees[subject.ID] = subject
	store.vectors[subject.ID] = &types.EmbeddingVector{AttendeeID: subject.ID, Values: []float32{1, 0}}

	var pool []*types.Attendee
	for i, name := range names {
		a := attendee(name, "consulting", "Tulsa")
		store.attendees[a.ID] = a
		// Decreasing similarity to the subject in pool order.
		store.vectors[a.ID] = &types.EmbeddingVector{
			AttendeeID: a.ID,
			Values:     []float32{1, float32(i)},
		}
		pool = append(pool, a)
	}
	return store, subject, pool
}

func TestRun_TopTierCapsAndOrders(t *testing.T) {
	store, subject, pool := seedStore(t, "A", "B", "C", "D", "E")

	researcher := &fakeResearcher{result: research.Result{
		Rationale: types.Rationale{
			Strategic:          "You complement each other.",
			CollaborationAngle: "Trade referrals.",
			ConversationOpener: "Ask about their growth.",
		},
		Stage: research.StageDone,
	}}

	result, err := Run(context.Background(), RunOptions{Store: store, Researcher: researcher}, subject.ID, types.TierTop)
	require.NoError(t, err)

	require.Len(t, result.Matches, 3)
	assert.Equal(t, 3, researcher.calls)
	assert.Equal(t, 0, result.Fallbacks)

	// Highest similarity candidate ranks first.
	assert.Equal(t, pool[0].ID, result.Matches[0].CandidateID)
	for i := 1; i < len(result.Matches); i++ {
		assert.GreaterOrEqual(t, result.Matches[i-1].Score, result.Matches[i].Score)
	}
	for _, m := range result.Matches {
		assert.Equal(t, types.TierTop, m.Tier)
		assert.Equal(t, types.StatusDraft, m.Status)
		assert.Equal(t, "You complement each other.", m.Rationale.Strategic)
		assert.NotEqual(t, uuid.Nil, m.ID)
	}
}

func TestRun_RerunReplacesInsteadOfDuplicating(t *testing.T) {
	store, subject, _ := seedStore(t, "A", "B", "C", "D")

	first, err := Run(context.Background(), RunOptions{Store: store}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.Len(t, first.Matches, 3)

	second, err := Run(context.Background(), RunOptions{Store: store}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.Len(t, second.Matches, 3)

	assert.Len(t, store.matches, 3)
	for i := range first.Matches {
		assert.Equal(t, first.Matches[i].ID, second.Matches[i].ID)
	}
}

func TestRun_BroaderExcludesTop(t *testing.T) {
	store, subject, _ := seedStore(t, "A", "B", "C", "D", "E")

	topResult, err := Run(context.Background(), RunOptions{Store: store}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.Len(t, topResult.Matches, 3)

	broaderResult, err := Run(context.Background(), RunOptions{Store: store}, subject.ID, types.TierBroader)
	require.NoError(t, err)
	require.Len(t, broaderResult.Matches, 2)

	topIDs := make(map[uuid.UUID]bool)
	for _, m := range topResult.Matches {
		topIDs[m.CandidateID] = true
	}
	for _, m := range broaderResult.Matches {
		assert.False(t, topIDs[m.CandidateID], "broader tier must not repeat a top candidate")
		assert.Equal(t, types.TierBroader, m.Tier)
		assert.NotEmpty(t, m.Rationale.Strategic)
	}
}

func TestRun_BroaderUsesFallbackRationale(t *testing.T) {
	store, subject, pool := seedStore(t, "A", "B", "C", "D")

	researcher := &fakeResearcher{}
	result, err := Run(context.Background(), RunOptions{Store: store, Researcher: researcher}, subject.ID, types.TierBroader)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	// Research is reserved for the top tier.
	assert.Equal(t, 0, researcher.calls)
	want := research.FallbackRationale(subject, pool[3])
	assert.Equal(t, want, result.Matches[0].Rationale)
}

func TestRun_SubjectWithoutConsent(t *testing.T) {
	store, subject, _ := seedStore(t, "A")
	subject.Consent = false

	_, err := Run(context.Background(), RunOptions{Store: store}, subject.ID, types.TierTop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consented")
}

func TestRun_SubjectNotFound(t *testing.T) {
	store := newFakeStore()

	_, err := Run(context.Background(), RunOptions{Store: store}, uuid.New(), types.TierTop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRun_FallbackResearchCounted(t *testing.T) {
	store, subject, pool := seedStore(t, "A")

	researcher := &fakeResearcher{result: research.Result{
		Rationale:   research.FallbackRationale(subject, pool[0]),
		Stage:       research.StageFallback,
		FailedStage: research.StageSynthesis,
	}}

	result, err := Run(context.Background(), RunOptions{Store: store, Researcher: researcher}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, 1, result.Fallbacks)
	assert.NotEmpty(t, result.Matches[0].Rationale.ConversationOpener)
}

func TestRun_CollaborationFindingsRaiseScore(t *testing.T) {
	store, subject, _ := seedStore(t, "A")

	plain, err := Run(context.Background(), RunOptions{Store: store}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.Len(t, plain.Matches, 1)

	researcher := &fakeResearcher{result: research.Result{
		Rationale: types.Rationale{
			Strategic:          "s",
			CollaborationAngle: "a",
			ConversationOpener: "o",
		},
		Context: types.ResearchContext{
			Collaboration: &types.CollaborationResearch{
				Ideas:     []string{"joint workshop", "shared booth"},
				Potential: "high",
				Summary:   "strong fit",
			},
		},
		Stage: research.StageDone,
	}}

	enriched, err := Run(context.Background(), RunOptions{Store: store, Researcher: researcher}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.Len(t, enriched.Matches, 1)

	assert.GreaterOrEqual(t, enriched.Matches[0].Score, plain.Matches[0].Score)
}

func TestRun_MissingVectorsComputedAndPersisted(t *testing.T) {
	store, subject, pool := seedStore(t, "A", "B")
	// Drop the stored vectors so the pipeline must compute them.
	store.vectors = make(map[uuid.UUID]*types.EmbeddingVector)

	client := &embedClient{vector: []float32{1, 0}}

	result, err := Run(context.Background(), RunOptions{Store: store, Client: client}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)

	assert.NotNil(t, store.vectors[subject.ID])
	for _, a := range pool {
		assert.NotNil(t, store.vectors[a.ID], "vector for %s should be persisted", a.Name)
	}
	assert.Equal(t, "fake-embedder", store.vectors[subject.ID].Model)
	assert.Equal(t, 3, client.calls)
}

func TestRun_PersistFailureSkipsRecord(t *testing.T) {
	store, subject, pool := seedStore(t, "A", "B", "C")
	store.failUpsertFor = pool[1].ID

	result, err := Run(context.Background(), RunOptions{Store: store}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	for _, m := range result.Matches {
		assert.NotEqual(t, pool[1].ID, m.CandidateID)
	}
}

func TestRun_ProgressEventsEmitted(t *testing.T) {
	store, subject, _ := seedStore(t, "A", "B")

	var steps []string
	result, err := Run(context.Background(), RunOptions{
		Store: store,
		OnProgress: func(e ProgressEvent) {
			steps = append(steps, e.Step)
		},
	}, subject.ID, types.TierTop)
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)

	assert.Contains(t, steps, StepLoadSubject)
	assert.Contains(t, steps, StepLoadPool)
	assert.Contains(t, steps, StepRank)
	assert.Contains(t, steps, StepPersist)
}
