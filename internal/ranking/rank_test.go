package ranking

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

func attendee(name, city string) *types.Attendee {
	return &types.Attendee{ID: uuid.New(), Name: name, City: city, Consent: true}
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	subject := attendee("Subject", "Denver")

	// Same-city candidate outscores the far one on geography alone.
	near := attendee("Near", "Denver")
	far := attendee("Far", "Tulsa")

	pool := []Candidate{{Attendee: far}, {Attendee: near}}

	ranked, err := Rank(context.Background(), Candidate{Attendee: subject}, pool, TierConfig{Tier: types.TierTop}, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Near", ranked[0].Attendee.Name)
	assert.Equal(t, "Far", ranked[1].Attendee.Name)
}

func TestRank_StableOrderForTies(t *testing.T) {
	subject := attendee("Subject", "")

	a := attendee("First", "")
	b := attendee("Second", "")
	c := attendee("Third", "")

	pool := []Candidate{{Attendee: a}, {Attendee: b}, {Attendee: c}}

	ranked, err := Rank(context.Background(), Candidate{Attendee: subject}, pool, TierConfig{Tier: types.TierTop}, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"First", "Second", "Third"},
		[]string{ranked[0].Attendee.Name, ranked[1].Attendee.Name, ranked[2].Attendee.Name})
}

func TestRank_SelfPairExcluded(t *testing.T) {
	subject := attendee("Subject", "Denver")
	other := attendee("Other", "Denver")

	// Subject accidentally present in its own pool.
	pool := []Candidate{{Attendee: subject}, {Attendee: other}}

	ranked, err := Rank(context.Background(), Candidate{Attendee: subject}, pool, TierConfig{Tier: types.TierTop}, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Other", ranked[0].Attendee.Name)
}

func TestRank_SelfOnlyPoolYieldsEmptyList(t *testing.T) {
	subject := attendee("Subject", "Denver")

	ranked, err := Rank(context.Background(), Candidate{Attendee: subject},
		[]Candidate{{Attendee: subject}}, TierConfig{Tier: types.TierTop}, nil)

	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRank_CapApplied(t *testing.T) {
	subject := attendee("Subject", "")
	pool := make([]Candidate, 0, 6)
	for i := 0; i < 6; i++ {
		pool = append(pool, Candidate{Attendee: attendee(fmt.Sprintf("C%d", i), "")})
	}

	ranked, err := Rank(context.Background(), Candidate{Attendee: subject}, pool, TopConfig(), nil)
	require.NoError(t, err)
	assert.Len(t, ranked, DefaultTopCap)
}

func TestRank_BroaderExcludesTop(t *testing.T) {
	subject := attendee("Subject", "")
	pool := make([]Candidate, 0, 6)
	for i := 0; i < 6; i++ {
		pool = append(pool, Candidate{Attendee: attendee(fmt.Sprintf("C%d", i), "")})
	}

	top, err := Rank(context.Background(), Candidate{Attendee: subject}, pool, TopConfig(), nil)
	require.NoError(t, err)
	require.Len(t, top, DefaultTopCap)

	broader, err := Rank(context.Background(), Candidate{Attendee: subject}, pool, BroaderConfig(TopIDs(top)), nil)
	require.NoError(t, err)
	assert.Len(t, broader, 3)

	topSet := make(map[uuid.UUID]bool)
	for _, r := range top {
		topSet[r.Attendee.ID] = true
	}
	for _, r := range broader {
		assert.False(t, topSet[r.Attendee.ID], "broader tier must not repeat top-tier candidates")
	}
}

func TestRank_EmbedFailureDoesNotSkipCandidate(t *testing.T) {
	subject := attendee("Subject", "Denver")
	subjectVec := []float32{1, 0, 0}
	good := attendee("Good", "Denver")
	broken := attendee("Broken", "Denver")

	embed := func(_ context.Context, a *types.Attendee) ([]float32, error) {
		if a.ID == broken.ID {
			return nil, fmt.Errorf("quota exceeded")
		}
		return []float32{1, 0, 0}, nil
	}

	pool := []Candidate{{Attendee: good}, {Attendee: broken}}

	ranked, err := Rank(context.Background(), Candidate{Attendee: subject, Vector: subjectVec}, pool,
		TierConfig{Tier: types.TierTop}, embed)
	require.NoError(t, err)
	// Both candidates present: the broken one scored with similarity 0.
	require.Len(t, ranked, 2)
	assert.Equal(t, "Good", ranked[0].Attendee.Name)
}

func TestRank_PoisonedCandidateExcludedOthersSurvive(t *testing.T) {
	subject := attendee("Subject", "")
	pool := make([]Candidate, 0, 5)
	for i := 0; i < 4; i++ {
		pool = append(pool, Candidate{Attendee: attendee(fmt.Sprintf("C%d", i), "")})
	}
	// A nil attendee entry simulates a malformed stored record.
	pool = append(pool, Candidate{Attendee: nil})

	ranked, err := Rank(context.Background(), Candidate{Attendee: subject}, pool, TierConfig{Tier: types.TierTop}, nil)
	require.NoError(t, err)
	assert.Len(t, ranked, 4)
}

func TestRank_NilSubject(t *testing.T) {
	_, err := Rank(context.Background(), Candidate{}, nil, TopConfig(), nil)
	assert.Error(t, err)
}
