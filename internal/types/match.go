package types

import (
	"time"

	"github.com/google/uuid"
)

// Tier identifies which candidate bucket a match belongs to.
type Tier string

// Tier constants define the two match buckets.
const (
	// TierTop is the small, high-confidence, research-enriched bucket.
	TierTop Tier = "top"
	// TierBroader is the larger, exploratory bucket.
	TierBroader Tier = "broader"
)

// MatchStatus tracks whether the subject has seen a match.
type MatchStatus string

// Match status constants.
const (
	StatusDraft        MatchStatus = "draft"
	StatusAcknowledged MatchStatus = "acknowledged"
)

// ScoreCategory is one named component of a score breakdown.
type ScoreCategory struct {
	Label         string   `json:"label"`
	Points        int      `json:"points"`
	MaxPoints     int      `json:"max_points"`
	Justification string   `json:"justification"`
	Evidence      []string `json:"evidence,omitempty"`
}

// ScoreBreakdown is the per-category decomposition of a pairwise
// compatibility score. It is an ephemeral computed value; persistence
// alongside a match record is for display and audit only.
type ScoreBreakdown struct {
	Total      int             `json:"total"`
	Grade      string          `json:"grade"`
	Categories []ScoreCategory `json:"categories"`
}

// Rationale is the three-part explanation of why two attendees should meet.
// All three fields are always non-empty: either the AI synthesis produced
// them or the deterministic fallback did.
type Rationale struct {
	Strategic          string `json:"strategic_rationale"`
	CollaborationAngle string `json:"collaboration_angle"`
	ConversationOpener string `json:"conversation_opener"`
}

// MatchRecord is a directed recommendation: for the subject attendee,
// suggest the candidate attendee, in the given tier. At most one record
// exists per (subject, candidate, tier); regeneration overwrites.
type MatchRecord struct {
	ID          uuid.UUID       `json:"id"`
	SubjectID   uuid.UUID       `json:"subject_id"`
	CandidateID uuid.UUID       `json:"candidate_id"`
	Tier        Tier            `json:"tier"`
	Score       int             `json:"score"`
	Breakdown   *ScoreBreakdown `json:"breakdown,omitempty"`
	Rationale   Rationale       `json:"rationale"`
	Status      MatchStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
