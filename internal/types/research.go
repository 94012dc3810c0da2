package types

// IndustryResearch is the structured output of the industry research stage.
type IndustryResearch struct {
	SubjectIndustryTrends   []string `json:"subject_industry_trends"`
	CandidateIndustryTrends []string `json:"candidate_industry_trends"`
	SharedOpportunities     []string `json:"shared_opportunities"`
	Summary                 string   `json:"summary"`
}

// EntityResearch is the structured output of the entity research stage,
// covering both organizations in the pair.
type EntityResearch struct {
	SubjectPosition   string   `json:"subject_position"`
	CandidatePosition string   `json:"candidate_position"`
	CommonGround      []string `json:"common_ground"`
	Summary           string   `json:"summary"`
}

// CollaborationResearch is the structured output of the creative
// collaboration stage. When present it may raise, never lower, the
// complementary-value score of the pair.
type CollaborationResearch struct {
	Ideas     []string `json:"ideas"`
	Potential string   `json:"potential"` // high, medium, or low
	Summary   string   `json:"summary"`
}

// Synthesis is the final stage output: the three rationale fields
// addressed to the subject.
type Synthesis struct {
	StrategicRationale string `json:"strategic_rationale"`
	CollaborationAngle string `json:"collaboration_angle"`
	ConversationOpener string `json:"conversation_opener"`
}

// ResearchContext accumulates the outputs of successive research stages.
// Later stages receive the context built by earlier ones; a nil field means
// that stage did not run or did not succeed.
type ResearchContext struct {
	Industry      *IndustryResearch      `json:"industry,omitempty"`
	Entities      *EntityResearch        `json:"entities,omitempty"`
	Collaboration *CollaborationResearch `json:"collaboration,omitempty"`
	Synthesis     *Synthesis             `json:"synthesis,omitempty"`
}
