package scoring

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/AILLCSteve/rotary-networking-app/internal/profile"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// Maximum points per scoring category. The six category maxima must sum
// to 100.
const (
	baselinePoints      = 30
	semanticMaxPoints   = 20
	complementaryMax    = 20
	marketMaxPoints     = 15
	geographyMaxPoints  = 8
	industryMaxPoints   = 7
	pointsPerMatch      = 5 // per complementary need/asset hit
	geographyFarPoints  = 2 // different or missing city, deliberately minor
	industryCrossPoints = 3 // generic cross-industry bonus
)

// highValueIndustryPairs maps normalized industry pairs known to produce
// strong referral relationships to their bonus.
var highValueIndustryPairs = map[string]int{
	pairKey("real estate", "construction"):       industryMaxPoints,
	pairKey("real estate", "finance"):            industryMaxPoints,
	pairKey("technology", "marketing"):           industryMaxPoints,
	pairKey("legal", "finance"):                  industryMaxPoints,
	pairKey("healthcare", "insurance"):           industryMaxPoints,
	pairKey("food & beverage", "hospitality"):    industryMaxPoints,
	pairKey("manufacturing", "logistics"):        industryMaxPoints,
	pairKey("construction", "architecture"):      industryMaxPoints,
	pairKey("marketing", "media"):                6,
	pairKey("technology", "finance"):             6,
	pairKey("retail", "logistics"):               6,
	pairKey("nonprofit", "legal"):                6,
	pairKey("education", "technology"):           6,
	pairKey("fitness", "healthcare"):             6,
	pairKey("automotive", "insurance"):           6,
	pairKey("agriculture", "food & beverage"):    6,
	pairKey("entertainment", "hospitality"):      6,
	pairKey("consulting", "technology"):          6,
	pairKey("real estate", "home services"):      industryMaxPoints,
	pairKey("insurance", "financial services"):   6,
	pairKey("financial services", "real estate"): industryMaxPoints,
}

// sameIndustryBonuses captures industries where peers refer overflow work
// to each other; everything else gets the default same-industry bonus.
var sameIndustryBonuses = map[string]int{
	"real estate": 6,
	"legal":       6,
	"consulting":  5,
	"marketing":   5,
	"insurance":   5,
}

const sameIndustryDefaultBonus = 4

var (
	b2bPattern         = regexp.MustCompile(`(?i)\bb2b\b|business(es)? (to|2) business|wholesale|enterprise|corporate client`)
	b2cPattern         = regexp.MustCompile(`(?i)\bb2c\b|consumer|retail|direct to consumer|d2c|individual client`)
	seniorityPattern   = regexp.MustCompile(`(?i)\b(founder|ceo|owner|president|principal|managing (partner|director))\b`)
	establishedPattern = regexp.MustCompile(`(?i)\$\s?\d|million|award|\b\d+\+?\s*(years|yrs)\b`)
)

// Score computes the 100-point compatibility breakdown for an ordered
// (subject, candidate) pair. similarity is the precomputed cosine
// similarity of their embedding vectors (0 when either vector is absent).
// research, when non-nil, may raise the complementary-value category but
// never lowers it. Self-pairs always score 0 with an empty breakdown.
func Score(subject, candidate *types.Attendee, similarity float64, research *types.CollaborationResearch) *types.ScoreBreakdown {
	if subject == nil || candidate == nil || subject.ID == candidate.ID {
		return &types.ScoreBreakdown{Total: 0, Categories: []types.ScoreCategory{}}
	}

	categories := []types.ScoreCategory{
		baselineCategory(subject, candidate),
		semanticCategory(similarity),
		complementaryCategory(subject, candidate, research),
		marketCategory(subject, candidate),
		geographyCategory(subject, candidate),
		industryCategory(subject, candidate),
	}

	total := 0
	for _, c := range categories {
		total += c.Points
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return &types.ScoreBreakdown{
		Total:      total,
		Grade:      grade(total),
		Categories: categories,
	}
}

// baselineCategory grants the fixed floor every valid pair receives. The
// justification text compares role seniority and notes stated constraints;
// it is display-only and never changes the point value.
func baselineCategory(subject, candidate *types.Attendee) types.ScoreCategory {
	subjectSenior := seniorityPattern.MatchString(subject.Role)
	candidateSenior := seniorityPattern.MatchString(candidate.Role)

	var why string
	switch {
	case subjectSenior && candidateSenior:
		why = "Both are decision-makers, so commitments made here can stick."
	case subjectSenior || candidateSenior:
		why = "A decision-maker paired with a specialist often uncovers concrete next steps."
	default:
		why = "Every attendee brings networking value worth exploring."
	}
	if strings.TrimSpace(subject.Constraint) != "" && strings.TrimSpace(candidate.Constraint) != "" {
		why += " Both have named a current constraint, which makes for a focused conversation."
	}

	return types.ScoreCategory{
		Label:         "Baseline potential",
		Points:        baselinePoints,
		MaxPoints:     baselinePoints,
		Justification: why,
	}
}

func semanticCategory(similarity float64) types.ScoreCategory {
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	points := int(math.Round(similarity * semanticMaxPoints))

	why := "Profiles show little semantic overlap."
	if similarity >= 0.7 {
		why = "Profiles are strongly related in what they do and who they serve."
	} else if similarity >= 0.4 {
		why = "Profiles share meaningful common ground."
	} else if similarity > 0 {
		why = "Profiles have modest semantic overlap."
	}

	return types.ScoreCategory{
		Label:         "Semantic similarity",
		Points:        points,
		MaxPoints:     semanticMaxPoints,
		Justification: why,
	}
}

// complementaryCategory counts keyword-level need/asset hits in both
// directions, plus constraint-to-asset hits. A collaboration research
// result, when supplied, can only raise the category.
func complementaryCategory(subject, candidate *types.Attendee, research *types.CollaborationResearch) types.ScoreCategory {
	evidence := []string{}

	collect := func(needs, assets []string, direction string) {
		for _, need := range needs {
			for _, asset := range assets {
				if IsComplementary(need, asset) {
					evidence = append(evidence, fmt.Sprintf("%s: %q ↔ %q", direction, need, asset))
				}
			}
		}
	}

	collect(profile.Needs(subject), profile.Assets(candidate), "their asset meets your need")
	collect(profile.Needs(candidate), profile.Assets(subject), "your asset meets their need")
	collect(profile.SplitList(subject.Constraint), profile.Assets(candidate), "their asset addresses your constraint")

	points := len(evidence) * pointsPerMatch
	if points > complementaryMax {
		points = complementaryMax
	}

	why := "No direct need/asset overlap found; value may still emerge in conversation."
	if len(evidence) > 0 {
		why = fmt.Sprintf("Found %d direct need/asset connection(s) between your profiles.", len(evidence))
	}

	if research != nil {
		if boosted := researchPoints(research); boosted > points {
			points = boosted
			why = fmt.Sprintf("Collaboration research rates this pairing %s with %d concrete idea(s).",
				strings.ToLower(strings.TrimSpace(research.Potential)), len(research.Ideas))
		}
	}

	return types.ScoreCategory{
		Label:         "Complementary value",
		Points:        points,
		MaxPoints:     complementaryMax,
		Justification: why,
		Evidence:      evidence,
	}
}

// researchPoints converts a collaboration research result into category
// points: the potential rating sets a floor, idea count can push higher.
func researchPoints(r *types.CollaborationResearch) int {
	points := 0
	switch strings.ToLower(strings.TrimSpace(r.Potential)) {
	case "high":
		points = complementaryMax
	case "medium":
		points = complementaryMax * 3 / 4
	case "low":
		points = complementaryMax / 2
	}
	if byIdeas := len(r.Ideas) * pointsPerMatch; byIdeas > points {
		points = byIdeas
	}
	if points > complementaryMax {
		points = complementaryMax
	}
	return points
}

func marketCategory(subject, candidate *types.Attendee) types.ScoreCategory {
	points := 0
	var signals []string

	subjectText := subject.RevenueDriver + " " + subject.Assets
	candidateText := candidate.RevenueDriver + " " + candidate.Assets

	sameB2B := b2bPattern.MatchString(subjectText) && b2bPattern.MatchString(candidateText)
	sameB2C := b2cPattern.MatchString(subjectText) && b2cPattern.MatchString(candidateText)
	if sameB2B || sameB2C {
		points += 5
		signals = append(signals, "aligned customer model")
	}

	if seniorityPattern.MatchString(subject.Role) && seniorityPattern.MatchString(candidate.Role) {
		points += 5
		signals = append(signals, "both senior decision-makers")
	}

	established := 0
	if establishedPattern.MatchString(subjectText + " " + subject.FunFact) {
		established++
	}
	if establishedPattern.MatchString(candidateText + " " + candidate.FunFact) {
		established++
	}
	if established > 0 {
		points += established * 3
		signals = append(signals, "established-business signals")
	}

	if points > marketMaxPoints {
		points = marketMaxPoints
	}

	why := "No market-alignment signals detected."
	if len(signals) > 0 {
		why = "Market alignment: " + strings.Join(signals, ", ") + "."
	}

	return types.ScoreCategory{
		Label:         "Market alignment",
		Points:        points,
		MaxPoints:     marketMaxPoints,
		Justification: why,
	}
}

// geographyCategory is deliberately minor so location never dominates the
// score and matches don't cluster purely by city.
func geographyCategory(subject, candidate *types.Attendee) types.ScoreCategory {
	subjectCity := strings.ToLower(strings.TrimSpace(subject.City))
	candidateCity := strings.ToLower(strings.TrimSpace(candidate.City))

	if subjectCity != "" && subjectCity == candidateCity {
		return types.ScoreCategory{
			Label:         "Geographic proximity",
			Points:        geographyMaxPoints,
			MaxPoints:     geographyMaxPoints,
			Justification: fmt.Sprintf("Both based in %s, so meeting in person is easy.", strings.TrimSpace(candidate.City)),
		}
	}

	return types.ScoreCategory{
		Label:         "Geographic proximity",
		Points:        geographyFarPoints,
		MaxPoints:     geographyMaxPoints,
		Justification: "Different or unstated cities; remote collaboration still works.",
	}
}

func industryCategory(subject, candidate *types.Attendee) types.ScoreCategory {
	subjectInd := strings.ToLower(strings.TrimSpace(subject.Industry))
	candidateInd := strings.ToLower(strings.TrimSpace(candidate.Industry))

	if subjectInd == "" || candidateInd == "" {
		return types.ScoreCategory{
			Label:         "Industry synergy",
			Points:        0,
			MaxPoints:     industryMaxPoints,
			Justification: "Industry not stated for at least one party.",
		}
	}

	if subjectInd == candidateInd {
		bonus, ok := sameIndustryBonuses[subjectInd]
		if !ok {
			bonus = sameIndustryDefaultBonus
		}
		return types.ScoreCategory{
			Label:         "Industry synergy",
			Points:        bonus,
			MaxPoints:     industryMaxPoints,
			Justification: fmt.Sprintf("Same industry (%s): peer insight and overflow referrals.", candidateInd),
		}
	}

	if bonus, ok := highValueIndustryPairs[pairKey(subjectInd, candidateInd)]; ok {
		return types.ScoreCategory{
			Label:         "Industry synergy",
			Points:        bonus,
			MaxPoints:     industryMaxPoints,
			Justification: fmt.Sprintf("%s and %s are a known high-referral pairing.", subjectInd, candidateInd),
		}
	}

	return types.ScoreCategory{
		Label:         "Industry synergy",
		Points:        industryCrossPoints,
		MaxPoints:     industryMaxPoints,
		Justification: "Cross-industry perspective often surfaces unexpected opportunities.",
	}
}

// pairKey builds an order-independent lookup key for an industry pair.
func pairKey(a, b string) string {
	pair := []string{strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))}
	sort.Strings(pair)
	return pair[0] + "|" + pair[1]
}

func grade(total int) string {
	switch {
	case total >= 85:
		return "A+"
	case total >= 75:
		return "A"
	case total >= 65:
		return "B+"
	case total >= 55:
		return "B"
	default:
		return "C"
	}
}
