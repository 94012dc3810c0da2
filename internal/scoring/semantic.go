package scoring

import (
	"regexp"
	"strings"
)

// semanticClusters groups terms that are considered mutually compatible.
// Two phrases match when both contain a term from the same cluster. The
// lists are hand-picked: plain substring matching misses pairs like
// "SEO" vs "search engine optimization".
var semanticClusters = [][]string{
	{"marketing", "seo", "search engine", "social media", "branding", "content", "advertising", "ads"},
	{"sales", "business development", "lead generation", "leads", "crm", "prospecting", "closing"},
	{"technical", "software", "development", "engineering", "it ", "automation", "website", "web design", "app"},
	{"financial", "finance", "accounting", "bookkeeping", "tax", "funding", "capital", "investment"},
	{"operational", "operations", "logistics", "supply chain", "fulfillment", "process", "efficiency"},
	{"strategic", "strategy", "planning", "consulting", "advisory", "coaching", "mentorship"},
	{"legal", "law", "contracts", "compliance", "trademark", "incorporation"},
	{"people", "hr", "hiring", "recruiting", "talent", "staffing", "training"},
	{"creative", "design", "video", "photography", "copywriting", "graphics", "media production"},
	{"growth", "scaling", "expansion", "partnerships", "distribution", "franchising"},
}

// patternPair captures a common business pattern: a phrase expressing a
// need matched against a phrase expressing an asset that serves it.
// Pattern pairs are intentionally directional (need side vs asset side).
type patternPair struct {
	need  *regexp.Regexp
	asset *regexp.Regexp
}

var patternPairs = []patternPair{
	{regexp.MustCompile(`(?i)customer|client|lead`), regexp.MustCompile(`(?i)sales|marketing|business development|crm`)},
	{regexp.MustCompile(`(?i)visibility|awareness|exposure`), regexp.MustCompile(`(?i)marketing|pr|media|advertising|social`)},
	{regexp.MustCompile(`(?i)money|cash|funding|capital`), regexp.MustCompile(`(?i)invest|finance|lending|capital|accounting`)},
	{regexp.MustCompile(`(?i)time|bandwidth|overwhelm`), regexp.MustCompile(`(?i)automation|assistant|outsourc|delegat|operations`)},
	{regexp.MustCompile(`(?i)online|digital|website|presence`), regexp.MustCompile(`(?i)web|software|development|design|seo`)},
	{regexp.MustCompile(`(?i)hire|hiring|staff|team`), regexp.MustCompile(`(?i)recruit|hr|talent|staffing`)},
	{regexp.MustCompile(`(?i)grow|growth|scale|expand`), regexp.MustCompile(`(?i)strategy|consulting|coaching|partnership`)},
}

// IsComplementary reports whether a need phrase and an asset phrase are
// considered related. Inputs are expected lower-cased; the function is pure
// and total over any string input. Policy, first match wins:
// substring containment, shared cluster membership, then pattern pairs
// (need side against the need regex only).
func IsComplementary(need, asset string) bool {
	need = strings.TrimSpace(need)
	asset = strings.TrimSpace(asset)
	if need == "" || asset == "" {
		return false
	}

	if strings.Contains(need, asset) || strings.Contains(asset, need) {
		return true
	}

	for _, cluster := range semanticClusters {
		if containsClusterTerm(need, cluster) && containsClusterTerm(asset, cluster) {
			return true
		}
	}

	for _, pp := range patternPairs {
		if pp.need.MatchString(need) && pp.asset.MatchString(asset) {
			return true
		}
	}

	return false
}

func containsClusterTerm(phrase string, cluster []string) bool {
	for _, term := range cluster {
		if strings.Contains(phrase, term) {
			return true
		}
	}
	return false
}
