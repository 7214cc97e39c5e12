// Package schemas holds the shared value types and collaborator interfaces of the
// tender analysis core. It is a dependency-free leaf so every internal package can
// import it without cycles.
package schemas

// Severity classifies how strongly a matched clause affects the bid.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityWeights is the fixed ordering used when sorting hits inside a category.
var severityWeights = map[Severity]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
}

// Weight returns the sort weight of the severity. Unknown values weigh the same
// as medium, matching the default applied when a rule omits its severity.
func (s Severity) Weight() int {
	if w, ok := severityWeights[s]; ok {
		return w
	}
	return severityWeights[SeverityMedium]
}

// ParseSeverity maps a free-form severity string onto the closed set,
// defaulting to medium.
func ParseSeverity(raw string) Severity {
	switch Severity(raw) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(raw)
	default:
		return SeverityMedium
	}
}

// MatchType selects the matching strategy a rule uses.
type MatchType string

const (
	MatchKeyword  MatchType = "keyword"
	MatchRegex    MatchType = "regex"
	MatchSemantic MatchType = "semantic"
)

// Rule is an immutable matching directive. Rules are created at configuration
// time and never mutated during analysis.
type Rule struct {
	ID          string    `json:"id" yaml:"id"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	MatchType   MatchType `json:"match_type" yaml:"match_type"`
	Patterns    []string  `json:"patterns" yaml:"patterns"`
	Severity    Severity  `json:"severity" yaml:"severity"`
	Advice      string    `json:"advice,omitempty" yaml:"advice,omitempty"`
}

// Segment is a transient span of text proposed as relevant by a retriever.
// Offsets are byte offsets into the UTF-8 source document.
type Segment struct {
	Start  int     `json:"start"`
	Length int     `json:"length"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// Hit is one concrete match of a rule against a document. Severity, description
// and advice are copied from the owning rule at match time.
type Hit struct {
	RuleID      string   `json:"rule_id"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Snippet     string   `json:"snippet"`
	Evidence    string   `json:"evidence"`
	Description string   `json:"description"`
	Advice      string   `json:"advice,omitempty"`
}

// AnalysisResult is the aggregated output of one analyze call. Within each
// category the hits are ordered by descending severity weight, ties keeping
// discovery order.
type AnalysisResult struct {
	Summary    map[string]int   `json:"summary"`
	Categories map[string][]Hit `json:"categories"`
}
