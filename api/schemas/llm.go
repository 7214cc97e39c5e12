package schemas

// Candidate is a model-proposed evidence span. Offsets are byte offsets into
// the source document handed to the gateway.
type Candidate struct {
	Start    int     `json:"start"`
	Length   int     `json:"length"`
	Evidence string  `json:"evidence"`
	Score    float64 `json:"score"`
}

// SummaryItem pairs one requirement statement with its quoted evidence.
type SummaryItem struct {
	Requirement string `json:"requirement"`
	Evidence    string `json:"evidence"`
}

// RuleSummary condenses the evidence collected for a single rule.
type RuleSummary struct {
	Summary string        `json:"summary"`
	Items   []SummaryItem `json:"items"`
}

// FrameworkCategory describes one axis of the structured review framework.
type FrameworkCategory struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Focus string `json:"focus,omitempty" yaml:"focus,omitempty"`
}

// FrameworkItem is one finding inside a framework category.
type FrameworkItem struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Evidence       string   `json:"evidence"`
	Recommendation string   `json:"recommendation"`
	Severity       Severity `json:"severity"`
}

// FrameworkCategoryReport is the per-category output of a framework analysis.
type FrameworkCategoryReport struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Summary string          `json:"summary"`
	Items   []FrameworkItem `json:"items"`
}

// Milestone is one dated event extracted from the document.
type Milestone struct {
	Name     string `json:"name"`
	Deadline string `json:"deadline"`
	Note     string `json:"note,omitempty"`
}

// Timeline collects the milestones of a framework analysis.
type Timeline struct {
	Milestones []Milestone `json:"milestones"`
	Remark     string      `json:"remark,omitempty"`
}

// FrameworkReport is the full result of a whole-document framework analysis.
// DegradedFrom carries the raw transport error body when the result was
// substituted by the heuristic backend after an HTTP failure.
type FrameworkReport struct {
	Categories   []FrameworkCategoryReport `json:"categories"`
	Timeline     Timeline                  `json:"timeline"`
	DegradedFrom string                    `json:"degraded_from,omitempty"`
}

// RequirementItem is one mandatory requirement surfaced by the adaptive analysis.
type RequirementItem struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Evidence       string   `json:"evidence"`
	Impact         string   `json:"impact,omitempty"`
	Severity       Severity `json:"severity"`
	ActionRequired string   `json:"action_required,omitempty"`
}

// RequirementGroup buckets requirement items under a model-chosen category.
type RequirementGroup struct {
	Category string            `json:"category"`
	Items    []RequirementItem `json:"items"`
}

// CostFactor is one clause with cost implications.
type CostFactor struct {
	Item            string `json:"item"`
	Description     string `json:"description"`
	EstimatedImpact string `json:"estimated_impact,omitempty"`
	Evidence        string `json:"evidence,omitempty"`
}

// TimelineEvent is one dated obligation in the adaptive report.
type TimelineEvent struct {
	Event      string `json:"event"`
	Deadline   string `json:"deadline"`
	Importance string `json:"importance,omitempty"`
}

// Risk is one identified bidding risk.
type Risk struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Likelihood  string `json:"likelihood,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Mitigation  string `json:"mitigation,omitempty"`
}

// UnusualFinding flags a clause worth extra scrutiny.
type UnusualFinding struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Concern     string `json:"concern,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// Clarification is a question the bidder should raise before submitting.
type Clarification struct {
	Issue             string `json:"issue"`
	Context           string `json:"context,omitempty"`
	SuggestedQuestion string `json:"suggested_question,omitempty"`
}

// AdaptiveReport is the open-ended whole-document analysis result. All slices
// are non-nil after normalization so callers can range without guards.
type AdaptiveReport struct {
	Summary              string             `json:"summary"`
	CriticalRequirements []RequirementGroup `json:"critical_requirements"`
	CostFactors          []CostFactor       `json:"cost_factors"`
	Timeline             []TimelineEvent    `json:"timeline"`
	Risks                []Risk             `json:"risks"`
	UnusualFindings      []UnusualFinding   `json:"unusual_findings"`
	ClarificationNeeded  []Clarification    `json:"clarification_needed"`
	DegradedFrom         string             `json:"degraded_from,omitempty"`
}

// EmptyAdaptiveReport returns the documented all-empty default structure used
// when a backend reply cannot be parsed.
func EmptyAdaptiveReport() AdaptiveReport {
	return AdaptiveReport{
		CriticalRequirements: []RequirementGroup{},
		CostFactors:          []CostFactor{},
		Timeline:             []TimelineEvent{},
		Risks:                []Risk{},
		UnusualFindings:      []UnusualFinding{},
		ClarificationNeeded:  []Clarification{},
	}
}

// EmptyFrameworkReport returns the documented all-empty default structure.
func EmptyFrameworkReport() FrameworkReport {
	return FrameworkReport{
		Categories: []FrameworkCategoryReport{},
		Timeline:   Timeline{Milestones: []Milestone{}},
	}
}
