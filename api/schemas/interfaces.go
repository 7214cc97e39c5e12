package schemas

import "context"

// Retriever locates candidate text spans relevant to a set of hint phrases.
// Implementations must tolerate empty text and empty hints.
type Retriever interface {
	LocateCandidates(text string, hints []string) []Segment
}

// ModelGateway abstracts the language-model backends behind the four semantic
// operations of the core. Implementations must always return a well-formed
// structure for the whole-document operations, substituting a heuristic result
// when the backend transport fails.
type ModelGateway interface {
	SemanticLocate(ctx context.Context, text string, hints []string, rule Rule, segments []Segment) ([]Candidate, error)
	SummarizeRule(ctx context.Context, rule Rule, evidences []string) (RuleSummary, error)
	AnalyzeFramework(ctx context.Context, text string, categories []FrameworkCategory) (FrameworkReport, error)
	AnalyzeAdaptive(ctx context.Context, text string) (AdaptiveReport, error)
}

// ChatBackend is one HTTP chat-completion provider. Complete returns the raw
// content string of the first choice; transport failures are reported as
// errors so the gateway can apply its degrade contract.
type ChatBackend interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extractor turns an uploaded file into plain text plus extraction metadata.
// An empty text return is treated as an extraction failure by the orchestrator.
type Extractor interface {
	Extract(path, filename, contentType string) (string, map[string]any, error)
}

// Preprocessor normalizes raw document text before analysis. The returned
// metadata is stored verbatim under the job's "preprocess" key.
type Preprocessor interface {
	Preprocess(text string) (string, map[string]any)
}

// JobStore is the CRUD contract for job records. Implementations must be safe
// for concurrent use; updates are partial-field merges, last-write-wins per
// field, with no ordering guarantee across different jobs.
type JobStore interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, id string, upd JobUpdate) (*Job, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*Job, error)
}
