// Package rules implements the multi-strategy rule matching engine.
package rules

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// Engine matches a document against a set of declarative rules and aggregates
// the hits by category.
type Engine struct {
	rules     []schemas.Rule
	retriever schemas.Retriever
	gateway   schemas.ModelGateway
	window    int
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRetriever supplies the candidate retriever used by semantic rules.
func WithRetriever(r schemas.Retriever) EngineOption {
	return func(e *Engine) { e.retriever = r }
}

// WithGateway supplies the model gateway used by semantic rules.
func WithGateway(g schemas.ModelGateway) EngineOption {
	return func(e *Engine) { e.gateway = g }
}

// WithSnippetWindow overrides the context window size in bytes.
func WithSnippetWindow(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.window = n
		}
	}
}

// NewEngine builds an engine over an immutable rule set.
func NewEngine(rules []schemas.Rule, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:  rules,
		window: 120,
		logger: logger.Named("rules_engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs every rule against the text and returns the aggregated result.
// Failures local to one pattern or one rule never abort the batch.
func (e *Engine) Analyze(ctx context.Context, text string) schemas.AnalysisResult {
	var hits []schemas.Hit
	for _, rule := range e.rules {
		switch rule.MatchType {
		case schemas.MatchKeyword:
			hits = append(hits, e.matchKeyword(rule, text)...)
		case schemas.MatchRegex:
			hits = append(hits, e.matchRegex(rule, text)...)
		case schemas.MatchSemantic:
			hits = append(hits, e.matchSemantic(ctx, rule, text)...)
		default:
			e.logger.Warn("Skipping rule with unknown match type",
				zap.String("rule_id", rule.ID),
				zap.String("match_type", string(rule.MatchType)))
		}
	}
	return e.aggregate(hits)
}

// matchKeyword finds every non-overlapping case-insensitive occurrence of each
// pattern. Evidence is the matched slice of the original-case text.
//
// Lowercasing can change byte length (Kelvin sign U+212A folds to a one-byte
// k), so offsets found in the folded text cannot index the original directly.
// foldCase records the original offset of every folded byte and matches are
// mapped back through that table.
func (e *Engine) matchKeyword(rule schemas.Rule, text string) []schemas.Hit {
	lowered, offsets := foldCase(text)

	var hits []schemas.Hit
	for _, pattern := range rule.Patterns {
		needle, _ := foldCase(pattern)
		if needle == "" {
			// A zero-length pattern matches everywhere; it yields no hits
			// rather than one per byte offset.
			continue
		}
		pos := 0
		for pos <= len(lowered)-len(needle) {
			idx := strings.Index(lowered[pos:], needle)
			if idx < 0 {
				break
			}
			foldedStart := pos + idx
			foldedEnd := foldedStart + len(needle)
			start := offsets[foldedStart]
			end := offsets[foldedEnd]
			hits = append(hits, e.newHit(rule, text, start, end-start))
			pos = foldedEnd
		}
	}
	return hits
}

// foldCase lowercases rune by rune and returns, for every byte offset of the
// folded string (plus the end position), the offset of the originating rune in
// the source string.
func foldCase(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		before := b.Len()
		b.WriteRune(unicode.ToLower(r))
		for j := before; j < b.Len(); j++ {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(s))
	return b.String(), offsets
}

// matchRegex enumerates all non-overlapping matches of each pattern, compiled
// case-insensitive and multiline. Invalid patterns are skipped.
func (e *Engine) matchRegex(rule schemas.Rule, text string) []schemas.Hit {
	var hits []schemas.Hit
	for _, pattern := range rule.Patterns {
		re, err := regexp.Compile("(?im)" + pattern)
		if err != nil {
			e.logger.Debug("Skipping invalid regex pattern",
				zap.String("rule_id", rule.ID),
				zap.String("pattern", pattern),
				zap.Error(err))
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if loc[1] == loc[0] {
				continue // zero-width match carries no evidence
			}
			hits = append(hits, e.newHit(rule, text, loc[0], loc[1]-loc[0]))
		}
	}
	return hits
}

// matchSemantic resolves candidates through the retriever and gateway. Any
// failure degrades to zero hits for the rule.
func (e *Engine) matchSemantic(ctx context.Context, rule schemas.Rule, text string) []schemas.Hit {
	var segments []schemas.Segment
	if e.retriever != nil {
		segments = e.retriever.LocateCandidates(text, rule.Patterns)
	}

	var candidates []schemas.Candidate
	switch {
	case e.gateway != nil:
		located, err := e.gateway.SemanticLocate(ctx, text, rule.Patterns, rule, segments)
		if err != nil {
			e.logger.Warn("Semantic lookup failed, rule yields no hits",
				zap.String("rule_id", rule.ID),
				zap.Error(err))
			return nil
		}
		candidates = located
	case len(segments) > 0:
		for _, seg := range segments {
			candidates = append(candidates, schemas.Candidate{
				Start:    seg.Start,
				Length:   seg.Length,
				Evidence: seg.Text,
				Score:    seg.Score,
			})
		}
	default:
		return nil
	}

	var hits []schemas.Hit
	for _, c := range candidates {
		start := c.Start
		if start < 0 {
			start = 0
		}
		length := c.Length
		if length < 0 {
			length = 0
		}
		hit := e.newHit(rule, text, start, length)
		if c.Evidence != "" {
			hit.Evidence = c.Evidence
		} else {
			hit.Evidence = hit.Snippet
		}
		if hit.Evidence == "" {
			continue
		}
		hits = append(hits, hit)
	}
	return hits
}

func (e *Engine) newHit(rule schemas.Rule, text string, start, length int) schemas.Hit {
	end := start + length
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	return schemas.Hit{
		RuleID:      rule.ID,
		Category:    rule.Category,
		Severity:    schemas.ParseSeverity(string(rule.Severity)),
		Snippet:     Snippet(text, start, end-start, e.window),
		Evidence:    text[start:end],
		Description: rule.Description,
		Advice:      rule.Advice,
	}
}

// aggregate groups hits by category and orders each group by descending
// severity weight, ties keeping discovery order.
func (e *Engine) aggregate(hits []schemas.Hit) schemas.AnalysisResult {
	categories := make(map[string][]schemas.Hit)
	for _, h := range hits {
		categories[h.Category] = append(categories[h.Category], h)
	}
	for cat := range categories {
		group := categories[cat]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Severity.Weight() > group[j].Severity.Weight()
		})
	}

	summary := make(map[string]int, len(categories))
	for cat, group := range categories {
		summary[cat] = len(group)
	}
	return schemas.AnalysisResult{Summary: summary, Categories: categories}
}
