// Package llmclient implements the model gateway: a closed set of chat
// backends behind the four semantic operations, with heuristic substitution
// for the whole-document analyses when the backend transport fails.
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
	"github.com/change8/BiddingAssistant/internal/config"
)

// Gateway routes the semantic operations to the configured chat backend. A
// nil backend means the heuristic provider handles everything locally.
//
// The degrade contract is asymmetric. The whole-document analyses
// (AnalyzeFramework, AnalyzeAdaptive) never fail on transport errors: the
// heuristic result is substituted and the raw error body recorded in
// DegradedFrom. The per-rule operations (SemanticLocate, SummarizeRule)
// propagate transport errors so the rules engine can apply its own fallback.
type Gateway struct {
	provider  string
	chat      schemas.ChatBackend
	heuristic *HeuristicBackend
	logger    *zap.Logger
}

// New builds the gateway for the configured provider. Unknown identifiers and
// missing credentials fail here, before any network activity.
func New(cfg config.LLMConfig, retriever schemas.Retriever, logger *zap.Logger) (*Gateway, error) {
	gw := &Gateway{
		provider:  cfg.Provider,
		heuristic: NewHeuristicBackend(retriever, logger),
		logger:    logger.Named("llm_gateway"),
	}

	switch cfg.Provider {
	case "", "heuristic", "stub", "mock":
		// Local provider, no backend to construct.
	case "openai", "openai_compatible":
		chat, err := NewOpenAIClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		gw.chat = chat
	case "azure", "azure_openai":
		chat, err := NewAzureClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		gw.chat = chat
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	return gw, nil
}

// Provider reports the configured provider identifier.
func (g *Gateway) Provider() string {
	if g.provider == "" {
		return "heuristic"
	}
	return g.provider
}

// SemanticLocate implements schemas.ModelGateway. Transport errors propagate.
func (g *Gateway) SemanticLocate(ctx context.Context, text string, hints []string, rule schemas.Rule, segments []schemas.Segment) ([]schemas.Candidate, error) {
	if g.chat == nil {
		return g.heuristic.SemanticLocate(ctx, text, hints, rule, segments)
	}

	system, user := buildSemanticPrompt(text, hints, rule, segments)
	raw, err := g.chat.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	return normalizeCandidates(raw, text), nil
}

// SummarizeRule implements schemas.ModelGateway. Transport errors propagate.
func (g *Gateway) SummarizeRule(ctx context.Context, rule schemas.Rule, evidences []string) (schemas.RuleSummary, error) {
	if g.chat == nil {
		return g.heuristic.SummarizeRule(ctx, rule, evidences)
	}

	system, user := buildSummaryPrompt(rule, evidences)
	raw, err := g.chat.Complete(ctx, system, user)
	if err != nil {
		return schemas.RuleSummary{}, err
	}
	return normalizeRuleSummary(raw, rule), nil
}

// AnalyzeFramework implements schemas.ModelGateway. On transport failure the
// heuristic result is returned with DegradedFrom set; no error escapes.
func (g *Gateway) AnalyzeFramework(ctx context.Context, text string, categories []schemas.FrameworkCategory) (schemas.FrameworkReport, error) {
	if g.chat == nil {
		return g.heuristic.AnalyzeFramework(ctx, text, categories)
	}

	system, user := buildFrameworkPrompt(text, categories)
	raw, err := g.chat.Complete(ctx, system, user)
	if err != nil {
		g.logger.Warn("Framework analysis degraded to heuristic backend",
			zap.String("backend", g.chat.Name()), zap.Error(err))
		report, _ := g.heuristic.AnalyzeFramework(ctx, text, categories)
		report.DegradedFrom = transportBody(err)
		return report, nil
	}
	return normalizeFrameworkReport(raw), nil
}

// AnalyzeAdaptive implements schemas.ModelGateway. On transport failure the
// heuristic result is returned with DegradedFrom set; no error escapes.
func (g *Gateway) AnalyzeAdaptive(ctx context.Context, text string) (schemas.AdaptiveReport, error) {
	if g.chat == nil {
		return g.heuristic.AnalyzeAdaptive(ctx, text)
	}

	system, user := buildAdaptivePrompt(text)
	raw, err := g.chat.Complete(ctx, system, user)
	if err != nil {
		g.logger.Warn("Adaptive analysis degraded to heuristic backend",
			zap.String("backend", g.chat.Name()), zap.Error(err))
		report, _ := g.heuristic.AnalyzeAdaptive(ctx, text)
		report.DegradedFrom = transportBody(err)
		return report, nil
	}
	return normalizeAdaptiveReport(raw), nil
}
