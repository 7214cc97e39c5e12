// Package framework drives the whole-document analyses: the fixed-category
// structured review and the open-ended adaptive review, both applied to
// preprocessed text.
package framework

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// DefaultCategories is the built-in review framework applied when the caller
// does not supply one.
func DefaultCategories() []schemas.FrameworkCategory {
	return []schemas.FrameworkCategory{
		{ID: "qualification", Title: "资质与合规", Focus: "营业执照、资质证书、业绩要求、信用记录"},
		{ID: "technical", Title: "技术要求", Focus: "技术参数、实施方案、人员配置、验收标准"},
		{ID: "commercial", Title: "商务与成本", Focus: "报价要求、保证金、付款条件、税费"},
		{ID: "schedule", Title: "时间与流程", Focus: "截止时间、开标时间、有效期、交付周期"},
		{ID: "risk", Title: "风险与注意事项", Focus: "废标条款、违约责任、知识产权、异常条款"},
	}
}

// Analyzer runs whole-document analyses through the model gateway, normalizing
// the text first.
type Analyzer struct {
	gateway schemas.ModelGateway
	pre     schemas.Preprocessor
	logger  *zap.Logger
}

// NewAnalyzer wires the analyzer. The preprocessor may be nil, in which case
// text is analyzed as-is.
func NewAnalyzer(gateway schemas.ModelGateway, pre schemas.Preprocessor, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		gateway: gateway,
		pre:     pre,
		logger:  logger.Named("framework"),
	}
}

// AnalyzeAdaptive runs the open-ended review. Blank input is rejected before
// any backend call.
func (a *Analyzer) AnalyzeAdaptive(ctx context.Context, text string) (schemas.AdaptiveReport, error) {
	text, meta, err := a.prepare(text)
	if err != nil {
		return schemas.AdaptiveReport{}, err
	}

	report, err := a.gateway.AnalyzeAdaptive(ctx, text)
	if err != nil {
		return schemas.AdaptiveReport{}, err
	}
	a.logResult(meta, report.DegradedFrom, len(report.CriticalRequirements))
	return report, nil
}

// AnalyzeFramework runs the structured review against the given categories,
// falling back to the default framework when none are provided.
func (a *Analyzer) AnalyzeFramework(ctx context.Context, text string, categories []schemas.FrameworkCategory) (schemas.FrameworkReport, error) {
	text, meta, err := a.prepare(text)
	if err != nil {
		return schemas.FrameworkReport{}, err
	}
	if len(categories) == 0 {
		categories = DefaultCategories()
	}

	report, err := a.gateway.AnalyzeFramework(ctx, text, categories)
	if err != nil {
		return schemas.FrameworkReport{}, err
	}
	a.logResult(meta, report.DegradedFrom, len(report.Categories))
	return report, nil
}

func (a *Analyzer) prepare(text string) (string, map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil, fmt.Errorf("document text is empty")
	}
	var meta map[string]any
	if a.pre != nil {
		text, meta = a.pre.Preprocess(text)
	}
	return text, meta, nil
}

func (a *Analyzer) logResult(meta map[string]any, degradedFrom string, sections int) {
	fields := []zap.Field{zap.Int("sections", sections)}
	if meta != nil {
		fields = append(fields, zap.Any("preprocess", meta))
	}
	if degradedFrom != "" {
		fields = append(fields, zap.String("degraded_from", degradedFrom))
		a.logger.Warn("Analysis completed on degraded backend", fields...)
		return
	}
	a.logger.Info("Analysis completed", fields...)
}
