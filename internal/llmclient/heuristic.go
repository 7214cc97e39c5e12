package llmclient

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
	"github.com/change8/BiddingAssistant/internal/retrieval"
)

// mandatoryMarkers flag lines that carry binding obligations or rejection
// conditions.
var mandatoryMarkers = []string{"必须", "不得", "应当", "废标", "否决", "★"}

var (
	costMarkers     = []string{"费用", "价格", "报价", "成本", "押金", "保证金", "付款"}
	timelineMarkers = []string{"截止", "日期", "时间", "之前", "前完成", "开标", "有效期"}
	riskMarkers     = []string{"违约", "罚", "赔偿", "终止", "没收", "扣除"}

	dateRE = regexp.MustCompile(`\d{4}\s*[年./-]\s*\d{1,2}\s*[月./-]\s*\d{1,2}\s*日?` +
		`|\d{1,2}\s*月\s*\d{1,2}\s*日`)
)

// HeuristicBackend computes every gateway operation locally from lexical
// retrieval and marker scans. It serves as the offline provider and as the
// substitute result source when an HTTP backend fails.
type HeuristicBackend struct {
	retriever schemas.Retriever
	logger    *zap.Logger
}

// NewHeuristicBackend builds the local backend. The retriever may be nil; the
// document is then segmented on demand.
func NewHeuristicBackend(retriever schemas.Retriever, logger *zap.Logger) *HeuristicBackend {
	return &HeuristicBackend{
		retriever: retriever,
		logger:    logger.Named("llm_client.heuristic"),
	}
}

// SemanticLocate scores the provided segments against the hints. With no
// precomputed segments it retrieves (or splits) its own.
func (h *HeuristicBackend) SemanticLocate(_ context.Context, text string, hints []string, _ schemas.Rule, segments []schemas.Segment) ([]schemas.Candidate, error) {
	if len(segments) == 0 {
		if h.retriever != nil {
			segments = h.retriever.LocateCandidates(text, hints)
		} else {
			segments = retrieval.SplitSegments(text, 400)
		}
	}

	candidates := make([]schemas.Candidate, 0, len(segments))
	for _, seg := range segments {
		score := seg.Score
		if score == 0 {
			score = bestHintScore(seg.Text, hints)
		}
		if score <= 0 {
			continue
		}
		candidates = append(candidates, schemas.Candidate{
			Start:    seg.Start,
			Length:   seg.Length,
			Evidence: seg.Text,
			Score:    score,
		})
	}
	return candidates, nil
}

func bestHintScore(text string, hints []string) float64 {
	var best float64
	lowered := strings.ToLower(text)
	for _, hint := range hints {
		if hint == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(hint)) {
			return 1.0
		}
		if s := retrieval.DiceBigram(text, hint); s > best {
			best = s
		}
	}
	return best
}

// SummarizeRule builds a mechanical digest: the rule description as summary
// and one item per evidence string.
func (h *HeuristicBackend) SummarizeRule(_ context.Context, rule schemas.Rule, evidences []string) (schemas.RuleSummary, error) {
	items := make([]schemas.SummaryItem, 0, len(evidences))
	for _, ev := range evidences {
		ev = strings.TrimSpace(ev)
		if ev == "" {
			continue
		}
		items = append(items, schemas.SummaryItem{
			Requirement: rule.Description,
			Evidence:    ev,
		})
	}
	summary := rule.Description
	if summary == "" {
		summary = rule.ID
	}
	if len(items) > 0 {
		summary = fmt.Sprintf("%s（共 %d 处相关条款）", summary, len(items))
	}
	return schemas.RuleSummary{Summary: summary, Items: items}, nil
}

// AnalyzeFramework fills each category with retrieved passages matching its
// title and focus, and extracts dated lines as milestones.
func (h *HeuristicBackend) AnalyzeFramework(_ context.Context, text string, categories []schemas.FrameworkCategory) (schemas.FrameworkReport, error) {
	report := schemas.EmptyFrameworkReport()
	for _, cat := range categories {
		hints := []string{cat.Title}
		for _, f := range strings.FieldsFunc(cat.Focus, func(r rune) bool {
			return r == '、' || r == ',' || r == '，' || r == ';' || r == '；'
		}) {
			if f = strings.TrimSpace(f); f != "" {
				hints = append(hints, f)
			}
		}

		var segments []schemas.Segment
		if h.retriever != nil {
			segments = h.retriever.LocateCandidates(text, hints)
		}
		items := make([]schemas.FrameworkItem, 0, len(segments))
		for _, seg := range segments {
			items = append(items, schemas.FrameworkItem{
				Title:       cat.Title,
				Description: "检索到的相关条款，需人工复核",
				Evidence:    seg.Text,
				Severity:    schemas.SeverityMedium,
			})
		}
		summary := "未检索到明显相关条款"
		if len(items) > 0 {
			summary = fmt.Sprintf("检索到 %d 处相关条款", len(items))
		}
		report.Categories = append(report.Categories, schemas.FrameworkCategoryReport{
			ID:      cat.ID,
			Title:   cat.Title,
			Summary: summary,
			Items:   items,
		})
	}

	for _, line := range markedLines(text, timelineMarkers, 20) {
		if date := dateRE.FindString(line); date != "" {
			report.Timeline.Milestones = append(report.Timeline.Milestones, schemas.Milestone{
				Name:     truncateRunes(line, 60),
				Deadline: date,
			})
		}
	}
	report.Timeline.Remark = "基于关键词检索的初步结果，建议结合原文复核"
	return report, nil
}

// AnalyzeAdaptive scans the document line by line for obligation, cost,
// timeline and risk markers. Every report slice is non-nil.
func (h *HeuristicBackend) AnalyzeAdaptive(_ context.Context, text string) (schemas.AdaptiveReport, error) {
	report := schemas.EmptyAdaptiveReport()
	docType := DetectDocumentType(text)

	var mandatory []schemas.RequirementItem
	for _, line := range markedLines(text, mandatoryMarkers, 30) {
		severity := schemas.SeverityHigh
		if strings.Contains(line, "废标") || strings.Contains(line, "否决") || strings.Contains(line, "★") {
			severity = schemas.SeverityCritical
		}
		mandatory = append(mandatory, schemas.RequirementItem{
			Title:       truncateRunes(line, 40),
			Description: "包含强制性措辞的条款",
			Evidence:    line,
			Severity:    severity,
		})
	}
	if len(mandatory) > 0 {
		report.CriticalRequirements = append(report.CriticalRequirements, schemas.RequirementGroup{
			Category: "强制性要求",
			Items:    mandatory,
		})
	}

	for _, line := range markedLines(text, costMarkers, 15) {
		report.CostFactors = append(report.CostFactors, schemas.CostFactor{
			Item:        truncateRunes(line, 40),
			Description: "涉及费用的条款",
			Evidence:    line,
		})
	}

	for _, line := range markedLines(text, timelineMarkers, 15) {
		deadline := dateRE.FindString(line)
		if deadline == "" {
			continue
		}
		report.Timeline = append(report.Timeline, schemas.TimelineEvent{
			Event:    truncateRunes(line, 60),
			Deadline: deadline,
		})
	}

	for _, line := range markedLines(text, riskMarkers, 15) {
		report.Risks = append(report.Risks, schemas.Risk{
			Type:        "违约与处罚",
			Description: truncateRunes(line, 80),
		})
	}

	report.Summary = fmt.Sprintf(
		"文档类型：%s。基于关键词扫描共发现 %d 条强制性要求、%d 条费用相关条款、%d 个时间节点、%d 项风险条款。建议结合原文逐条复核。",
		docType, len(mandatory), len(report.CostFactors), len(report.Timeline), len(report.Risks))
	return report, nil
}

// markedLines returns up to limit distinct lines containing any marker.
func markedLines(text string, markers []string, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, m := range markers {
			if strings.Contains(line, m) {
				if _, dup := seen[line]; !dup {
					seen[line] = struct{}{}
					out = append(out, line)
				}
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}
