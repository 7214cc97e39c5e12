package llmclient

import (
	"github.com/change8/BiddingAssistant/api/schemas"
	"github.com/change8/BiddingAssistant/internal/llmutil"
)

// Reply normalization is deliberately lenient: models rename keys, wrap lists
// in envelope objects and quote numbers. Each normalizer resolves fields
// through ordered alias lists and returns the documented empty default when
// the reply cannot be interpreted at all. Content-level failures never become
// errors.

// normalizeCandidates accepts a bare JSON list or an envelope object keyed by
// candidates, items or results. The prompt asks for character indices, so
// start and length arrive as rune counts and are converted to byte offsets
// into text before anything downstream slices with them.
func normalizeCandidates(raw, text string) []schemas.Candidate {
	var list []any
	if parsed, err := llmutil.ParseJSONResponse[[]any](raw); err == nil {
		list = *parsed
	} else if envelope, err := llmutil.ParseJSONResponse[map[string]any](raw); err == nil {
		list = llmutil.FirstSlice(*envelope, "candidates", "items", "results")
	}

	// runeStarts[i] is the byte offset of the i-th rune; the sentinel at the
	// end maps the one-past-last index to len(text).
	runeStarts := make([]int, 0, len(text)+1)
	for i := range text {
		runeStarts = append(runeStarts, i)
	}
	runeStarts = append(runeStarts, len(text))
	runeCount := len(runeStarts) - 1

	candidates := make([]schemas.Candidate, 0, len(list))
	for _, entry := range list {
		m := llmutil.AsMap(entry)
		if m == nil {
			continue
		}
		start, _ := llmutil.FirstInt(m, "start", "offset")
		length, _ := llmutil.FirstInt(m, "length", "len", "size")
		evidence := llmutil.FirstString(m, "evidence", "text", "quote", "content")
		if start < 0 {
			start = 0
		}
		if start > runeCount {
			start = runeCount
		}
		if length < 0 {
			length = 0
		}
		if start+length > runeCount {
			length = runeCount - start
		}
		if length == 0 && evidence == "" {
			continue
		}
		score, ok := llmutil.FirstNumber(m, "score", "confidence")
		if !ok {
			score = 0.5
		}
		byteStart := runeStarts[start]
		byteEnd := runeStarts[start+length]
		candidates = append(candidates, schemas.Candidate{
			Start:    byteStart,
			Length:   byteEnd - byteStart,
			Evidence: evidence,
			Score:    score,
		})
	}
	return candidates
}

func normalizeRuleSummary(raw string, rule schemas.Rule) schemas.RuleSummary {
	envelope, err := llmutil.ParseJSONResponse[map[string]any](raw)
	if err != nil {
		return schemas.RuleSummary{Items: []schemas.SummaryItem{}}
	}
	m := *envelope

	summary := schemas.RuleSummary{
		Summary: llmutil.FirstString(m, "summary", "result", "conclusion"),
		Items:   []schemas.SummaryItem{},
	}
	for _, entry := range llmutil.FirstSlice(m, "items", "requirements", "findings") {
		im := llmutil.AsMap(entry)
		if im == nil {
			continue
		}
		req := llmutil.FirstString(im, "requirement", "title", "point")
		ev := llmutil.FirstString(im, "evidence", "text", "quote")
		if req == "" && ev == "" {
			continue
		}
		if req == "" {
			req = rule.Description
		}
		summary.Items = append(summary.Items, schemas.SummaryItem{Requirement: req, Evidence: ev})
	}
	return summary
}

func normalizeFrameworkReport(raw string) schemas.FrameworkReport {
	envelope, err := llmutil.ParseJSONResponse[map[string]any](raw)
	if err != nil {
		return schemas.EmptyFrameworkReport()
	}
	m := *envelope

	report := schemas.EmptyFrameworkReport()
	for _, entry := range llmutil.FirstSlice(m, "categories", "sections") {
		cm := llmutil.AsMap(entry)
		if cm == nil {
			continue
		}
		cat := schemas.FrameworkCategoryReport{
			ID:      llmutil.FirstString(cm, "id", "key"),
			Title:   llmutil.FirstString(cm, "title", "name", "category"),
			Summary: llmutil.FirstString(cm, "summary", "conclusion"),
			Items:   []schemas.FrameworkItem{},
		}
		for _, ie := range llmutil.FirstSlice(cm, "items", "findings") {
			im := llmutil.AsMap(ie)
			if im == nil {
				continue
			}
			cat.Items = append(cat.Items, schemas.FrameworkItem{
				Title:          llmutil.FirstString(im, "title", "name"),
				Description:    llmutil.FirstString(im, "description", "detail", "content"),
				Evidence:       llmutil.FirstString(im, "evidence", "text", "quote"),
				Recommendation: llmutil.FirstString(im, "recommendation", "advice", "suggestion"),
				Severity:       schemas.ParseSeverity(llmutil.FirstString(im, "severity", "level")),
			})
		}
		report.Categories = append(report.Categories, cat)
	}

	if tm := llmutil.AsMap(m["timeline"]); tm != nil {
		for _, me := range llmutil.FirstSlice(tm, "milestones", "events", "items") {
			mm := llmutil.AsMap(me)
			if mm == nil {
				continue
			}
			name := llmutil.FirstString(mm, "name", "event", "title")
			if name == "" {
				continue
			}
			report.Timeline.Milestones = append(report.Timeline.Milestones, schemas.Milestone{
				Name:     name,
				Deadline: llmutil.FirstString(mm, "deadline", "date", "time"),
				Note:     llmutil.FirstString(mm, "note", "remark"),
			})
		}
		report.Timeline.Remark = llmutil.FirstString(tm, "remark", "note", "summary")
	}
	return report
}

func normalizeAdaptiveReport(raw string) schemas.AdaptiveReport {
	envelope, err := llmutil.ParseJSONResponse[map[string]any](raw)
	if err != nil {
		return schemas.EmptyAdaptiveReport()
	}
	m := *envelope

	report := schemas.EmptyAdaptiveReport()
	report.Summary = llmutil.FirstString(m, "summary", "overview")

	for _, ge := range llmutil.FirstSlice(m, "critical_requirements", "requirements") {
		gm := llmutil.AsMap(ge)
		if gm == nil {
			continue
		}
		group := schemas.RequirementGroup{
			Category: llmutil.FirstString(gm, "category", "name", "title"),
			Items:    []schemas.RequirementItem{},
		}
		for _, ie := range llmutil.FirstSlice(gm, "items", "requirements") {
			im := llmutil.AsMap(ie)
			if im == nil {
				continue
			}
			group.Items = append(group.Items, schemas.RequirementItem{
				Title:          llmutil.FirstString(im, "title", "name"),
				Description:    llmutil.FirstString(im, "description", "detail", "content"),
				Evidence:       llmutil.FirstString(im, "evidence", "text", "quote"),
				Impact:         llmutil.FirstString(im, "impact"),
				Severity:       schemas.ParseSeverity(llmutil.FirstString(im, "severity", "level")),
				ActionRequired: llmutil.FirstString(im, "action_required", "action"),
			})
		}
		if group.Category != "" || len(group.Items) > 0 {
			report.CriticalRequirements = append(report.CriticalRequirements, group)
		}
	}

	for _, ce := range llmutil.FirstSlice(m, "cost_factors", "costs") {
		cm := llmutil.AsMap(ce)
		if cm == nil {
			continue
		}
		report.CostFactors = append(report.CostFactors, schemas.CostFactor{
			Item:            llmutil.FirstString(cm, "item", "title", "name"),
			Description:     llmutil.FirstString(cm, "description", "detail"),
			EstimatedImpact: llmutil.FirstString(cm, "estimated_impact", "impact"),
			Evidence:        llmutil.FirstString(cm, "evidence", "text", "quote"),
		})
	}

	for _, te := range llmutil.FirstSlice(m, "timeline", "milestones") {
		tm := llmutil.AsMap(te)
		if tm == nil {
			continue
		}
		event := llmutil.FirstString(tm, "event", "name", "title")
		if event == "" {
			continue
		}
		report.Timeline = append(report.Timeline, schemas.TimelineEvent{
			Event:      event,
			Deadline:   llmutil.FirstString(tm, "deadline", "date", "time"),
			Importance: llmutil.FirstString(tm, "importance", "priority"),
		})
	}

	for _, re := range llmutil.FirstSlice(m, "risks") {
		rm := llmutil.AsMap(re)
		if rm == nil {
			continue
		}
		report.Risks = append(report.Risks, schemas.Risk{
			Type:        llmutil.FirstString(rm, "type", "category"),
			Description: llmutil.FirstString(rm, "description", "detail", "content"),
			Likelihood:  llmutil.FirstString(rm, "likelihood", "probability"),
			Impact:      llmutil.FirstString(rm, "impact", "severity"),
			Mitigation:  llmutil.FirstString(rm, "mitigation", "suggestion"),
		})
	}

	for _, ue := range llmutil.FirstSlice(m, "unusual_findings", "findings") {
		um := llmutil.AsMap(ue)
		if um == nil {
			continue
		}
		report.UnusualFindings = append(report.UnusualFindings, schemas.UnusualFinding{
			Title:       llmutil.FirstString(um, "title", "name"),
			Description: llmutil.FirstString(um, "description", "detail", "content"),
			Concern:     llmutil.FirstString(um, "concern", "issue"),
			Suggestion:  llmutil.FirstString(um, "suggestion", "advice"),
		})
	}

	for _, ce := range llmutil.FirstSlice(m, "clarification_needed", "clarifications") {
		cm := llmutil.AsMap(ce)
		if cm == nil {
			continue
		}
		report.ClarificationNeeded = append(report.ClarificationNeeded, schemas.Clarification{
			Issue:             llmutil.FirstString(cm, "issue", "title", "question"),
			Context:           llmutil.FirstString(cm, "context", "background"),
			SuggestedQuestion: llmutil.FirstString(cm, "suggested_question", "question"),
		})
	}
	return report
}
