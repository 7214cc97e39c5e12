package llmclient

import (
	"strings"

	json "github.com/json-iterator/go"

	"github.com/change8/BiddingAssistant/api/schemas"
	"github.com/change8/BiddingAssistant/internal/retrieval"
)

const (
	// systemPromptZH is shared by the per-rule semantic tasks.
	systemPromptZH = "你是投标文件分析助手，输出 JSON"

	// adaptiveSystemPrompt frames the open-ended whole-document analysis.
	adaptiveSystemPrompt = "你是一位经验丰富的招标文件分析专家。\n" +
		"你的任务是全面识别招标文件中所有可能影响投标成功的关键信息。\n" +
		"请保持开放和批判性思维，不要被任何预设框架限制，重要的是发现文件中的所有关键点。"

	// maxPromptChars caps how much document text is embedded in a prompt.
	maxPromptChars = 40000
)

// documentKeywords drives crude document-type detection used to pick the
// worked examples embedded in the adaptive prompt.
var documentKeywords = map[string][]string{
	"IT系统": {"软件", "系统", "开发", "运维", "信息化", "数据库", "平台", "接口"},
	"工程建设": {"施工", "建设", "工程", "土建", "装修", "改造", "安装", "土石方"},
	"服务采购": {"服务", "运营", "咨询", "物业", "保洁", "保安", "外包"},
}

var documentExamples = map[string]string{
	"IT系统": `### 示例：IT系统招标常见的隐性要求
- 看似简单的"7×24小时服务"可能意味着需要建立完整的运维团队
- "与现有系统无缝对接"可能隐含大量的接口开发工作
- "数据迁移"看似一句话，但可能涉及海量数据清洗
- 特别注意信创要求、等保要求等合规性要求`,
	"工程建设": `### 示例：工程类招标的特殊关注点
- 施工资质的细分等级
- 安全生产许可证的有效性
- 项目经理的在建工程限制
- 材料品牌的指定可能存在垄断`,
	"服务采购": `### 示例：服务类采购的易忽视点
- 服务人员的社保要求
- 服务场地的提供方
- 知识产权归属
- 服务成果的验收标准`,
}

// DetectDocumentType classifies the tender by keyword presence, returning
// "通用" when nothing matches.
func DetectDocumentType(text string) string {
	lowered := strings.ToLower(text)
	// Stable iteration so detection is deterministic across runs.
	for _, docType := range []string{"IT系统", "工程建设", "服务采购"} {
		for _, kw := range documentKeywords[docType] {
			if strings.Contains(lowered, strings.ToLower(kw)) {
				return docType
			}
		}
	}
	return "通用"
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// semanticTask is the structured task payload sent for semantic_locate.
type semanticTask struct {
	Task        string         `json:"task"`
	Rule        map[string]any `json:"rule"`
	Hints       []string       `json:"hints"`
	Segments    []string       `json:"segments"`
	Instruction string         `json:"instruction"`
}

// buildSemanticPrompt serializes the semantic_locate task. Candidate segments
// keep the prompt small; without them the first few document chunks are used.
func buildSemanticPrompt(text string, hints []string, rule schemas.Rule, segments []schemas.Segment) (string, string) {
	previews := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text != "" {
			previews = append(previews, truncateRunes(seg.Text, 400))
		}
	}
	if len(previews) == 0 {
		for i, seg := range retrieval.SplitSegments(text, 400) {
			if i == 5 {
				break
			}
			previews = append(previews, seg.Text)
		}
	}

	task := semanticTask{
		Task: "semantic_locate",
		Rule: map[string]any{
			"id":          rule.ID,
			"description": rule.Description,
			"category":    rule.Category,
		},
		Hints:       hints,
		Segments:    previews,
		Instruction: "找出与 hints 强相关的段落，返回 JSON 列表，每项包含 start, length, evidence。start/length 基于整份文本的字符索引。若无匹配返回空数组。",
	}
	payload, _ := json.MarshalToString(task)
	return systemPromptZH, payload
}

type summaryTask struct {
	Task        string   `json:"task"`
	RuleID      string   `json:"rule_id"`
	Description string   `json:"description"`
	Evidences   []string `json:"evidences"`
	Instruction string   `json:"instruction"`
}

func buildSummaryPrompt(rule schemas.Rule, evidences []string) (string, string) {
	task := summaryTask{
		Task:        "summarize_rule",
		RuleID:      rule.ID,
		Description: rule.Description,
		Evidences:   evidences,
		Instruction: "归纳这些证据对应的要求，返回 JSON 对象：{\"summary\": \"...\", \"items\": [{\"requirement\": \"...\", \"evidence\": \"...\"}]}。只输出 JSON。",
	}
	payload, _ := json.MarshalToString(task)
	return systemPromptZH, payload
}

// buildFrameworkPrompt asks for a per-category structured review plus a
// milestone timeline.
func buildFrameworkPrompt(text string, categories []schemas.FrameworkCategory) (string, string) {
	var b strings.Builder
	b.WriteString("## 任务\n请按以下框架逐类分析招标文件，每类给出结论与条款依据。\n\n## 分析框架\n")
	for _, cat := range categories {
		b.WriteString("- ")
		b.WriteString(cat.ID)
		b.WriteString("：")
		b.WriteString(cat.Title)
		if cat.Focus != "" {
			b.WriteString("（关注：")
			b.WriteString(cat.Focus)
			b.WriteString("）")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n## 待分析的招标文件\n")
	b.WriteString(truncateRunes(text, maxPromptChars))
	b.WriteString(`

## 输出要求
返回 JSON，确保能被严格解析：
{
  "categories": [{"id": "...", "title": "...", "summary": "...",
    "items": [{"title": "...", "description": "...", "evidence": "...", "recommendation": "...", "severity": "critical/high/medium/low"}]}],
  "timeline": {"milestones": [{"name": "...", "deadline": "...", "note": "..."}], "remark": "..."}
}
只使用 JSON 字面量，不要输出多余文字或 markdown。`)
	return adaptiveSystemPrompt, b.String()
}

// buildAdaptivePrompt is the open-ended analysis prompt: free exploration
// first, then classification, with document-type specific examples.
func buildAdaptivePrompt(text string) (string, string) {
	var b strings.Builder
	b.WriteString(`## 核心任务
请全面分析这份招标文件，识别所有可能影响投标的重要信息。

## 分析原则
1. 全面性优先：宁可多发现，不可遗漏
2. 原文依据：每个发现必须有原文支撑
3. 实用导向：关注对投标实际操作的影响

## 分析方法
先通读全文，标记所有强制性要求（"必须"、"应当"、"不得"等）、可能导致废标的条件、
涉及成本的内容、时间限制、特殊或异常的要求、含糊需要澄清的地方。
然后将发现的内容按性质分组；不适合现有分类的放入 unusual_findings。
`)
	if example, ok := documentExamples[DetectDocumentType(text)]; ok {
		b.WriteString("\n")
		b.WriteString(example)
		b.WriteString("\n")
	}
	b.WriteString("\n## 待分析的招标文件\n")
	b.WriteString(truncateRunes(text, maxPromptChars))
	b.WriteString(`

## 输出要求
请返回 JSON，确保能被严格解析：
{
  "summary": "整体情况概述，包括项目特点和主要挑战",
  "critical_requirements": [{"category": "分类名称", "items": [{"title": "...", "description": "...", "evidence": "原文依据", "impact": "...", "severity": "critical/high/medium/low", "action_required": "..."}]}],
  "cost_factors": [{"item": "...", "description": "...", "estimated_impact": "...", "evidence": "..."}],
  "timeline": [{"event": "...", "deadline": "...", "importance": "..."}],
  "risks": [{"type": "...", "description": "...", "likelihood": "high/medium/low", "impact": "critical/high/medium/low", "mitigation": "..."}],
  "unusual_findings": [{"title": "...", "description": "...", "concern": "...", "suggestion": "..."}],
  "clarification_needed": [{"issue": "...", "context": "...", "suggested_question": "..."}]
}
只使用 JSON 字面量，不要输出多余文字或 markdown。`)
	return adaptiveSystemPrompt, b.String()
}
