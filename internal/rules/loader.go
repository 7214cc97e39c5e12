package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// checklistFile is the on-disk rule declaration schema: an ordered list of
// rule objects under a top-level "rules" key.
type checklistFile struct {
	Rules []ruleDecl `json:"rules" yaml:"rules"`
}

type ruleDecl struct {
	ID          string   `json:"id" yaml:"id"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	MatchType   string   `json:"match_type" yaml:"match_type"`
	Patterns    []string `json:"patterns" yaml:"patterns"`
	Severity    string   `json:"severity" yaml:"severity"`
	Advice      string   `json:"advice" yaml:"advice"`
}

// LoadRules reads a YAML or JSON checklist file. Missing match_type defaults
// to keyword, missing severity to medium. Rule order is preserved.
func LoadRules(path string) ([]schemas.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var file checklistFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &file)
	} else {
		err = yaml.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	rules := make([]schemas.Rule, 0, len(file.Rules))
	seen := make(map[string]struct{}, len(file.Rules))
	for i, decl := range file.Rules {
		if decl.ID == "" {
			return nil, fmt.Errorf("rule #%d in %s has no id", i+1, path)
		}
		if decl.Category == "" {
			return nil, fmt.Errorf("rule %q in %s has no category", decl.ID, path)
		}
		if _, dup := seen[decl.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %q in %s", decl.ID, path)
		}
		seen[decl.ID] = struct{}{}

		matchType := schemas.MatchType(decl.MatchType)
		switch matchType {
		case "":
			matchType = schemas.MatchKeyword
		case schemas.MatchKeyword, schemas.MatchRegex, schemas.MatchSemantic:
		default:
			return nil, fmt.Errorf("rule %q has unknown match_type %q", decl.ID, decl.MatchType)
		}

		rules = append(rules, schemas.Rule{
			ID:          decl.ID,
			Category:    decl.Category,
			Description: decl.Description,
			MatchType:   matchType,
			Patterns:    decl.Patterns,
			Severity:    schemas.ParseSeverity(decl.Severity),
			Advice:      decl.Advice,
		})
	}
	return rules, nil
}
