package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeChecklist(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checklist.yaml")
	content := `rules:
  - id: r-license
    category: 资质
    description: 安全生产许可证要求
    match_type: keyword
    patterns: ["安全生产许可证"]
    severity: high
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAnalyzeCommand_RulesMode(t *testing.T) {
	checklist := writeChecklist(t)

	out, err := runCommand(t,
		"analyze", "--mode", "rules", "--rules", checklist,
		"--text", "投标人须持有有效的安全生产许可证。")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "completed"`)
	assert.Contains(t, out, `"r-license"`)
	assert.Contains(t, out, "安全生产许可证")
}

func TestAnalyzeCommand_AdaptiveMode(t *testing.T) {
	out, err := runCommand(t,
		"analyze", "--mode", "adaptive", "--text", "投标人必须具备相应资质。")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "completed"`)
	assert.Contains(t, out, "critical_requirements")
}

func TestAnalyzeCommand_RejectsMissingInput(t *testing.T) {
	_, err := runCommand(t, "analyze", "--mode", "adaptive", "--text", "")
	require.Error(t, err)
}

func TestAnalyzeCommand_UnknownMode(t *testing.T) {
	_, err := runCommand(t, "analyze", "--mode", "wild", "--text", "内容")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestRulesCommand(t *testing.T) {
	checklist := writeChecklist(t)

	out, err := runCommand(t, "rules", "--rules", checklist)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 1 rules")
	assert.Contains(t, out, `"r-license"`)
}

func TestJobsCommand_EmptyStore(t *testing.T) {
	out, err := runCommand(t, "jobs")
	require.NoError(t, err)
	assert.Contains(t, out, "[]")
}
