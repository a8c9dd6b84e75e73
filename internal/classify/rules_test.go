package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRuleSetEmptyPathUsesDefaults(t *testing.T) {
	rs, degraded, err := LoadRuleSet("", nil)

	require.NoError(t, err)
	assert.False(t, degraded)
	require.Len(t, rs.Categories, 1)
	assert.Equal(t, "invoice", rs.Categories[0].Name)
}

func TestLoadRuleSetValidArtifact(t *testing.T) {
	path := writeArtifact(t, `{
		"version": 1,
		"categories": [
			{"name": "invoice", "required_patterns": ["\\binvoice\\b"], "supporting_patterns": ["\\$"]},
			{"name": "report", "required_patterns": ["\\breport\\b"]}
		]
	}`)

	rs, degraded, err := LoadRuleSet(path, nil)

	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Len(t, rs.Categories, 2)
	assert.Equal(t, 1, rs.Version)
}

func TestLoadRuleSetMissingFileFallsBack(t *testing.T) {
	rs, degraded, err := LoadRuleSet(filepath.Join(t.TempDir(), "nope.json"), nil)

	require.NoError(t, err)
	assert.True(t, degraded)
	require.Len(t, rs.Categories, 1)
	assert.Equal(t, "invoice", rs.Categories[0].Name)
}

func TestLoadRuleSetSchemaViolationFallsBack(t *testing.T) {
	// categories present but required_patterns empty
	path := writeArtifact(t, `{"version": 1, "categories": [{"name": "x", "required_patterns": []}]}`)

	_, degraded, err := LoadRuleSet(path, nil)

	require.NoError(t, err)
	assert.True(t, degraded)
}

func TestLoadRuleSetBadJSONFallsBack(t *testing.T) {
	path := writeArtifact(t, `{not json`)

	_, degraded, err := LoadRuleSet(path, nil)

	require.NoError(t, err)
	assert.True(t, degraded)
}

func TestLoadRuleSetBadPatternFallsBack(t *testing.T) {
	path := writeArtifact(t, `{"version": 1, "categories": [{"name": "x", "required_patterns": ["[unclosed"]}]}`)

	_, degraded, err := LoadRuleSet(path, nil)

	require.NoError(t, err)
	assert.True(t, degraded)
}

func TestMustRuleSetRejectsDegraded(t *testing.T) {
	path := writeArtifact(t, `{not json`)

	_, err := MustRuleSet(path, nil)

	assert.Error(t, err)
}

func TestCompileRequiresRequiredPattern(t *testing.T) {
	rs := &RuleSet{Categories: []CategoryRule{{Name: "x"}}}
	assert.Error(t, rs.compile())
}
