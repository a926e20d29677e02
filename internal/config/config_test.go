package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.Empty(t, Default().Validate())
}

func TestSanitizedReplacesOutOfRangeValues(t *testing.T) {
	cfg := Default()
	cfg.SafetyCacheTicks = 0
	cfg.SurveyDepth = 99
	cfg.MigrationMargin = -5

	fixed, problems := cfg.Sanitized()
	require.Len(t, problems, 3)

	def := Default()
	assert.Equal(t, def.SafetyCacheTicks, fixed.SafetyCacheTicks)
	assert.Equal(t, def.SurveyDepth, fixed.SurveyDepth)
	assert.Equal(t, def.MigrationMargin, fixed.MigrationMargin)

	// In-range values survive untouched.
	assert.Equal(t, cfg.MaxAgentsPerNode, fixed.MaxAgentsPerNode)
}

func TestProblemString(t *testing.T) {
	cfg := Default()
	cfg.MaxAgentsPerNode = 0
	problems := cfg.Validate()
	require.Len(t, problems, 1)
	assert.Equal(t, "max_agents_per_node=0 outside [1, 50]", problems[0].String())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outrider.yaml")
	require.NoError(t, os.WriteFile(path, []byte("survey_depth: 3\nmax_agents_per_node: 5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.SurveyDepth)
	assert.Equal(t, 5, cfg.MaxAgentsPerNode)
	assert.Equal(t, Default().SafetyCacheTicks, cfg.SafetyCacheTicks)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("survey_depth: [oops\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
