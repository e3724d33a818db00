package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveLearningDefaults(t *testing.T) {
	cfg := EffectiveLearning()

	assert.Equal(t, "glm-4.7-flash", cfg.Model)
	assert.Equal(t, "https://open.bigmodel.cn/api/paas/v4", cfg.BaseURL)
	assert.Equal(t, 65536, cfg.MaxTokens)
	assert.Equal(t, 30, cfg.AnalyzeSecs)
	assert.Equal(t, 180, cfg.SynthSecs)
	assert.Equal(t, 5, cfg.SkillThreshold)
	assert.InDelta(t, 0.65, cfg.IdeaSimilarity, 1e-9)
	assert.InDelta(t, 0.6, cfg.MergeSimilarity, 1e-9)
	assert.InDelta(t, 0.5, cfg.KeywordOverlap, 1e-9)
	assert.Equal(t, 5, cfg.MinPrompts)
	assert.Equal(t, 10, cfg.MaxEvents)
	assert.True(t, cfg.DedupEnabled)
}

func TestProjectPaths(t *testing.T) {
	project := filepath.Join("work", "proj")

	assert.Equal(t,
		filepath.Join(project, ".claude", "conversations", "conversation-abc.txt"),
		ConversationPath(project, "abc"))
	assert.Equal(t,
		filepath.Join(project, ".claude", "ideas"),
		IdeasDir(project))
	assert.Equal(t,
		filepath.Join(project, ".claude", "skills", "learn"),
		SkillsDir(project))
	assert.Equal(t,
		filepath.Join(project, ".claude", "logs", "continuous-learning", "learning-abc.log"),
		LearningLogPath(project, "abc"))
}

func TestDBPathOverride(t *testing.T) {
	SetDBPathOverride("")
	t.Setenv("SKILLFORGE_DB_PATH", "/tmp/env.db")

	path, err := GetDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", path)

	SetDBPathOverride("/tmp/override.db")
	t.Cleanup(func() { SetDBPathOverride("") })

	path, err = GetDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", path)
}
