package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath string `yaml:"db_path"`

	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	MaxTokens   int    `yaml:"max_tokens"`
	AnalyzeSecs int    `yaml:"analyze_timeout_seconds"`
	SynthSecs   int    `yaml:"synthesize_timeout_seconds"`

	SkillThreshold  int     `yaml:"skill_threshold"`
	IdeaSimilarity  float64 `yaml:"idea_similarity"`
	MergeSimilarity float64 `yaml:"merge_similarity"`
	KeywordOverlap  float64 `yaml:"keyword_overlap"`
	MinPrompts      int     `yaml:"min_prompts"`
	MaxEvents       int     `yaml:"max_events"`
	DisableDedup    bool    `yaml:"disable_dedup"`
}

// Learning holds effective runtime values for the learning pipeline.
// All thresholds are tunable via config.yaml; zero values fall back here.
type Learning struct {
	Model       string
	BaseURL     string
	MaxTokens   int
	AnalyzeSecs int
	SynthSecs   int

	SkillThreshold  int
	IdeaSimilarity  float64
	MergeSimilarity float64
	KeywordOverlap  float64
	MinPrompts      int
	MaxEvents       int
	DedupEnabled    bool
}

const (
	defaultModel       = "glm-4.7-flash"
	defaultBaseURL     = "https://open.bigmodel.cn/api/paas/v4"
	defaultMaxTokens   = 65536
	defaultAnalyzeSecs = 30
	defaultSynthSecs   = 180

	defaultSkillThreshold  = 5
	defaultIdeaSimilarity  = 0.65
	defaultMergeSimilarity = 0.6
	defaultKeywordOverlap  = 0.5
	defaultMinPrompts      = 5
	defaultMaxEvents       = 10
)

// EffectiveLearning returns validated learning settings with defaults.
// Invalid or missing config values fall back to safe defaults.
func EffectiveLearning() Learning {
	cfg := Learning{
		Model:           defaultModel,
		BaseURL:         defaultBaseURL,
		MaxTokens:       defaultMaxTokens,
		AnalyzeSecs:     defaultAnalyzeSecs,
		SynthSecs:       defaultSynthSecs,
		SkillThreshold:  defaultSkillThreshold,
		IdeaSimilarity:  defaultIdeaSimilarity,
		MergeSimilarity: defaultMergeSimilarity,
		KeywordOverlap:  defaultKeywordOverlap,
		MinPrompts:      defaultMinPrompts,
		MaxEvents:       defaultMaxEvents,
		DedupEnabled:    true,
	}

	s, err := LoadSettings()
	if err != nil {
		return cfg
	}

	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	if s.MaxTokens > 0 {
		cfg.MaxTokens = s.MaxTokens
	}
	if s.AnalyzeSecs > 0 {
		cfg.AnalyzeSecs = s.AnalyzeSecs
	}
	if s.SynthSecs > 0 {
		cfg.SynthSecs = s.SynthSecs
	}
	if s.SkillThreshold > 0 {
		cfg.SkillThreshold = s.SkillThreshold
	}
	if s.IdeaSimilarity > 0 && s.IdeaSimilarity <= 1 {
		cfg.IdeaSimilarity = s.IdeaSimilarity
	}
	if s.MergeSimilarity > 0 && s.MergeSimilarity <= 1 {
		cfg.MergeSimilarity = s.MergeSimilarity
	}
	if s.KeywordOverlap > 0 && s.KeywordOverlap <= 1 {
		cfg.KeywordOverlap = s.KeywordOverlap
	}
	if s.MinPrompts > 0 {
		cfg.MinPrompts = s.MinPrompts
	}
	if s.MaxEvents > 0 {
		cfg.MaxEvents = s.MaxEvents
	}
	if s.DisableDedup {
		cfg.DedupEnabled = false
	}

	// Clamp runaway values so a typo in config.yaml cannot stall a worker.
	if cfg.AnalyzeSecs > 600 {
		cfg.AnalyzeSecs = 600
	}
	if cfg.SynthSecs > 600 {
		cfg.SynthSecs = 600
	}
	if cfg.MaxEvents > 200 {
		cfg.MaxEvents = 200
	}
	return cfg
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// dbPathOverrideMu and dbPathOverride implement a mutex-protected process-wide override for CLI --db-path.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/skillforge/config.yaml
// 2) /etc/skillforge/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		if s, err := loadSettingsFile(filepath.Join(dir, "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile(filepath.Join(string(os.PathSeparator), "etc", "skillforge", "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile("config.yaml"); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
