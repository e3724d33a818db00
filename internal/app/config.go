package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/skillforge/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "skillforge"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# skillforge configuration
# Run: skillforge --help

# Chat-completion endpoint. Any OpenAI-compatible API works.
# model: glm-4.7-flash
# base_url: https://open.bigmodel.cn/api/paas/v4

# Learning thresholds.
# skill_threshold: 5
# min_prompts: 5
# max_events: 10

# Optional: override the run-history database location.
# Can also be set via SKILLFORGE_DB_PATH or --db-path.
# db_path: ~/.config/skillforge/skillforge.db
`
