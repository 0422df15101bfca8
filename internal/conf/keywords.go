package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
)

// KeywordsConfig is the trigger phrase set loaded from YAML
type KeywordsConfig struct {
	TriggerPhrases []string `yaml:"trigger_phrases"`
	ValidSeconds   int      `yaml:"valid_seconds"`
}

// DefaultKeywordsConfig returns the built-in trigger phrases
func DefaultKeywordsConfig() *KeywordsConfig {
	phrases := make([]string, len(domain.DefaultTriggerPhrases))
	copy(phrases, domain.DefaultTriggerPhrases)
	return &KeywordsConfig{
		TriggerPhrases: phrases,
		ValidSeconds:   int(domain.DefaultKeywordValidDuration.Seconds()),
	}
}

// LoadKeywordsConfig loads the trigger phrase set from a YAML file.
// An explicit path must exist; without one the usual locations are tried and
// defaults are returned if none is found.
func LoadKeywordsConfig(configPath string) (*KeywordsConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/keywords.yaml",
			"/etc/line-card-bot/keywords.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "keywords.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data = b
			loadedPath = p
			break
		}
		if configPath != "" {
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	}

	if data == nil {
		return DefaultKeywordsConfig(), nil
	}

	fmt.Printf("[CONFIG] Loading keywords from: %s\n", loadedPath)

	var config KeywordsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse keywords.yaml: %w", err)
	}

	config.fillDefaults()
	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *KeywordsConfig) fillDefaults() {
	defaults := DefaultKeywordsConfig()

	var kept []string
	for _, p := range c.TriggerPhrases {
		if p != "" {
			kept = append(kept, p)
		}
	}
	c.TriggerPhrases = kept
	if len(c.TriggerPhrases) == 0 {
		c.TriggerPhrases = defaults.TriggerPhrases
	}
	if c.ValidSeconds <= 0 {
		c.ValidSeconds = defaults.ValidSeconds
	}
}
