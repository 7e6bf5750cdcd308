// Package config handles server configuration from the environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/visual-hash-mcp/internal/escalation"
	"github.com/ironsheep/visual-hash-mcp/internal/hashing"
)

const envPrefix = "VISUALHASH_"

type Config struct {
	LogLevel    string
	OCRLanguage string

	// Levels and Semantic are nil unless at least one of their variables
	// is set. Unset fields of a set level come from escalation.DefaultConfig.
	Levels   [3]*escalation.TierConfig
	Semantic *escalation.SemanticConfig
}

func Load() *Config {
	defaults := escalation.DefaultConfig()
	cfg := &Config{
		LogLevel:    strings.ToLower(getEnv(envPrefix+"LOG_LEVEL", "info")),
		OCRLanguage: getEnv(envPrefix+"OCR_LANGUAGE", "eng"),
	}
	for i, def := range []*escalation.TierConfig{defaults.Level1, defaults.Level2, defaults.Level3} {
		cfg.Levels[i] = loadTier(fmt.Sprintf("%sLEVEL%d_", envPrefix, i+1), def)
	}
	cfg.Semantic = loadSemantic(envPrefix+"SEMANTIC_", defaults.Level4)
	return cfg
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// Overrides returns the instance layer for escalation.NewController.
func (c *Config) Overrides() escalation.MultiLevelConfig {
	return escalation.MultiLevelConfig{
		Level1: c.Levels[0],
		Level2: c.Levels[1],
		Level3: c.Levels[2],
		Level4: c.Semantic,
	}
}

func loadTier(prefix string, def *escalation.TierConfig) *escalation.TierConfig {
	if !anySet(prefix+"ALGORITHM", prefix+"SIZE", prefix+"THRESHOLD", prefix+"DISABLED") {
		return nil
	}
	t := *def
	if v := os.Getenv(prefix + "ALGORITHM"); v != "" {
		// Unknown names are kept so the controller reports them.
		if id, err := hashing.ParseAlgorithm(v); err == nil {
			t.Algorithm = id
		} else {
			t.Algorithm = hashing.AlgorithmID(v)
		}
	}
	t.Size = getEnvInt(prefix+"SIZE", t.Size)
	t.Threshold = getEnvFloat(prefix+"THRESHOLD", t.Threshold)
	t.Disabled = getEnvBool(prefix+"DISABLED", t.Disabled)
	return &t
}

func loadSemantic(prefix string, def *escalation.SemanticConfig) *escalation.SemanticConfig {
	if !anySet(prefix+"ENABLED", prefix+"THRESHOLD", prefix+"ENDPOINT") {
		return nil
	}
	s := *def
	s.Enabled = getEnvBool(prefix+"ENABLED", s.Enabled)
	s.Threshold = getEnvFloat(prefix+"THRESHOLD", s.Threshold)
	s.Endpoint = getEnv(prefix+"ENDPOINT", s.Endpoint)
	return &s
}

func anySet(keys ...string) bool {
	for _, k := range keys {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}
