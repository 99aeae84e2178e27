package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix maps ZIWEI_* environment variables onto config keys.
const EnvPrefix = "ZIWEI"

// Engine kinds.
const (
	EngineNode    = "node"
	EngineFixture = "fixture"
)

// Failure policies for future-date snapshots.
const (
	PolicyAbort   = "abort"
	PolicyIsolate = "isolate"
)

// EngineConfig selects and locates the chart engine.
type EngineConfig struct {
	Kind       string `mapstructure:"kind"`
	NodePath   string `mapstructure:"node_path"`
	Script     string `mapstructure:"script"`
	FixtureDir string `mapstructure:"fixture_dir"`
}

// HistoryConfig controls the saved-report store.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config holds all runtime configuration for a ziwei invocation.
// Values are populated from .ziwei.yaml, ZIWEI_* env vars, and CLI flags.
type Config struct {
	Engine              EngineConfig  `mapstructure:"engine"`
	Timezone            string        `mapstructure:"timezone"`
	TagLanguage         string        `mapstructure:"tag_language"`
	IncludeIndexMapping bool          `mapstructure:"include_index_mapping"`
	FailurePolicy       string        `mapstructure:"failure_policy"`
	Concurrency         int           `mapstructure:"concurrency"`
	History             HistoryConfig `mapstructure:"history"`
	TelemetryPath       string        `mapstructure:"telemetry_path"`
	Verbose             bool          `mapstructure:"verbose"`
}

// BindEnv wires ZIWEI_* variables into viper. Nested keys use underscores,
// so engine.node_path reads ZIWEI_ENGINE_NODE_PATH.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("engine.kind", EngineNode)
	viper.SetDefault("engine.node_path", "node")
	viper.SetDefault("engine.script", "scripts/iztro_bridge.mjs")
	viper.SetDefault("engine.fixture_dir", "")
	viper.SetDefault("timezone", "Asia/Shanghai")
	viper.SetDefault("tag_language", "en")
	viper.SetDefault("include_index_mapping", false)
	viper.SetDefault("failure_policy", PolicyAbort)
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.path", ".ziwei/history.db")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	switch c.Engine.Kind {
	case EngineNode:
	case EngineFixture:
		if c.Engine.FixtureDir == "" {
			return fmt.Errorf("config: engine.fixture_dir is required for the fixture engine")
		}
	default:
		return fmt.Errorf("config: unknown engine.kind %q (want %s or %s)", c.Engine.Kind, EngineNode, EngineFixture)
	}
	switch c.FailurePolicy {
	case PolicyAbort, PolicyIsolate:
	default:
		return fmt.Errorf("config: unknown failure_policy %q (want %s or %s)", c.FailurePolicy, PolicyAbort, PolicyIsolate)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("config: concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
