package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Engine.Kind", cfg.Engine.Kind, "node"},
		{"Engine.NodePath", cfg.Engine.NodePath, "node"},
		{"Engine.Script", cfg.Engine.Script, "scripts/iztro_bridge.mjs"},
		{"Timezone", cfg.Timezone, "Asia/Shanghai"},
		{"TagLanguage", cfg.TagLanguage, "en"},
		{"IncludeIndexMapping", cfg.IncludeIndexMapping, false},
		{"FailurePolicy", cfg.FailurePolicy, "abort"},
		{"Concurrency", cfg.Concurrency, 4},
		{"History.Enabled", cfg.History.Enabled, false},
		{"History.Path", cfg.History.Path, ".ziwei/history.db"},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "engine.node_path",
			envKey: "ZIWEI_ENGINE_NODE_PATH",
			envVal: "/usr/local/bin/node",
			field:  func(c Config) any { return c.Engine.NodePath },
			want:   "/usr/local/bin/node",
		},
		{
			name:   "timezone",
			envKey: "ZIWEI_TIMEZONE",
			envVal: "UTC",
			field:  func(c Config) any { return c.Timezone },
			want:   "UTC",
		},
		{
			name:   "tag_language",
			envKey: "ZIWEI_TAG_LANGUAGE",
			envVal: "zh",
			field:  func(c Config) any { return c.TagLanguage },
			want:   "zh",
		},
		{
			name:   "concurrency",
			envKey: "ZIWEI_CONCURRENCY",
			envVal: "9",
			field:  func(c Config) any { return c.Concurrency },
			want:   9,
		},
		{
			name:   "failure_policy",
			envKey: "ZIWEI_FAILURE_POLICY",
			envVal: "isolate",
			field:  func(c Config) any { return c.FailurePolicy },
			want:   "isolate",
		},
		{
			name:   "history.enabled",
			envKey: "ZIWEI_HISTORY_ENABLED",
			envVal: "true",
			field:  func(c Config) any { return c.History.Enabled },
			want:   true,
		},
		{
			name:   "verbose",
			envKey: "ZIWEI_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			BindEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{"unknown engine", "engine.kind", "python", "engine.kind"},
		{"fixture without dir", "engine.kind", "fixture", "fixture_dir"},
		{"unknown policy", "failure_policy", "retry", "failure_policy"},
		{"zero concurrency", "concurrency", 0, "concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FixtureEngine(t *testing.T) {
	resetViper()
	viper.Set("engine.kind", "fixture")
	viper.Set("engine.fixture_dir", "testdata/chart")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Engine.FixtureDir != "testdata/chart" {
		t.Errorf("FixtureDir = %q", cfg.Engine.FixtureDir)
	}
}
