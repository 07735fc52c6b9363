package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tabprofile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, ',', cfg.Loader.DelimiterRune())
	assert.True(t, cfg.Loader.TrimSpace)
	assert.Equal(t, 1, cfg.Stats.Workers)
	assert.False(t, cfg.Telemetry.Tracing)
}

func TestLoadPrecedence(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "file overrides defaults",
			file: "logging:\n  level: debug\nloader:\n  delimiter: \";\"\n  sheet: Data\nstats:\n  workers: 4\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, ';', cfg.Loader.DelimiterRune())
				assert.Equal(t, "Data", cfg.Loader.Sheet)
				assert.Equal(t, 4, cfg.Stats.Workers)
				assert.True(t, cfg.Loader.TrimSpace, "unset keys keep defaults")
			},
		},
		{
			name: "env overrides file",
			file: "stats:\n  workers: 4\n",
			env: map[string]string{
				"TABPROFILE_STATS_WORKERS":       "8",
				"TABPROFILE_LOADER_NULL_VALUES":  "NA,-",
				"TABPROFILE_TELEMETRY_TRACING":   "true",
				"TABPROFILE_LOGGING_LEVEL":       "warn",
				"TABPROFILE_LOADER_LAZY_QUOTES":  "true",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8, cfg.Stats.Workers)
				assert.Equal(t, []string{"NA", "-"}, cfg.Loader.NullValues)
				assert.True(t, cfg.Telemetry.Tracing)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.True(t, cfg.Loader.LazyQuotes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(writeConfigFile(t, tt.file))
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr string
	}{
		{"bad level", "logging:\n  level: loud\n", "level"},
		{"bad output", "logging:\n  output: syslog\n", "output"},
		{"zero workers", "stats:\n  workers: 0\n", "workers"},
		{"long delimiter", "loader:\n  delimiter: \";;\"\n", "delimiter"},
		{"bad exporter", "telemetry:\n  trace_exporter: otlp\n", "trace_exporter"},
		{"bad ratio", "telemetry:\n  sample_ratio: 2\n", "sample_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfigFile(t, "logging: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFileDiscovery(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "tabprofile.yaml"), []byte("stats:\n  workers: 3\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Stats.Workers)
}

func TestDelimiterRuneFallback(t *testing.T) {
	assert.Equal(t, ',', LoaderConfig{}.DelimiterRune())
	assert.Equal(t, '\t', LoaderConfig{Delimiter: "\t"}.DelimiterRune())
}
