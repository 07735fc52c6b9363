// Package config loads tabprofile settings. Values come from built-in
// defaults, then an optional YAML file, then TABPROFILE_* environment
// variables, with later sources taking precedence.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "TABPROFILE"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Loader    LoaderConfig    `yaml:"loader" envconfig:"LOADER"`
	Stats     StatsConfig     `yaml:"stats" envconfig:"STATS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// LoaderConfig controls how delimited and spreadsheet files are read
type LoaderConfig struct {
	Delimiter  string   `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
	Sheet      string   `yaml:"sheet" envconfig:"SHEET"`
	NullValues []string `yaml:"null_values" envconfig:"NULL_VALUES"`
	TrimSpace  bool     `yaml:"trim_space" envconfig:"TRIM_SPACE"`
	LazyQuotes bool     `yaml:"lazy_quotes" envconfig:"LAZY_QUOTES"`
}

// StatsConfig controls the statistics engine
type StatsConfig struct {
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=256"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	Tracing         bool    `yaml:"tracing" envconfig:"TRACING"`
	TraceExporter   string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio     float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	MetricsTextfile string  `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/tabprofile.log",
		},
		Loader: LoaderConfig{
			Delimiter: ",",
			TrimSpace: true,
		},
		Stats: StatsConfig{
			Workers: 1,
		},
		Telemetry: TelemetryConfig{
			Tracing:       false,
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
	}
}

// Load builds the configuration. An empty filePath falls back to the first
// config file found in the usual locations, or none.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath == "" {
		filePath = getConfigFilePath()
	}
	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags, so only variables that are actually set
	// override the file and built-in values.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints declared in validate tags
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// DelimiterRune returns the CSV field separator
func (c LoaderConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// getConfigFilePath returns the first existing config file, or ""
func getConfigFilePath() string {
	paths, _ := GetPaths()
	for _, location := range paths.ConfigCandidates() {
		if FileExists(location) {
			return location
		}
	}
	return ""
}
