package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval" yaml:"retrieval"`
	Rules     RulesConfig     `mapstructure:"rules" yaml:"rules"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Engine    EngineConfig    `mapstructure:"engine" yaml:"engine"`
}

// LoggerConfig controls the zap logger and optional rotated file output.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // console | json
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// LLMConfig selects and parameterizes the model backend.
type LLMConfig struct {
	Provider   string        `mapstructure:"provider" yaml:"provider"` // heuristic | openai | azure
	Model      string        `mapstructure:"model" yaml:"model"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	Deployment string        `mapstructure:"deployment" yaml:"deployment"`   // azure only
	APIVersion string        `mapstructure:"api_version" yaml:"api_version"` // azure only
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxElapsed time.Duration `mapstructure:"max_elapsed" yaml:"max_elapsed"` // retry budget
	// RequestsPerMinute caps outbound calls to the provider. Zero disables limiting.
	RequestsPerMinute int `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// RetrievalConfig tunes the heuristic candidate retriever.
type RetrievalConfig struct {
	Limit        int     `mapstructure:"limit" yaml:"limit"`
	SegmentChars int     `mapstructure:"segment_chars" yaml:"segment_chars"`
	MinScore     float64 `mapstructure:"min_score" yaml:"min_score"`
}

// RulesConfig points at the rule checklist file.
type RulesConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// StoreConfig selects the job store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // memory | postgres
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// EngineConfig tunes the rule matching engine and async execution.
type EngineConfig struct {
	SnippetWindow int `mapstructure:"snippet_window" yaml:"snippet_window"`
	AsyncWorkers  int `mapstructure:"async_workers" yaml:"async_workers"`
}

// SetDefaults registers the default values on a viper instance. Called before
// reading the config file so a missing file still yields a working setup.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "bidassist")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("llm.provider", "heuristic")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.max_elapsed", 2*time.Minute)
	v.SetDefault("llm.api_version", "2023-07-01-preview")

	v.SetDefault("retrieval.limit", 5)
	v.SetDefault("retrieval.segment_chars", 400)
	v.SetDefault("retrieval.min_score", 0.12)

	v.SetDefault("store.driver", "memory")

	v.SetDefault("engine.snippet_window", 120)
	v.SetDefault("engine.async_workers", 4)
}

// Load unmarshals and validates the configuration from a prepared viper
// instance.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints. Provider-specific credential checks
// happen in the llmclient factory, where the provider set is defined.
func (c *Config) Validate() error {
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	if c.Retrieval.Limit <= 0 {
		return fmt.Errorf("retrieval.limit must be positive, got %d", c.Retrieval.Limit)
	}
	if c.Retrieval.SegmentChars <= 0 {
		return fmt.Errorf("retrieval.segment_chars must be positive, got %d", c.Retrieval.SegmentChars)
	}
	if c.Engine.SnippetWindow <= 0 {
		return fmt.Errorf("engine.snippet_window must be positive, got %d", c.Engine.SnippetWindow)
	}
	if c.Engine.AsyncWorkers <= 0 {
		return fmt.Errorf("engine.async_workers must be positive, got %d", c.Engine.AsyncWorkers)
	}
	switch strings.ToLower(c.Store.Driver) {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required when store.driver is postgres")
		}
	default:
		return fmt.Errorf("unknown store.driver %q (supported: memory, postgres)", c.Store.Driver)
	}
	return nil
}
