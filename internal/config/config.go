// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Retry    RetryConfig    `mapstructure:"retry" yaml:"retry"`
	Replay   ReplayConfig   `mapstructure:"replay" yaml:"replay"`
}

// LoggerConfig controls log output, format and rotation.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig controls the Chrome process and page-level timing.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	DisableGPU        bool          `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
}

// ResolverConfig bounds the per-candidate element search.
type ResolverConfig struct {
	CandidateTimeout time.Duration `mapstructure:"candidate_timeout" yaml:"candidate_timeout"`
}

// RetryConfig is the default retry policy applied to replayed steps.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
}

// ReplayConfig controls replay-run behavior.
type ReplayConfig struct {
	StepLogging bool `mapstructure:"step_logging" yaml:"step_logging"`
	// ContinueOnFailure keeps executing later steps after a step fails
	// instead of aborting the run.
	ContinueOnFailure bool `mapstructure:"continue_on_failure" yaml:"continue_on_failure"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "anchor-cli")
	v.SetDefault("logger.log_file", "anchor.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.post_load_wait", "1500ms")
	v.SetDefault("browser.action_timeout", "30s")

	// -- Resolver --
	v.SetDefault("resolver.candidate_timeout", "2500ms")

	// -- Retry --
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.delay", "1s")

	// -- Replay --
	v.SetDefault("replay.step_logging", true)
	v.SetDefault("replay.continue_on_failure", false)
}

// NewConfigFromViper creates a validated configuration from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative")
	}
	if c.Resolver.CandidateTimeout <= 0 {
		return fmt.Errorf("resolver.candidate_timeout must be a positive duration")
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	if c.Browser.ActionTimeout <= 0 {
		return fmt.Errorf("browser.action_timeout must be a positive duration")
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got %q", c.Logger.Format)
	}
	return nil
}

// NewDefaultConfig creates a configuration struct populated with default
// values. Used by tests and as a fallback when no config file is present.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults above.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}
