// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "anchor-cli", cfg.Logger.ServiceName)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 90*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Browser.PostLoadWait)
	assert.Equal(t, 30*time.Second, cfg.Browser.ActionTimeout)

	assert.Equal(t, 2500*time.Millisecond, cfg.Resolver.CandidateTimeout)

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.Delay)

	assert.True(t, cfg.Replay.StepLogging)
	assert.False(t, cfg.Replay.ContinueOnFailure)

	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromViperOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("retry.max_attempts", 5)
	v.Set("retry.delay", "250ms")
	v.Set("browser.headless", false)
	v.Set("logger.format", "json")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestNewConfigFromViperRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("retry.max_attempts", 0)

	_, err := NewConfigFromViper(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, false},
		{"negative delay", func(c *Config) { c.Retry.Delay = -time.Second }, false},
		{"zero candidate timeout", func(c *Config) { c.Resolver.CandidateTimeout = 0 }, false},
		{"zero navigation timeout", func(c *Config) { c.Browser.NavigationTimeout = 0 }, false},
		{"zero action timeout", func(c *Config) { c.Browser.ActionTimeout = 0 }, false},
		{"bad logger format", func(c *Config) { c.Logger.Format = "yaml" }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
