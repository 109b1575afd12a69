package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)

	assert.Equal(t, 7, cfg.Analysis.TrendWindow)
	assert.Equal(t, 2.5, cfg.Analysis.AnomalyThreshold)
	assert.Equal(t, 0.7, cfg.Analysis.CorrelationThreshold)
	assert.Equal(t, 10, cfg.Analysis.MinSampleSize)
	assert.Equal(t, 5, cfg.Analysis.ComparisonMinGroupSize)
	assert.Equal(t, 0.05, cfg.Analysis.SignificanceLevel)

	assert.Equal(t, 0.7, cfg.Insights.StrengthWeight)
	assert.Equal(t, 0.3, cfg.Insights.CompletenessWeight)
	assert.Equal(t, 3, cfg.Insights.FallbackCount)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment, "environment is normalized to lowercase")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "trend window too small", mutate: func(c *Config) { c.Analysis.TrendWindow = 2 }},
		{name: "anomaly threshold too low", mutate: func(c *Config) { c.Analysis.AnomalyThreshold = 0.5 }},
		{name: "correlation threshold above one", mutate: func(c *Config) { c.Analysis.CorrelationThreshold = 1.5 }},
		{name: "significance level out of range", mutate: func(c *Config) { c.Analysis.SignificanceLevel = 0 }},
		{name: "no workers", mutate: func(c *Config) { c.Analysis.MaxWorkers = 0 }},
		{name: "zero weights", mutate: func(c *Config) { c.Insights.StrengthWeight = 0; c.Insights.CompletenessWeight = 0 }},
		{name: "zero fallback count", mutate: func(c *Config) { c.Insights.FallbackCount = 0 }},
		{name: "bad cache ttl", mutate: func(c *Config) { c.Insights.CacheTTL = "soon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Analysis: DefaultAnalysis(), Insights: DefaultInsights()}
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}
}

func TestCacheTTLDuration(t *testing.T) {
	assert.Equal(t, 15*time.Minute, InsightsConfig{CacheTTL: "15m"}.CacheTTLDuration())
	assert.Equal(t, 10*time.Minute, InsightsConfig{CacheTTL: "garbage"}.CacheTTLDuration())
	assert.Equal(t, 10*time.Minute, InsightsConfig{}.CacheTTLDuration())
}
