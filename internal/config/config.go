package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Analysis    AnalysisConfig  `mapstructure:"analysis"`
	Insights    InsightsConfig  `mapstructure:"insights"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AnalysisConfig holds the statistical detection thresholds.
type AnalysisConfig struct {
	TrendWindow            int     `mapstructure:"trend_window"`
	TrendThreshold         float64 `mapstructure:"trend_threshold"`
	AnomalyThreshold       float64 `mapstructure:"anomaly_threshold"`
	AnomalyWindow          int     `mapstructure:"anomaly_window"`
	CorrelationThreshold   float64 `mapstructure:"correlation_threshold"`
	MinSampleSize          int     `mapstructure:"min_sample_size"`
	ComparisonMinGroupSize int     `mapstructure:"comparison_min_group_size"`
	SignificanceLevel      float64 `mapstructure:"significance_level"`
	MaxWorkers             int     `mapstructure:"max_workers"`
}

// InsightsConfig holds synthesis and ranking knobs.
type InsightsConfig struct {
	StrengthWeight     float64 `mapstructure:"strength_weight"`
	CompletenessWeight float64 `mapstructure:"completeness_weight"`
	FallbackCount      int     `mapstructure:"fallback_count"`
	CacheTTL           string  `mapstructure:"cache_ttl"`
	PersistCandidates  bool    `mapstructure:"persist_candidates"`
}

// CacheTTLDuration parses the configured cache TTL.
func (c InsightsConfig) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(cfg *Config) error {
	a := cfg.Analysis
	if a.TrendWindow < 3 {
		return fmt.Errorf("analysis.trend_window must be at least 3, got %d", a.TrendWindow)
	}
	if a.AnomalyThreshold < 1.0 {
		return fmt.Errorf("analysis.anomaly_threshold must be at least 1.0, got %g", a.AnomalyThreshold)
	}
	if a.CorrelationThreshold < 0 || a.CorrelationThreshold > 1 {
		return fmt.Errorf("analysis.correlation_threshold must be in [0,1], got %g", a.CorrelationThreshold)
	}
	if a.SignificanceLevel <= 0 || a.SignificanceLevel >= 1 {
		return fmt.Errorf("analysis.significance_level must be in (0,1), got %g", a.SignificanceLevel)
	}
	if a.MaxWorkers < 1 {
		return fmt.Errorf("analysis.max_workers must be positive, got %d", a.MaxWorkers)
	}
	i := cfg.Insights
	if i.StrengthWeight+i.CompletenessWeight <= 0 {
		return fmt.Errorf("insights weights must sum to a positive value")
	}
	if i.FallbackCount < 1 {
		return fmt.Errorf("insights.fallback_count must be at least 1, got %d", i.FallbackCount)
	}
	if i.CacheTTL != "" {
		if _, err := time.ParseDuration(i.CacheTTL); err != nil {
			return fmt.Errorf("invalid insights.cache_ttl: %w", err)
		}
	}
	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database (optional; only InsightCandidate rows are persisted)
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "insight_engine")
	viper.SetDefault("database.sslmode", "disable")

	// Redis (optional result cache)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Analysis
	viper.SetDefault("analysis.trend_window", 7)
	viper.SetDefault("analysis.trend_threshold", 0.1)
	viper.SetDefault("analysis.anomaly_threshold", 2.5)
	viper.SetDefault("analysis.anomaly_window", 10)
	viper.SetDefault("analysis.correlation_threshold", 0.7)
	viper.SetDefault("analysis.min_sample_size", 10)
	viper.SetDefault("analysis.comparison_min_group_size", 5)
	viper.SetDefault("analysis.significance_level", 0.05)
	viper.SetDefault("analysis.max_workers", 4)

	// Insights
	viper.SetDefault("insights.strength_weight", 0.7)
	viper.SetDefault("insights.completeness_weight", 0.3)
	viper.SetDefault("insights.fallback_count", 3)
	viper.SetDefault("insights.cache_ttl", "10m")
	viper.SetDefault("insights.persist_candidates", false)

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.service_name", "insight-engine")
	viper.SetDefault("telemetry.service_version", "1.0.0")
}

// DefaultAnalysis returns the default analysis thresholds without reading any
// config source. Used by tests and library callers.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		TrendWindow:            7,
		TrendThreshold:         0.1,
		AnomalyThreshold:       2.5,
		AnomalyWindow:          10,
		CorrelationThreshold:   0.7,
		MinSampleSize:          10,
		ComparisonMinGroupSize: 5,
		SignificanceLevel:      0.05,
		MaxWorkers:             4,
	}
}

// DefaultInsights returns the default synthesis and ranking knobs.
func DefaultInsights() InsightsConfig {
	return InsightsConfig{
		StrengthWeight:     0.7,
		CompletenessWeight: 0.3,
		FallbackCount:      3,
		CacheTTL:           "10m",
	}
}
