// Package common provides shared configuration, logging, and utilities.
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	Server       ServerConfig       `toml:"server"`
	Storage      StorageConfig      `toml:"storage"`
	Logging      LoggingConfig      `toml:"logging"`
	Scheduler    SchedulerConfig    `toml:"scheduler"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Credibility  CredibilityConfig  `toml:"credibility"`
	Evaluation   EvaluationConfig   `toml:"evaluation"`
	EODHD        EODHDConfig        `toml:"eodhd"`
	Gemini       GeminiConfig       `toml:"gemini"`
	Claude       ClaudeConfig       `toml:"claude"`
	LLM          LLMConfig          `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// SchedulerConfig contains the cron schedules for the recurring cycles
type SchedulerConfig struct {
	Enabled            bool   `toml:"enabled"`
	SmartUpdateCron    string `toml:"smart_update_cron"`    // Smart refresh cycle schedule
	EvaluationCron     string `toml:"evaluation_cron"`      // Recommendation evaluation sweep schedule
	SmartUpdateOnStart bool   `toml:"smart_update_onstart"` // Run a smart cycle immediately after startup
}

// OrchestratorConfig bounds the batch refresh against external rate limits
type OrchestratorConfig struct {
	Concurrency  int           `toml:"concurrency"`    // Max simultaneous per-ticker refreshes
	BatchDelay   time.Duration `toml:"batch_delay"`    // Pause between concurrency windows
	MaxAgeHours  int           `toml:"max_age_hours"`  // Staleness threshold for smart cycles
	MaxTickers   int           `toml:"max_tickers"`    // Cap on tickers per full cycle
	NewsPeriod   time.Duration `toml:"news_period"`    // Lookback window for news refresh
	PriceHistory time.Duration `toml:"price_history"`  // Lookback window for financial refresh
	LLMNarrative bool          `toml:"llm_narrative"`  // Generate LLM news narratives during refresh
}

// CredibilityConfig holds the scoring thresholds and recency blend weights.
// Defaults match the documented tier bands; override with care since stored
// tiers are recomputed lazily.
type CredibilityConfig struct {
	TopTierThreshold  float64 `toml:"top_tier_threshold"` // Score at or above -> TOP_TIER
	RisingThreshold   float64 `toml:"rising_threshold"`   // Score at or above -> RISING
	StandardThreshold float64 `toml:"standard_threshold"` // Score at or above -> STANDARD
	LifetimeWeight    float64 `toml:"lifetime_weight"`    // Recency blend weight for lifetime accuracy
	Quarter90Weight   float64 `toml:"quarter_weight"`     // Recency blend weight for last-90-days accuracy
	Month30Weight     float64 `toml:"month_weight"`       // Recency blend weight for last-30-days accuracy
}

// EvaluationConfig holds the outcome-resolution tolerances
type EvaluationConfig struct {
	NoiseThresholdPct  float64 `toml:"noise_threshold_pct"`  // Rating band: moves within +/- this pct are HOLD territory
	TargetTolerancePct float64 `toml:"target_tolerance_pct"` // Price target correct within +/- this pct
	EPSTolerancePct    float64 `toml:"eps_tolerance_pct"`    // EPS correct within +/- this pct
}

// EODHDConfig contains EODHD API configuration
type EODHDConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // Requests per second
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for the AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude"
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in veritas.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			SmartUpdateCron:    "*/30 * * * *", // Every 30 minutes
			EvaluationCron:     "0 6 * * *",    // Daily at 06:00
			SmartUpdateOnStart: false,
		},
		Orchestrator: OrchestratorConfig{
			Concurrency:  3,
			BatchDelay:   5 * time.Second,
			MaxAgeHours:  24,
			MaxTickers:   50,
			NewsPeriod:   30 * 24 * time.Hour,
			PriceHistory: 365 * 24 * time.Hour,
			LLMNarrative: false, // Opt-in: requires an API key
		},
		Credibility: CredibilityConfig{
			TopTierThreshold:  0.80,
			RisingThreshold:   0.65,
			StandardThreshold: 0.50,
			LifetimeWeight:    0.5,
			Quarter90Weight:   0.3,
			Month30Weight:     0.2,
		},
		Evaluation: EvaluationConfig{
			NoiseThresholdPct:  2.0,
			TargetTolerancePct: 10.0,
			EPSTolerancePct:    10.0,
		},
		EODHD: EODHDConfig{
			APIKey:    "", // User must provide API key in config file or VERITAS_EODHD_API_KEY
			BaseURL:   "https://eodhd.com/api",
			RateLimit: 10,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VERITAS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("VERITAS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VERITAS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("VERITAS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("VERITAS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("VERITAS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Orchestrator configuration
	if concurrency := os.Getenv("VERITAS_ORCHESTRATOR_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Orchestrator.Concurrency = c
		}
	}
	if delay := os.Getenv("VERITAS_ORCHESTRATOR_BATCH_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			config.Orchestrator.BatchDelay = d
		}
	}
	if maxAge := os.Getenv("VERITAS_ORCHESTRATOR_MAX_AGE_HOURS"); maxAge != "" {
		if ma, err := strconv.Atoi(maxAge); err == nil {
			config.Orchestrator.MaxAgeHours = ma
		}
	}
	if maxTickers := os.Getenv("VERITAS_ORCHESTRATOR_MAX_TICKERS"); maxTickers != "" {
		if mt, err := strconv.Atoi(maxTickers); err == nil {
			config.Orchestrator.MaxTickers = mt
		}
	}

	// Provider API keys
	if key := os.Getenv("VERITAS_EODHD_API_KEY"); key != "" {
		config.EODHD.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime behavior.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Orchestrator.Concurrency <= 0 {
		return fmt.Errorf("orchestrator concurrency must be positive, got %d", c.Orchestrator.Concurrency)
	}
	if c.Orchestrator.MaxAgeHours <= 0 {
		return fmt.Errorf("orchestrator max_age_hours must be positive, got %d", c.Orchestrator.MaxAgeHours)
	}
	w := c.Credibility.LifetimeWeight + c.Credibility.Quarter90Weight + c.Credibility.Month30Weight
	if w < 0.999 || w > 1.001 {
		return fmt.Errorf("credibility blend weights must sum to 1.0, got %.3f", w)
	}
	if c.Credibility.TopTierThreshold < c.Credibility.RisingThreshold ||
		c.Credibility.RisingThreshold < c.Credibility.StandardThreshold {
		return fmt.Errorf("credibility tier thresholds must be monotonically decreasing")
	}
	return nil
}
