package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ikchen/macropulse/internal/models"
)

// Config carries everything the pipeline needs. It is built once at startup
// and passed by value into producers; there is no ambient global state.
type Config struct {
	// LLM
	LLMProvider       string  `json:"llm_provider" validate:"oneof=openai deepseek"`
	LLMModel          string  `json:"llm_model" validate:"required"`
	BackendURL        string  `json:"backend_url"`
	OpenAIAPIKey      string  `json:"openai_api_key"`
	DeepSeekAPIKey    string  `json:"deepseek_api_key"`
	AnalystTemp       float32 `json:"analyst_temperature" validate:"gte=0,lte=1"`
	EditorTemp        float32 `json:"editor_temperature" validate:"gte=0,lte=1"`
	MaxTokens         int     `json:"max_tokens" validate:"gt=0"`
	MaxRetries        int     `json:"max_retries" validate:"gte=1"`
	RetryInitialDelay time.Duration `json:"retry_initial_delay" validate:"gt=0"`

	// Collectors
	FREDAPIKey     string        `json:"fred_api_key"`
	RequestTimeout time.Duration `json:"request_timeout" validate:"gt=0"`
	FREDCacheTTL   time.Duration `json:"fred_cache_ttl"`
	MarketCacheTTL time.Duration `json:"market_cache_ttl"`
	PredsCacheTTL  time.Duration `json:"predictions_cache_ttl"`
	CacheEnabled   bool          `json:"cache_enabled"`

	// Data filters
	MinMarketVolume float64 `json:"min_market_volume" validate:"gte=0"`
	CorrelationDays int     `json:"correlation_days" validate:"gte=1,lte=30"`

	// User
	PortfolioJSON string `json:"portfolio_json"`

	// System
	LogLevel     string `json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string `json:"log_format" validate:"oneof=console json"`
	DataCacheDir string `json:"data_cache_dir"`
	OutputDir    string `json:"output_dir"`
}

// DefaultConfig returns the baseline configuration, overridden by a .env file
// and then by process environment variables.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		LLMProvider:       "openai",
		LLMModel:          "gpt-4o-mini",
		BackendURL:        "",
		AnalystTemp:       0.3,
		EditorTemp:        0.5,
		MaxTokens:         4000,
		MaxRetries:        3,
		RetryInitialDelay: time.Second,

		RequestTimeout: 10 * time.Second,
		FREDCacheTTL:   24 * time.Hour,
		MarketCacheTTL: 15 * time.Minute,
		PredsCacheTTL:  time.Hour,
		CacheEnabled:   true,

		MinMarketVolume: 100_000,
		CorrelationDays: 7,

		LogLevel:     "info",
		LogFormat:    "console",
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),
		OutputDir:    filepath.Join(currentDir, "outputs"),
	}

	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("FRED_API_KEY"); val != "" {
		c.FREDAPIKey = val
	}
	if val := os.Getenv("USER_PORTFOLIO"); val != "" {
		c.PortfolioJSON = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.LogFormat = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("OUTPUT_DIR"); val != "" {
		c.OutputDir = val
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := os.Getenv("MAX_RETRIES"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRetries = v
		}
	}
	if val := os.Getenv("ANALYST_TEMPERATURE"); val != "" {
		if v, err := strconv.ParseFloat(val, 32); err == nil {
			c.AnalystTemp = float32(v)
		}
	}
	if val := os.Getenv("EDITOR_TEMPERATURE"); val != "" {
		if v, err := strconv.ParseFloat(val, 32); err == nil {
			c.EditorTemp = float32(v)
		}
	}
	if val := os.Getenv("REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.RequestTimeout = d
		}
	}
	if val := os.Getenv("MIN_MARKET_VOLUME"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.MinMarketVolume = v
		}
	}
	if val := os.Getenv("CORRELATION_DAYS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.CorrelationDays = v
		}
	}
}

// Validate checks field constraints and provider-dependent API keys.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required when LLM_PROVIDER=deepseek")
		}
	}
	if c.FREDAPIKey == "" {
		return fmt.Errorf("FRED_API_KEY is required")
	}
	return nil
}

// Portfolio parses the USER_PORTFOLIO JSON. A missing or malformed value
// yields no portfolio rather than an error; holdings are optional input.
func (c *Config) Portfolio() *models.Portfolio {
	if c.PortfolioJSON == "" {
		return nil
	}
	var holdings []models.Holding
	if err := json.Unmarshal([]byte(c.PortfolioJSON), &holdings); err != nil {
		return nil
	}
	if len(holdings) == 0 {
		return nil
	}
	return &models.Portfolio{Holdings: holdings}
}

// EnsureDirectories creates the cache and output directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataCacheDir, c.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
