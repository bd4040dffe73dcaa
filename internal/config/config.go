// Package config loads the clipping settings from config.yaml and the
// environment (optionally seeded from a .env file).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/clipping/internal/news"
)

// File mirrors config.yaml.
type File struct {
	Queries             []string `yaml:"queries"`
	Timezone            string   `yaml:"timezone"`
	LookbackHours       *int     `yaml:"lookback_hours"`
	PreferredSources    []string `yaml:"sources_preferidas"`
	OutputDir           string   `yaml:"output_dir"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold"`
	Blacklist           []string `yaml:"blacklist"`
	AllowListEnabled    bool     `yaml:"allow_list_enabled"`
	AllowList           []string `yaml:"allow_list"`
	MaxItems            int      `yaml:"max_items"`
}

type Config struct {
	// Feed settings
	Queries       []string
	Location      *time.Location
	LookbackHours int
	FeedInterval  time.Duration // pause between Google News requests

	// Pipeline settings
	PreferredSources    []string
	SimilarityThreshold float64
	Blacklist           []string
	AllowListEnabled    bool
	AllowList           []string
	MaxItems            int // 0 = unlimited

	// Output settings
	OutputDir string

	// Telegram settings
	TelegramToken  string
	TelegramChatID string

	// Gemini settings
	GeminiAPIKey      string
	MaxGeminiRequests int

	// Archive settings
	ArchiveDSN string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Load reads the YAML file at path and overlays environment settings.
// A missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	return cfg, cfg.Validate()
}

// Parse builds a Config from YAML bytes with defaults filled in.
// Environment variables are not consulted.
func Parse(data []byte) (*Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Queries:             f.Queries,
		LookbackHours:       30,
		FeedInterval:        time.Second,
		PreferredSources:    f.PreferredSources,
		SimilarityThreshold: news.DefaultSimilarityThreshold,
		Blacklist:           f.Blacklist,
		AllowListEnabled:    f.AllowListEnabled,
		AllowList:           f.AllowList,
		MaxItems:            f.MaxItems,
		OutputDir:           "output",
		MaxGeminiRequests:   1,
		RequestTimeout:      30 * time.Second,
		RetryAttempts:       3,
		RetryDelay:          2 * time.Second,
	}

	tzName := f.Timezone
	if tzName == "" {
		tzName = "America/Sao_Paulo"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tzName, err)
	}
	cfg.Location = loc

	if f.LookbackHours != nil {
		cfg.LookbackHours = *f.LookbackHours
	}
	if f.SimilarityThreshold != nil {
		cfg.SimilarityThreshold = *f.SimilarityThreshold
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	c.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	c.ArchiveDSN = os.Getenv("ARCHIVE_DSN")

	if v := os.Getenv("MAX_GEMINI_REQUESTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			c.MaxGeminiRequests = val
		}
	}
	if v := os.Getenv("FEED_RATE_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			c.FeedInterval = time.Duration(val) * time.Millisecond
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.RequestTimeout = d
		}
	}
	c.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", c.RetryAttempts)
	if v := os.Getenv("RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.RetryDelay = d
		}
	}

	if os.Getenv("DEBUG") == "true" {
		c.Debug = true
	}
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if len(c.Queries) == 0 {
		return fmt.Errorf("at least one query is required")
	}
	if c.LookbackHours < 0 {
		return fmt.Errorf("lookback_hours must not be negative")
	}
	if !(c.SimilarityThreshold > 0 && c.SimilarityThreshold <= 1) {
		return fmt.Errorf("similarity_threshold must be within (0, 1], got %v", c.SimilarityThreshold)
	}
	if c.MaxItems < 0 {
		return fmt.Errorf("max_items must not be negative")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// TelegramEnabled reports whether a Telegram destination is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

// Lookback is the age limit for items entering the pipeline.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

// PipelineOptions returns the cleaning options for news.Clean.
func (c *Config) PipelineOptions() news.Options {
	return news.Options{
		SimilarityThreshold: c.SimilarityThreshold,
		PreferredSources:    c.PreferredSources,
		Blacklist:           c.Blacklist,
		AllowListEnabled:    c.AllowListEnabled,
		AllowList:           c.AllowList,
	}
}
