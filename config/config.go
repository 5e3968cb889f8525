package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the dashboard configuration. Values come from the JSON file, then
// from the environment.
type Config struct {
	ServerAddr string          `json:"server_addr,omitempty"`
	LogLevel   string          `json:"log_level,omitempty"`
	GinMode    string          `json:"gin_mode,omitempty"`
	LLM        LLMConfig       `json:"llm"`
	Publish    PublishConfig   `json:"publish"`
	Scheduler  SchedulerConfig `json:"scheduler"`
}

// LLMConfig selects the model behind the AI assistant.
type LLMConfig struct {
	Provider string `json:"provider,omitempty"` // openai, deepseek, gemini or mock
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// PublishConfig controls where posts go when published. Without a webhook
// URL publishing is simulated.
type PublishConfig struct {
	WebhookURL       string  `json:"webhook_url,omitempty"`
	SimulatedDelayMS int     `json:"simulated_delay_ms,omitempty"`
	FailureRate      float64 `json:"failure_rate,omitempty"`
}

// SimulatedDelay returns SimulatedDelayMS as a duration.
func (p PublishConfig) SimulatedDelay() time.Duration {
	return time.Duration(p.SimulatedDelayMS) * time.Millisecond
}

type SchedulerConfig struct {
	PublishCron string `json:"publish_cron,omitempty"`
	MetricsCron string `json:"metrics_cron,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerAddr: ":8080",
		LogLevel:   "info",
		GinMode:    "release",
		LLM:        LLMConfig{Provider: "mock"},
		Publish:    PublishConfig{SimulatedDelayMS: 300},
		Scheduler: SchedulerConfig{
			PublishCron: "@every 1m",
			MetricsCron: "@every 5m",
			Timezone:    "UTC",
		},
	}
}

// LoadConfig reads the JSON file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ServerAddr = GetEnv("SERVER_ADDR", c.ServerAddr)
	c.LogLevel = GetEnv("LOG_LEVEL", c.LogLevel)
	c.GinMode = GetEnv("GIN_MODE", c.GinMode)
	c.LLM.Provider = GetEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = GetEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = GetEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.APIKey = GetEnv("LLM_API_KEY", c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		case "deepseek":
			c.LLM.APIKey = GetEnv("DEEPSEEK_API_KEY", os.Getenv("OPENAI_API_KEY"))
		default:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	c.Publish.WebhookURL = GetEnv("PUBLISH_WEBHOOK_URL", c.Publish.WebhookURL)
	c.Publish.FailureRate = GetEnvFloat("PUBLISH_FAILURE_RATE", c.Publish.FailureRate)
	c.Scheduler.PublishCron = GetEnv("PUBLISH_CRON", c.Scheduler.PublishCron)
	c.Scheduler.Timezone = GetEnv("SCHEDULER_TIMEZONE", c.Scheduler.Timezone)
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini", "mock":
	case "deepseek":
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %q not supported", c.LLM.Provider)
	}
	if c.Publish.FailureRate < 0 || c.Publish.FailureRate > 1 {
		return fmt.Errorf("publish.failure_rate must be within [0,1], got %v", c.Publish.FailureRate)
	}
	if c.Publish.SimulatedDelayMS < 0 {
		return errors.New("publish.simulated_delay_ms must not be negative")
	}
	return nil
}

// LoadEnv loads variables from .env files in the working directory, letting
// them override the process environment.
func LoadEnv(logger logrus.FieldLogger) {
	files := []string{".env", ".env.local"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger == nil {
		return
	}
	if len(loaded) == 0 {
		logger.Debug("No local env files loaded; relying on process environment")
	} else {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

// GetEnv returns the environment variable key, or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
