package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress          string `mapstructure:"SERVER_ADDRESS"` // e.g., ":3001"
	AppEnv                 string `mapstructure:"APP_ENV"`        // "production" switches gin to release mode
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	AllowedOrigins         string `mapstructure:"ALLOWED_ORIGINS"` // comma separated, empty means any origin
	MaxBodyBytes           int64  `mapstructure:"MAX_BODY_BYTES"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`

	// AI Configuration
	AIProvider   string `mapstructure:"AI_PROVIDER"` // gemini, openai or fake
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`
	OpenAIKey    string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel  string `mapstructure:"OPENAI_MODEL"`

	// Retry overrides, applied to every stage when > 0
	RetryMaxAttempts    int `mapstructure:"RETRY_MAX_ATTEMPTS"`
	RetryInitialDelayMS int `mapstructure:"RETRY_INITIAL_DELAY_MS"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":           ":3001",
	"APP_ENV":                  "development",
	"LOG_LEVEL":                "info",
	"ALLOWED_ORIGINS":          "",
	"MAX_BODY_BYTES":           int64(10 << 20),
	"SHUTDOWN_TIMEOUT_SECONDS": 10,
	"AI_PROVIDER":              "gemini",
	"GEMINI_API_KEY":           "",
	"GEMINI_MODEL":             "gemini-1.5-flash",
	"OPENAI_API_KEY":           "",
	"OPENAI_MODEL":             "",
	"RETRY_MAX_ATTEMPTS":       0,
	"RETRY_INITIAL_DELAY_MS":   0,
}

// LoadConfig reads configuration from config.yaml in path, if present, and
// environment variables. Environment variables win.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Defaults double as the key list AutomaticEnv needs for Unmarshal.
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with. A missing API key is
// allowed: callers may send their own.
func (c Config) Validate() error {
	switch c.AIProvider {
	case "gemini", "openai", "fake":
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AIProvider)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("MAX_BODY_BYTES must not be negative, got %d", c.MaxBodyBytes)
	}
	if c.RetryMaxAttempts < 0 || c.RetryInitialDelayMS < 0 {
		return errors.New("retry overrides must not be negative")
	}
	return nil
}

// APIKey returns the server-side credential of the selected provider.
func (c Config) APIKey() string {
	switch c.AIProvider {
	case "openai":
		return c.OpenAIKey
	case "fake":
		return "offline"
	default:
		return c.GeminiAPIKey
	}
}

// Origins splits ALLOWED_ORIGINS into a list.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) RetryInitialDelay() time.Duration {
	return time.Duration(c.RetryInitialDelayMS) * time.Millisecond
}

func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
