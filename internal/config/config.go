package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	RateLimitWindowMS    int64 `mapstructure:"RATE_LIMIT_WINDOW_MS"`
	RateLimitMaxRequests int   `mapstructure:"RATE_LIMIT_MAX_REQUESTS"`

	FreeGenerationQuota  int64 `mapstructure:"FREE_GENERATION_QUOTA"`
	CreditsPerGeneration int64 `mapstructure:"CREDITS_PER_GENERATION"`
	SignupGrantCredits   int64 `mapstructure:"SIGNUP_GRANT_CREDITS"`

	DemoMode          bool  `mapstructure:"DEMO_MODE"`
	AuthRequired      bool  `mapstructure:"AUTH_REQUIRED"`
	ProviderTimeoutMS int64 `mapstructure:"PROVIDER_TIMEOUT_MS"`

	// Optional: when set, the rate limiter uses a shared redis bucket store
	// instead of process-local memory.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
}

// RateLimitWindow returns the fixed-window length as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

// ProviderTimeout returns the per-call provider timeout as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMS) * time.Millisecond
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("RATE_LIMIT_WINDOW_MS", 60000)
	viper.SetDefault("RATE_LIMIT_MAX_REQUESTS", 30)
	viper.SetDefault("FREE_GENERATION_QUOTA", 1)
	viper.SetDefault("CREDITS_PER_GENERATION", 1)
	viper.SetDefault("SIGNUP_GRANT_CREDITS", 0)
	viper.SetDefault("DEMO_MODE", false)
	viper.SetDefault("AUTH_REQUIRED", true)
	viper.SetDefault("PROVIDER_TIMEOUT_MS", 60000)
	viper.SetDefault("REDIS_DB", 0)

	// Bind environment variables
	viper.BindEnv("PORT")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	viper.BindEnv("OPENAI_API_KEY")
	viper.BindEnv("GEMINI_API_KEY")
	viper.BindEnv("RATE_LIMIT_WINDOW_MS")
	viper.BindEnv("RATE_LIMIT_MAX_REQUESTS")
	viper.BindEnv("FREE_GENERATION_QUOTA")
	viper.BindEnv("CREDITS_PER_GENERATION")
	viper.BindEnv("SIGNUP_GRANT_CREDITS")
	viper.BindEnv("DEMO_MODE")
	viper.BindEnv("AUTH_REQUIRED")
	viper.BindEnv("PROVIDER_TIMEOUT_MS")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("REDIS_PASSWORD")
	viper.BindEnv("REDIS_DB")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

// Validate checks that required settings are present. Demo mode needs no
// external credentials at all; production must not silently degrade to
// fabricated responses, so missing credentials are fatal here.
func (c *Config) Validate() error {
	if c.RateLimitWindowMS <= 0 {
		return errors.New("RATE_LIMIT_WINDOW_MS must be positive")
	}
	if c.RateLimitMaxRequests <= 0 {
		return errors.New("RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	if c.FreeGenerationQuota < 0 {
		return errors.New("FREE_GENERATION_QUOTA must not be negative")
	}
	if c.CreditsPerGeneration <= 0 {
		return errors.New("CREDITS_PER_GENERATION must be positive")
	}

	if c.DemoMode {
		return nil
	}

	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" {
		return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if c.OpenAIAPIKey == "" && c.GeminiAPIKey == "" {
		return errors.New("at least one of OPENAI_API_KEY or GEMINI_API_KEY is required")
	}
	return nil
}

var appConfig *Config

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
