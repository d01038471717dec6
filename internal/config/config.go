package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	LoginURL          string
	CandidateCacheTTL time.Duration
	SuggestionDelay   time.Duration
	OpenAIAPIKey      string
	OpenAIModel       string
	NotificationTopic string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PROVA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Prova API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("candidate.cache_ttl", "2m")
	v.SetDefault("suggestion.delay", "3s")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("notification.topic", "prova:recruiter")

	ttl, err := time.ParseDuration(v.GetString("candidate.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid candidate cache ttl: %w", err)
	}

	delay, err := time.ParseDuration(v.GetString("suggestion.delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid suggestion delay: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		LoginURL:          v.GetString("login.url"),
		CandidateCacheTTL: ttl,
		SuggestionDelay:   delay,
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		OpenAIModel:       v.GetString("openai.model"),
		NotificationTopic: v.GetString("notification.topic"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
