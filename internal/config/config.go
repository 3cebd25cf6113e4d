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
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	JWTRefreshSecret string
	PolicyCacheTTL   time.Duration
	VideoCacheTTL    time.Duration
	StreamHost       string
	EventChannelBase string
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
	v.SetEnvPrefix("SEVA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Seva API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("policy.cache_ttl", "10s")
	v.SetDefault("video.cache_ttl", "2m")
	v.SetDefault("stream.host", "stream.seva.local")
	v.SetDefault("event.channel_base", "seva:events")

	policyTTL, err := time.ParseDuration(v.GetString("policy.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid policy cache ttl: %w", err)
	}

	videoTTL, err := time.ParseDuration(v.GetString("video.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid video cache ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTRefreshSecret: v.GetString("jwt.refresh_secret"),
		PolicyCacheTTL:   policyTTL,
		VideoCacheTTL:    videoTTL,
		StreamHost:       v.GetString("stream.host"),
		EventChannelBase: v.GetString("event.channel_base"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	return cfg, nil
}
