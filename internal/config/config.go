// Package config loads application configuration with viper.
//
// Configuration comes from config.yaml (searched in . and ./config), with
// COLAUNCH_-prefixed environment variables overriding file values, and
// sensible defaults for everything that can have one. Secrets (JWT secret,
// OAuth client secret, AI API key) have no defaults and must be provided.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port    int
		BaseURL string // public origin used in OAuth callbacks and media URLs
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret      string
		SessionTTL     time.Duration
		GoogleClientID string
		GoogleSecret   string
		CallbackURL    string
		DashboardURL   string // where the callback redirects with the user blob
	}
	AI struct {
		BaseURL        string
		APIKey         string
		ChatModel      string
		EmbeddingModel string
		AudioModel     string
		Timeout        time.Duration // per downstream pipeline step
	}
	Search struct {
		SimilarityThreshold float64
		MatchCount          int
	}
	Media struct {
		Dir string
	}
	Legacy struct {
		Enabled       bool
		LedgerBaseURL string
	}
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("colaunch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.BaseURL = v.GetString("server.base_url")

	cfg.Database.Path = v.GetString("database.path")

	cfg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	cfg.Auth.SessionTTL = v.GetDuration("auth.session_ttl")
	cfg.Auth.GoogleClientID = v.GetString("auth.google_client_id")
	cfg.Auth.GoogleSecret = v.GetString("auth.google_client_secret")
	cfg.Auth.CallbackURL = v.GetString("auth.callback_url")
	cfg.Auth.DashboardURL = v.GetString("auth.dashboard_url")

	cfg.AI.BaseURL = v.GetString("ai.base_url")
	cfg.AI.APIKey = v.GetString("ai.api_key")
	cfg.AI.ChatModel = v.GetString("ai.chat_model")
	cfg.AI.EmbeddingModel = v.GetString("ai.embedding_model")
	cfg.AI.AudioModel = v.GetString("ai.audio_model")
	cfg.AI.Timeout = v.GetDuration("ai.timeout")

	cfg.Search.SimilarityThreshold = v.GetFloat64("search.similarity_threshold")
	cfg.Search.MatchCount = v.GetInt("search.match_count")

	cfg.Media.Dir = v.GetString("media.dir")

	cfg.Legacy.Enabled = v.GetBool("legacy.enabled")
	cfg.Legacy.LedgerBaseURL = v.GetString("legacy.ledger_base_url")

	if cfg.Auth.CallbackURL == "" {
		cfg.Auth.CallbackURL = fmt.Sprintf("%s/auth/google/callback", cfg.Server.BaseURL)
	}
	if cfg.Auth.DashboardURL == "" {
		cfg.Auth.DashboardURL = fmt.Sprintf("%s/dashboard", cfg.Server.BaseURL)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("database.path", "data/colaunch.db")

	// 2-hour sessions, matching the client token the dashboard caches.
	v.SetDefault("auth.session_ttl", 2*time.Hour)

	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.chat_model", "gpt-3.5-turbo")
	v.SetDefault("ai.embedding_model", "text-embedding-ada-002")
	v.SetDefault("ai.audio_model", "whisper-1")
	v.SetDefault("ai.timeout", 15*time.Second)

	v.SetDefault("search.similarity_threshold", 0.32)
	v.SetDefault("search.match_count", 10)

	v.SetDefault("media.dir", "data/media")

	v.SetDefault("legacy.enabled", false)
}

func validate(cfg *Config) error {
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required")
	}
	if len(cfg.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("config: ai.api_key is required")
	}
	if cfg.Search.MatchCount <= 0 {
		return fmt.Errorf("config: search.match_count must be positive")
	}
	if cfg.Search.SimilarityThreshold < 0 || cfg.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("config: search.similarity_threshold must be in [0, 1]")
	}
	if cfg.Legacy.Enabled && cfg.Legacy.LedgerBaseURL == "" {
		return fmt.Errorf("config: legacy.ledger_base_url is required when legacy.enabled")
	}
	return nil
}
