// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required credentials (YouTube channel + OAuth client), use ValidateBotReady.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// YouTube
	ChannelID      string
	BotName        string
	YTClientID     string
	YTClientSecret string
	YTRedirectURI  string
	YTScopes       string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Supervisor timing
	PollInterval     time.Duration
	IdleCooldown     time.Duration
	ErrorBackoff     time.Duration
	AnnounceInterval time.Duration
}

// Load reads environment variables and applies defaults. It doesn't fail if YouTube creds are
// missing; use ValidateBotReady() when you require the live monitor. Missing optional variables
// disable features (e.g., the Gemini fallback responder).
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ChannelID = os.Getenv("YT_CHANNEL_ID")
	cfg.BotName = os.Getenv("BOT_NAME")
	if cfg.BotName == "" {
		cfg.BotName = "livebot"
	}

	cfg.YTClientID = os.Getenv("YT_CLIENT_ID")
	cfg.YTClientSecret = os.Getenv("YT_CLIENT_SECRET")
	cfg.YTRedirectURI = os.Getenv("YT_REDIRECT_URI")
	cfg.YTScopes = os.Getenv("YT_SCOPES")
	if cfg.YTScopes == "" {
		// posting to live chat requires the full youtube scope
		cfg.YTScopes = "https://www.googleapis.com/auth/youtube"
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = os.Getenv("GEMINI_MODEL")
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-1.5-flash"
	}

	var err error
	if cfg.PollInterval, err = durationEnv("CHAT_POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.IdleCooldown, err = durationEnv("IDLE_COOLDOWN", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ErrorBackoff, err = durationEnv("ERROR_BACKOFF", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.AnnounceInterval, err = durationEnv("ANNOUNCE_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// ValidateBotReady checks required fields when the live monitor is enabled.
func (c *Config) ValidateBotReady() error {
	if c.ChannelID == "" || c.YTClientID == "" || c.YTClientSecret == "" {
		return fmt.Errorf("missing youtube env: require YT_CHANNEL_ID, YT_CLIENT_ID, YT_CLIENT_SECRET")
	}
	return nil
}
