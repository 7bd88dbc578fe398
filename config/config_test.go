package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHAT_POLL_INTERVAL", "")
	t.Setenv("ANNOUNCE_INTERVAL", "")
	t.Setenv("BOT_NAME", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.IdleCooldown != 30*time.Second {
		t.Errorf("IdleCooldown = %v, want 30s", cfg.IdleCooldown)
	}
	if cfg.AnnounceInterval != 30*time.Minute {
		t.Errorf("AnnounceInterval = %v, want 30m", cfg.AnnounceInterval)
	}
	if cfg.BotName != "livebot" {
		t.Errorf("BotName = %q, want default", cfg.BotName)
	}
	if cfg.GeminiModel == "" {
		t.Errorf("expected default gemini model, got empty")
	}
}

func TestLoadIntervalOverride(t *testing.T) {
	t.Setenv("CHAT_POLL_INTERVAL", "250ms")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", cfg.PollInterval)
	}
}

func TestLoadInvalidInterval(t *testing.T) {
	t.Setenv("IDLE_COOLDOWN", "soon")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for unparseable IDLE_COOLDOWN")
	}
	t.Setenv("IDLE_COOLDOWN", "-10s")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for negative IDLE_COOLDOWN")
	}
}

func TestValidateBotReady(t *testing.T) {
	t.Setenv("YT_CHANNEL_ID", "UCx")
	t.Setenv("YT_CLIENT_ID", "cid")
	t.Setenv("YT_CLIENT_SECRET", "secret")
	cfg, _ := Load()
	if err := cfg.ValidateBotReady(); err != nil {
		t.Errorf("expected valid bot config, got %v", err)
	}
	if err := os.Unsetenv("YT_CHANNEL_ID"); err != nil {
		t.Fatalf("failed to unset YT_CHANNEL_ID: %v", err)
	}
	cfg, _ = Load()
	if err := cfg.ValidateBotReady(); err == nil {
		t.Errorf("expected error when missing youtube envs")
	}
}
