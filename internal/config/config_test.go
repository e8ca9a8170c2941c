package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_UsesJWTSecretKeyAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "JWT_SECRET")
	setEnvWithCleanup(t, "JWT_SECRET_KEY", "alias-only-secret")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.JWTSecret != "alias-only-secret" {
		t.Fatalf("expected JWTSecret from alias env var, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfig_JWTSecretTakesPrecedenceOverAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "JWT_SECRET", "primary-secret")
	setEnvWithCleanup(t, "JWT_SECRET_KEY", "alias-secret")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.JWTSecret != "primary-secret" {
		t.Fatalf("expected JWTSecret to prioritize JWT_SECRET, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "PORT")
	unsetEnvWithCleanup(t, "JWT_EXPIRATION_HOURS")
	unsetEnvWithCleanup(t, "LOGIN_RATE_LIMIT_PER_MINUTE")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default ServerPort 8080, got %q", cfg.ServerPort)
	}
	if cfg.JWTExpirationHours != 24 {
		t.Fatalf("expected default JWTExpirationHours 24, got %d", cfg.JWTExpirationHours)
	}
	if cfg.LoginRateLimitPerMinute != 10 {
		t.Fatalf("expected default LoginRateLimitPerMinute 10, got %d", cfg.LoginRateLimitPerMinute)
	}
	if cfg.RedisRateLimitPrefix != "voyaj:rate_limit" {
		t.Fatalf("expected default rate-limit prefix, got %q", cfg.RedisRateLimitPrefix)
	}
	if cfg.FriendshipEventExchange != "friendship_events" {
		t.Fatalf("expected default friendship exchange, got %q", cfg.FriendshipEventExchange)
	}
}

func TestLoadConfig_FriendshipEventExchangeOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "FRIENDSHIP_EVENT_EXCHANGE", "voyaj.friendship_updates")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.FriendshipEventExchange != "voyaj.friendship_updates" {
		t.Fatalf("expected configured friendship exchange, got %q", cfg.FriendshipEventExchange)
	}
}

func TestLoadConfig_PortEnvOverridesServerPort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SERVER_PORT", "8080")
	setEnvWithCleanup(t, "PORT", "9090")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Fatalf("expected PORT to win, got %q", cfg.ServerPort)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
