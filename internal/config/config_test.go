package config

import (
	"errors"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "crowdup_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("SIGNING_SECRET", "testsecret123456789012345678901234")
	t.Setenv("PUBLIC_APP_URL", "https://crowdup.example/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.crowdup.example, https://crowdup.example ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.Auth.SigningSecret == "" {
		t.Fatalf("signing secret not loaded")
	}
	origins := cfg.Origins()
	if len(origins) != 2 || origins[0] != "https://crowdup.example" || origins[1] != "https://admin.crowdup.example" {
		t.Fatalf("unexpected origins: %v", origins)
	}
	if got := cfg.AuthPrefix(); got != "/api/auth" {
		t.Fatalf("AuthPrefix() = %q", got)
	}
	if !cfg.Auth.RevokeSessionsOnPasswordChange {
		t.Fatalf("expected revoke-on-password-change default to be true")
	}
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("SERVER_ENVIRONMENT", "production")
	t.Setenv("SIGNING_SECRET", "")

	_, err := LoadConfig()
	if !errors.Is(err, ErrMissingSigningSecret) {
		t.Fatalf("expected ErrMissingSigningSecret, got %v", err)
	}
}

func TestLoadConfig_DevelopmentAllowsMissingSecret(t *testing.T) {
	t.Setenv("SERVER_ENVIRONMENT", "development")
	t.Setenv("SIGNING_SECRET", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Production() {
		t.Fatalf("development config reported production")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("SplitList = %v", got)
	}
	if SplitList("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
