// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("TOKEN_SALT", "test-salt")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.TokenTTL != 5*time.Minute {
		t.Errorf("expected default token TTL 5m, got %s", cfg.TokenTTL)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("expected default cache TTL 1m, got %s", cfg.CacheTTL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "postgres://test", "-token-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	os.Clearenv()

	_, err := ParseFlags([]string{"-d", "postgres://test"})
	if err == nil {
		t.Error("expected error when TOKEN_SALT is missing")
	}
}

func TestParseFlags_TTLValues(t *testing.T) {
	os.Clearenv()

	cfg, err := ParseFlags([]string{"-d", "postgres://test", "-token-salt", "s1", "-token-ttl", "90s", "-cache-ttl", "30s"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TokenTTL != 90*time.Second {
		t.Errorf("expected token TTL 90s, got %s", cfg.TokenTTL)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("expected cache TTL 30s, got %s", cfg.CacheTTL)
	}

	_, err = ParseFlags([]string{"-d", "postgres://test", "-token-salt", "s1", "-token-ttl", "-5m"})
	if err == nil {
		t.Error("expected error for non-positive token TTL")
	}
}
