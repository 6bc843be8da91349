package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Port)
	}
	if cfg.UpstreamURL != "http://localhost:3000" {
		t.Errorf("default upstream = %q", cfg.UpstreamURL)
	}
	if cfg.RoleCacheTTL != 0 {
		t.Errorf("default role cache TTL = %v, want 0", cfg.RoleCacheTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STUDIOGATE_PORT", "9090")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("STUDIOGATE_ROLE_CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.SupabaseURL != "https://proj.supabase.co" {
		t.Errorf("supabase url = %q", cfg.SupabaseURL)
	}
	if cfg.RoleCacheTTL != 30*time.Second {
		t.Errorf("role cache TTL = %v, want 30s", cfg.RoleCacheTTL)
	}
}

func TestValidatePortRange(t *testing.T) {
	t.Setenv("STUDIOGATE_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestEnvDurationFallback(t *testing.T) {
	t.Setenv("TEST_DUR_BAD", "not-a-duration")
	if d := envDuration("TEST_DUR_BAD", 5*time.Second); d != 5*time.Second {
		t.Errorf("envDuration fallback = %v, want 5s", d)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !envBool("TEST_BOOL", false) {
		t.Error("envBool should parse true")
	}
	if envBool("TEST_BOOL_MISSING", false) {
		t.Error("envBool should fall back to default")
	}
}
