package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "3000" || cfg.PixelsPerFoot != 20 || cfg.SnapPreset != "normal" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("session ttl = %v", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SNAP_PRESET=loose\nPIXELS_PER_FOOT=40\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PIXELS_PER_FOOT", "10")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	// Setenv registers the cleanup that undoes what godotenv writes.
	t.Setenv("SNAP_PRESET", "")
	os.Unsetenv("SNAP_PRESET")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnapPreset != "loose" {
		t.Fatalf(".env value not applied: %q", cfg.SnapPreset)
	}
	if cfg.PixelsPerFoot != 10 {
		t.Fatalf("environment should win over .env, got %v", cfg.PixelsPerFoot)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PIXELS_PER_FOOT":   "0",
		"CLOSURE_TOLERANCE": "-1",
		"READ_TIMEOUT":      "soon",
		"SESSION_TTL":       "0s",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Fatalf("expected an error for %s=%s", key, val)
			}
		})
	}
}
