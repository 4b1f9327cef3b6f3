package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "dev" || !cfg.App.IsDev() {
		t.Fatalf("expected dev environment, got %q", cfg.App.Env)
	}

	if cfg.API.BaseURL != "http://localhost:8000/auth/" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}

	if cfg.API.Timeout != 0 {
		t.Fatalf("expected zero timeout default, got %v", cfg.API.Timeout)
	}

	if cfg.Storage.Path != "storefront.db" {
		t.Fatalf("unexpected storage path %q", cfg.Storage.Path)
	}
}

func TestLoad_TimeoutOverride(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_API_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.API.Timeout)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("STOREFRONT_API_BASE_URL"); err != nil {
		t.Fatalf("failed to unset base url: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing base url to return an error")
	}
}

func TestLoad_RelativeBaseURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_API_BASE_URL", "/auth/")

	if _, err := Load(); err == nil {
		t.Fatal("expected relative base url to be rejected")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("STOREFRONT_API_BASE_URL", "http://localhost:8000/auth/")
}
