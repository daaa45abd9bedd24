package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.HTTPAddr != ":8080" {
		t.Errorf("http_addr: got %q", cfg.App.HTTPAddr)
	}
	if cfg.App.DefaultPageSize != 10 || cfg.App.MaxPageSize != 100 {
		t.Errorf("page sizes: got %d/%d", cfg.App.DefaultPageSize, cfg.App.MaxPageSize)
	}
	if cfg.App.RecoverWindow != time.Minute || cfg.App.RecoverLimit != 3 {
		t.Errorf("recover: got %v/%d", cfg.App.RecoverWindow, cfg.App.RecoverLimit)
	}
	if cfg.Security.TokenTTL != 7*24*time.Hour {
		t.Errorf("token_ttl: got %v", cfg.Security.TokenTTL)
	}
}

func TestLoad_FileWithDurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"app": {
			"http_addr": ":9000",
			"recover_window": "30s",
			"recover_limit": 5
		},
		"security": {
			"jwt_secret": "from-file",
			"token_ttl": "12h"
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.HTTPAddr != ":9000" {
		t.Errorf("http_addr: got %q", cfg.App.HTTPAddr)
	}
	if cfg.App.RecoverWindow != 30*time.Second || cfg.App.RecoverLimit != 5 {
		t.Errorf("recover: got %v/%d", cfg.App.RecoverWindow, cfg.App.RecoverLimit)
	}
	if cfg.Security.JWTSecret != "from-file" || cfg.Security.TokenTTL != 12*time.Hour {
		t.Errorf("security: got %q/%v", cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	}

	// 文件未覆盖的字段仍取默认值
	if cfg.App.DefaultPageSize != 10 {
		t.Errorf("default_page_size: got %d", cfg.App.DefaultPageSize)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"app":{"recover_window":"soon"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_HTTP_ADDR", ":7777")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("APP_TOKEN_TTL", "1h")
	t.Setenv("DB_DSN", "user:pass@tcp(db:3306)/tasknest?parseTime=true")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.HTTPAddr != ":7777" {
		t.Errorf("http_addr: got %q", cfg.App.HTTPAddr)
	}
	if cfg.Security.JWTSecret != "from-env" || cfg.Security.TokenTTL != time.Hour {
		t.Errorf("security: got %q/%v", cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	}
	if cfg.MySQL.DSN != "user:pass@tcp(db:3306)/tasknest?parseTime=true" {
		t.Errorf("dsn: got %q", cfg.MySQL.DSN)
	}
	if cfg.Redis.Addr != "cache:6379" {
		t.Errorf("redis addr: got %q", cfg.Redis.Addr)
	}
}

func TestLoad_DBPartsComposeDSN(t *testing.T) {
	t.Setenv("DB_HOST", "mysql.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USER", "svc")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("DB_NAME", "tasks")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	parsed := parseMySQLDSN(cfg.MySQL.DSN)
	if parsed.Addr != "mysql.internal:3307" {
		t.Errorf("addr: got %q", parsed.Addr)
	}
	if parsed.User != "svc" || parsed.Passwd != "hunter2" || parsed.DBName != "tasks" {
		t.Errorf("credentials: got %q/%q/%q", parsed.User, parsed.Passwd, parsed.DBName)
	}
}
