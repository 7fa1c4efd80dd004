package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFile_DefaultsAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
db:
  host: db.internal
  name: homeplan
jwt:
  secret: from-file
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PLANS_FILE", "/etc/homeplan/plans.yaml")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.DB.Host != "db.internal" || cfg.DB.Name != "homeplan" {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.DB.Port != 5432 {
		t.Errorf("default port = %d, want 5432", cfg.DB.Port)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("JWT secret = %q, want env override", cfg.JWT.Secret)
	}
	if cfg.Plans.File != "/etc/homeplan/plans.yaml" {
		t.Errorf("plans file = %q", cfg.Plans.File)
	}
	if cfg.Outbox.Interval != time.Second {
		t.Errorf("outbox interval = %v, want 1s", cfg.Outbox.Interval)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() on a missing file should fail")
	}
}

func TestLoadDir_LayersAndSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: localhost
  user: app
  password: ${DB_PASS}
server:
  port: ":8080"
outbox:
  interval: 2s
`)
	writeFile(t, dir, "production.yaml", `
db:
  host: prod-db
`)
	writeFile(t, dir, "secrets.env", `
# comment
DB_PASS="s3cret"
`)

	cfg, err := LoadDir(dir, "production")
	if err != nil {
		t.Fatalf("LoadDir() failed: %v", err)
	}
	if cfg.DB.Host != "prod-db" {
		t.Errorf("env overlay not applied: host = %q", cfg.DB.Host)
	}
	if cfg.DB.User != "app" {
		t.Errorf("base value lost in merge: user = %q", cfg.DB.User)
	}
	if cfg.DB.Password != "s3cret" {
		t.Errorf("secret not substituted: password = %q", cfg.DB.Password)
	}
	if cfg.Outbox.Interval != 2*time.Second {
		t.Errorf("outbox interval = %v, want 2s", cfg.Outbox.Interval)
	}
}
