package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != defaultAddr {
		t.Errorf("addr = %q, want %q", cfg.Addr, defaultAddr)
	}
	if cfg.DBPath != "" {
		t.Errorf("db-path = %q, want in-memory", cfg.DBPath)
	}
	if !cfg.Seed {
		t.Error("seed should default to true")
	}
	if cfg.QueryTimeout != defaultQueryTimeout {
		t.Errorf("query-timeout = %s, want %s", cfg.QueryTimeout, defaultQueryTimeout)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "stub.yml")
	data := "addr: 0.0.0.0:9000\ndb-path: ~/data/inv.duckdb\nseed: false\nquery-timeout: 3s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASSETDESK_QUERY_TIMEOUT", "7s")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if want := filepath.Join(home, "data", "inv.duckdb"); cfg.DBPath != want {
		t.Errorf("db-path = %q, want %q", cfg.DBPath, want)
	}
	if cfg.Seed {
		t.Error("seed should be false from file")
	}
	if cfg.QueryTimeout != 7*time.Second {
		t.Errorf("query-timeout = %s, env should win", cfg.QueryTimeout)
	}
	if cfg.ConfigPath != path {
		t.Errorf("config path = %q", cfg.ConfigPath)
	}
}

func TestLoadConfig_RejectsBadTimeout(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ASSETDESK_QUERY_TIMEOUT", "0s")

	if _, err := loadConfig(""); err == nil {
		t.Fatal("expected an error for a zero query timeout")
	}
}
