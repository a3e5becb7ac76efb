package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != Version {
		t.Errorf("expected version %s, got %s", Version, cfg.Version)
	}
	if cfg.Export.Indent != 4 {
		t.Errorf("expected indent 4, got %d", cfg.Export.Indent)
	}
	if cfg.Export.Format != "json" {
		t.Errorf("expected format json, got %s", cfg.Export.Format)
	}
	if cfg.DatabasePath() != GlobalDBPath() {
		t.Errorf("expected global db path, got %s", cfg.DatabasePath())
	}
	if cfg.SchemaPath() != "" {
		t.Errorf("expected built-in schema, got %s", cfg.SchemaPath())
	}
}

func TestSaveAndLoad(t *testing.T) {
	// 임시 디렉토리 생성
	tmpDir, err := os.MkdirTemp("", "ikd-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := DefaultConfig()
	cfg.User = "lab-user"
	cfg.DBPath = filepath.Join(tmpDir, "sessions.db")
	cfg.Export.Format = "yaml"
	cfg.Export.Indent = 2

	if err := Save(tmpDir, cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	if !Has(tmpDir) {
		t.Fatalf("config file not created: %s", Path(tmpDir))
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.User != "lab-user" {
		t.Errorf("expected user lab-user, got %s", loaded.User)
	}
	if loaded.Export.Format != "yaml" || loaded.Export.Indent != 2 {
		t.Errorf("export settings not restored: %+v", loaded.Export)
	}
	if loaded.DatabasePath() != cfg.DBPath {
		t.Errorf("expected db path %s, got %s", cfg.DBPath, loaded.DatabasePath())
	}
}

func TestLoadFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	// 일부 필드만 지정
	if err := os.WriteFile(path, []byte("user: someone\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.User != "someone" {
		t.Errorf("expected user someone, got %s", cfg.User)
	}
	if cfg.Export.Indent != 4 || cfg.LogLevel != "info" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	cases := map[string]string{
		"format": "export:\n  format: xml\n",
		"indent": "export:\n  indent: 99\n",
		"level":  "log_level: loud\n",
		"syntax": "export: [\n",
	}
	for name, content := range cases {
		path := filepath.Join(tmpDir, name+".yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Export.Format = "xml"
	if err := Save(t.TempDir(), cfg); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got := ExpandHome("~/kits/types.yaml")
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.Join("kits", "types.yaml")) {
		t.Errorf("unexpected expansion: %s", got)
	}
	if ExpandHome("/abs/path") != "/abs/path" {
		t.Error("absolute path changed")
	}
}
