// Package config loads ikd settings from .ikd/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version is written into newly saved config files
const Version = "1"

// Config represents .ikd/config.yaml
type Config struct {
	Version string `yaml:"version"`
	// KitTypesPath points at a kit type schema file; empty uses the built-in one
	KitTypesPath string `yaml:"kit_types_path,omitempty"`
	// DBPath overrides ~/.ikd/ikd.db
	DBPath   string       `yaml:"db_path,omitempty"`
	LogLevel string       `yaml:"log_level"`
	User     string       `yaml:"user,omitempty"`
	Export   ExportConfig `yaml:"export"`
}

// ExportConfig holds export defaults
type ExportConfig struct {
	Indent int    `yaml:"indent"`
	Format string `yaml:"format"` // json | yaml
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		Version:  Version,
		LogLevel: "info",
		Export: ExportConfig{
			Indent: 4,
			Format: "json",
		},
	}
}

// LoadFile reads a config file over the defaults
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the project config, then the global one, then falls back to defaults
func Load(projectRoot string) (*Config, error) {
	for _, path := range []string{Path(projectRoot), GlobalConfigPath()} {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return DefaultConfig(), nil
}

// Save writes cfg to <root>/.ikd/config.yaml
func Save(projectRoot string, cfg *Config) error {
	return SaveFile(Path(projectRoot), cfg)
}

// SaveFile writes cfg to path
func SaveFile(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 디렉토리 생성
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("설정 직렬화 실패: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("설정 파일 저장 실패: %w", err)
	}

	return nil
}

// Has checks if the project config exists
func Has(projectRoot string) bool {
	_, err := os.Stat(Path(projectRoot))
	return err == nil
}

// Validate rejects values the rest of the tool cannot use
func (c *Config) Validate() error {
	switch c.Export.Format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("export.format은 json 또는 yaml이어야 합니다: %q", c.Export.Format)
	}
	if c.Export.Indent < 0 || c.Export.Indent > 16 {
		return fmt.Errorf("export.indent 범위 오류: %d", c.Export.Indent)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level 값 오류: %q", c.LogLevel)
	}
	return nil
}

// DatabasePath returns the configured database path or the global default
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return ExpandHome(c.DBPath)
	}
	return GlobalDBPath()
}

// SchemaPath returns the configured kit type schema path, "" for the built-in one
func (c *Config) SchemaPath() string {
	return ExpandHome(c.KitTypesPath)
}
