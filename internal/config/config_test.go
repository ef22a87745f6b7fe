package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Path != ".wikihop/graph.db" {
		t.Errorf("expected default database path .wikihop/graph.db, got %s", cfg.Database.Path)
	}

	if cfg.Server.Addr != ":8240" {
		t.Errorf("expected default addr :8240, got %s", cfg.Server.Addr)
	}

	if cfg.Server.RequestTimeoutSeconds != 30 {
		t.Errorf("expected request_timeout_seconds 30, got %d", cfg.Server.RequestTimeoutSeconds)
	}

	if !cfg.Server.AnalyticsEnabled() {
		t.Error("expected analytics enabled by default")
	}

	if cfg.Search.MaxPaths != 0 {
		t.Errorf("expected max_paths 0, got %d", cfg.Search.MaxPaths)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "empty database path",
			modify: func(c *Config) {
				c.Database.Path = ""
			},
			wantErr: true,
		},
		{
			name: "empty server addr",
			modify: func(c *Config) {
				c.Server.Addr = ""
			},
			wantErr: true,
		},
		{
			name: "zero request timeout",
			modify: func(c *Config) {
				c.Server.RequestTimeoutSeconds = 0
			},
			wantErr: true,
		},
		{
			name: "negative max paths",
			modify: func(c *Config) {
				c.Search.MaxPaths = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromPathMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.Addr != ":8240" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestLoadFromPathMergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("server:\n  addr: \":9000\"\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected addr :9000, got %s", cfg.Server.Addr)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Server.RequestTimeoutSeconds != 30 {
		t.Errorf("expected request_timeout_seconds 30, got %d", cfg.Server.RequestTimeoutSeconds)
	}
	if cfg.Database.Path != ".wikihop/graph.db" {
		t.Errorf("expected default database path, got %s", cfg.Database.Path)
	}
}

func TestLoadFromPathAnalyticsOff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("server:\n  analytics: false\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Server.AnalyticsEnabled() {
		t.Error("analytics: false in config file was ignored; got analytics enabled")
	}
	// The other server fields still pick up defaults.
	if cfg.Server.Addr != ":8240" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestLoadFromPathInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromPathRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("search:\n  max_paths: -5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected validation error for negative max_paths")
	}
}

func TestFindConfigDirWalksUp(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := FindConfigDir(nested)
	if err != nil {
		t.Fatalf("FindConfigDir: %v", err)
	}
	if found != configDir {
		t.Errorf("FindConfigDir = %s, want %s", found, configDir)
	}
}

func TestFindConfigDirNotFound(t *testing.T) {
	if _, err := FindConfigDir(t.TempDir()); err == nil {
		t.Error("expected ErrConfigNotFound in empty tree")
	}
}

func TestEnsureConfigDirCreates(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureConfigDir(root)
	if err != nil {
		t.Fatalf("EnsureConfigDir: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}

	// Second call on an existing directory succeeds.
	again, err := EnsureConfigDir(root)
	if err != nil {
		t.Fatalf("EnsureConfigDir (existing): %v", err)
	}
	if again != dir {
		t.Errorf("EnsureConfigDir = %s, want %s", again, dir)
	}
}

func TestSaveDefault(t *testing.T) {
	root := t.TempDir()

	path, err := SaveDefault(root)
	if err != nil {
		t.Fatalf("SaveDefault: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("saved default config should validate: %v", err)
	}

	// Writing over an existing config file is refused.
	if _, err := SaveDefault(root); err == nil {
		t.Error("expected error when config file already exists")
	}
}
