package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DefaultServer != "http://localhost:8000" {
		t.Errorf("DefaultServer = %q, want %q", cfg.DefaultServer, "http://localhost:8000")
	}
	if cfg.DefaultOutput != "table" {
		t.Errorf("DefaultOutput = %q, want %q", cfg.DefaultOutput, "table")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.Servers == nil {
		t.Error("Servers should not be nil")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if !strings.HasSuffix(path, filepath.Join(".pixmesh", "cli.yaml")) {
		t.Errorf("Path = %q, should end with .pixmesh/cli.yaml", path)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load should not error for nonexistent file: %v", err)
	}
	if cfg.DefaultServer != Default().DefaultServer {
		t.Error("Should return default config for nonexistent file")
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := `
default_output: json
timeout: 5s
servers:
  studio: http://10.0.0.5:8000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultOutput != "json" {
		t.Errorf("DefaultOutput = %q, want json", cfg.DefaultOutput)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.DefaultServer != "http://localhost:8000" {
		t.Errorf("DefaultServer = %q, want default kept", cfg.DefaultServer)
	}
	if cfg.Resolve("studio") != "http://10.0.0.5:8000" {
		t.Errorf("Resolve(studio) = %q", cfg.Resolve("studio"))
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("servers: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail for malformed YAML")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cli.yaml")
	cfg := Default()
	cfg.DefaultServer = "http://board.lan:8000"
	cfg.Servers["home"] = "http://192.168.1.2:8000"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %o, want 600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultServer != cfg.DefaultServer || loaded.Servers["home"] != cfg.Servers["home"] {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Servers["lab"] = "http://lab:8000"

	tests := []struct {
		in, want string
	}{
		{"", "http://localhost:8000"},
		{"lab", "http://lab:8000"},
		{"other:9000", "other:9000"},
	}
	for _, tt := range tests {
		if got := cfg.Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
