package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigUsesConstants(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()

	if cfg.Server.Listen != DefaultListenAddr {
		t.Fatalf("Listen = %q, want %q", cfg.Server.Listen, DefaultListenAddr)
	}
	if cfg.Server.BasePath != DefaultBasePath {
		t.Fatalf("BasePath = %q, want %q", cfg.Server.BasePath, DefaultBasePath)
	}
	if cfg.Server.MaxSessions != DefaultMaxSessions {
		t.Fatalf("MaxSessions = %d, want %d", cfg.Server.MaxSessions, DefaultMaxSessions)
	}
	if cfg.Session.Term != DefaultTerminalTerm {
		t.Fatalf("Session.Term = %q, want %q", cfg.Session.Term, DefaultTerminalTerm)
	}
	if cfg.Session.Cols != DefaultTerminalCols || cfg.Session.Rows != DefaultTerminalRows {
		t.Fatalf("Session size = %dx%d, want %dx%d",
			cfg.Session.Cols, cfg.Session.Rows, DefaultTerminalCols, DefaultTerminalRows)
	}
	if cfg.Client.Endpoint != DefaultClientEndpoint {
		t.Fatalf("Client.Endpoint = %q, want %q", cfg.Client.Endpoint, DefaultClientEndpoint)
	}
	if cfg.Client.LogFile != DefaultLogPath() {
		t.Fatalf("Client.LogFile = %q, want %q", cfg.Client.LogFile, DefaultLogPath())
	}
}

func TestLoaderReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("server:\n  listen: 127.0.0.1:9000\nsession:\n  shell: /bin/bash\n  cols: 132\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loader := NewLoader()
	loader.SetConfigFile(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:9000" {
		t.Fatalf("Listen = %q", cfg.Server.Listen)
	}
	if cfg.Session.Shell != "/bin/bash" {
		t.Fatalf("Shell = %q", cfg.Session.Shell)
	}
	if cfg.Session.Cols != 132 {
		t.Fatalf("Cols = %d", cfg.Session.Cols)
	}
}

func TestLoaderEnvOverridesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PTYSPAWN_SERVER_LISTEN", "127.0.0.1:9999")

	loader := NewLoader()
	// Env lookup during Unmarshal only covers registered keys.
	loader.Viper().SetDefault("server.listen", DefaultListenAddr)

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:9999" {
		t.Fatalf("Listen = %q, want env override", cfg.Server.Listen)
	}
}

func TestLoaderMissingFileIsNotFatal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	loader := NewLoader()
	if _, err := loader.Load(); err != nil {
		t.Fatalf("Load without config file: %v", err)
	}
}

func TestDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	expectedDir := filepath.Join(home, DefaultConfigDirName)
	if got := DefaultConfigDir(); got != expectedDir {
		t.Fatalf("DefaultConfigDir() = %q, want %q", got, expectedDir)
	}
	expectedConfig := filepath.Join(expectedDir, DefaultConfigFileName)
	if got := DefaultConfigPath(); got != expectedConfig {
		t.Fatalf("DefaultConfigPath() = %q, want %q", got, expectedConfig)
	}
	expectedLog := filepath.Join(expectedDir, DefaultLogFileName)
	if got := DefaultLogPath(); got != expectedLog {
		t.Fatalf("DefaultLogPath() = %q, want %q", got, expectedLog)
	}
}
