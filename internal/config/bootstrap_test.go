package config

import (
	"os"
	"strings"
	"testing"
)

func TestWriteDefaultCreatesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := WriteDefault(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if path != DefaultConfigPath() {
		t.Fatalf("path = %q, want %q", path, DefaultConfigPath())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "listen: "+DefaultListenAddr) {
		t.Fatalf("config missing listen address:\n%s", data)
	}

	loader := NewLoader()
	loader.SetConfigFile(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if cfg.Server.Listen != DefaultListenAddr {
		t.Fatalf("Listen = %q, want %q", cfg.Server.Listen, DefaultListenAddr)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if _, err := WriteDefault(DefaultConfig(), nil); err != nil {
		t.Fatalf("first WriteDefault: %v", err)
	}
	if _, err := WriteDefault(DefaultConfig(), nil); err == nil {
		t.Fatalf("expected error when config exists")
	}
}
