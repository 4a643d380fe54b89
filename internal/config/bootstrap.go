package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"pkt.systems/pslog"
)

// WriteDefault writes the configuration to the default path, refusing
// to overwrite an existing file. Returns the written path.
func WriteDefault(cfg Config, logger pslog.Logger) (string, error) {
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}

	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists at %s", path)
	} else if !os.IsNotExist(err) {
		return "", err
	}

	if err := os.MkdirAll(DefaultConfigDir(), 0o700); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	logger.Info("wrote config", "path", path)
	return path, nil
}
