package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for ptyspawn.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
}

// ServerConfig configures the websocket pty service.
type ServerConfig struct {
	Listen      string `mapstructure:"listen" yaml:"listen"`
	BasePath    string `mapstructure:"base" yaml:"base"`
	TokenHash   string `mapstructure:"token_hash" yaml:"token_hash"`
	MaxSessions int    `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// SessionConfig configures spawned pty sessions.
type SessionConfig struct {
	Shell string `mapstructure:"shell" yaml:"shell"`
	Term  string `mapstructure:"term" yaml:"term"`
	Cols  int    `mapstructure:"cols" yaml:"cols"`
	Rows  int    `mapstructure:"rows" yaml:"rows"`
}

// ClientConfig configures client defaults.
type ClientConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Token    string `mapstructure:"token" yaml:"token"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// Loader wraps Viper configuration loading for ptyspawn.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader initializes a Loader with standard defaults.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("PTYSPAWN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/ptyspawn")
	v.AddConfigPath("$HOME/.ptyspawn")

	return &Loader{v: v}
}

// Viper exposes the underlying Viper instance for flag binding and defaults.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = strings.TrimSpace(path)
}

// ReadInConfig reads configuration from file if available.
func (l *Loader) ReadInConfig() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads configuration and unmarshals it into a Config struct.
func (l *Loader) Load() (Config, error) {
	if err := l.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
