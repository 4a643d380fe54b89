package config

// DefaultConfig returns the default configuration values.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Listen:      DefaultListenAddr,
			BasePath:    DefaultBasePath,
			MaxSessions: DefaultMaxSessions,
		},
		Session: SessionConfig{
			Term: DefaultTerminalTerm,
			Cols: DefaultTerminalCols,
			Rows: DefaultTerminalRows,
		},
		Client: ClientConfig{
			Endpoint: DefaultClientEndpoint,
			LogFile:  DefaultLogPath(),
		},
	}
}
