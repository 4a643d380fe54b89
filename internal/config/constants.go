package config

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = ".ptyspawn"
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = "config.yaml"
	// DefaultLogFileName is the default client log file name.
	DefaultLogFileName = "ptyspawn.log"

	// DefaultListenAddr is the default server listen address.
	DefaultListenAddr = "127.0.0.1:8462"
	// DefaultBasePath is the default HTTP base path.
	DefaultBasePath = "/v1"
	// DefaultClientEndpoint is the default client endpoint.
	DefaultClientEndpoint = "http://127.0.0.1:8462/v1"
	// DefaultMaxSessions caps concurrently served pty sessions.
	DefaultMaxSessions = 16
	// DefaultTerminalCols is the default terminal columns.
	DefaultTerminalCols = 80
	// DefaultTerminalRows is the default terminal rows.
	DefaultTerminalRows = 24
	// DefaultTerminalTerm is the default TERM for spawned sessions.
	DefaultTerminalTerm = "xterm-256color"
)
