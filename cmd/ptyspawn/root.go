package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"pkt.systems/ptyspawn/internal/config"
	"pkt.systems/ptyspawn/internal/session"
)

// NewRootCommand builds the root CLI command. Without a subcommand it
// runs the given command (default: the login shell) in a fresh pty.
func NewRootCommand(loader *config.Loader) *cobra.Command {
	var configFile string
	var shellPath string
	var termName string
	var cols int
	var rows int
	var logFile string

	v := loader.Viper()
	v.SetDefault("session.term", config.DefaultTerminalTerm)
	v.SetDefault("client.log_file", config.DefaultLogPath())

	cmd := &cobra.Command{
		Use:   "ptyspawn [flags] [--] [command [args...]]",
		Short: "Run commands attached to a fresh pseudo-terminal",
		Args:  cobra.ArbitraryArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if configFile != "" {
				loader.SetConfigFile(configFile)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}

			shellValue := shellPath
			if !cmd.Flags().Changed("shell") {
				shellValue = cfg.Session.Shell
			}
			termValue := termName
			if !cmd.Flags().Changed("term") {
				termValue = cfg.Session.Term
			}
			logPath := logFile
			if !cmd.Flags().Changed("log-file") {
				logPath = cfg.Client.LogFile
			}
			// Size flags force a fixed pty size; otherwise the runner
			// inherits the local terminal dimensions.
			colsValue, rowsValue := 0, 0
			if cmd.Flags().Changed("cols") {
				colsValue = cols
			}
			if cmd.Flags().Changed("rows") {
				rowsValue = rows
			}

			logger, closer, err := openSessionLogger(logPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()
			logger = logger.With("component", "session")
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)

			return session.New(session.Options{
				Command: args,
				Shell:   shellValue,
				Term:    termValue,
				Cols:    colsValue,
				Rows:    rowsValue,
				Logger:  logger,
			}).Run(ctx)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	flags := cmd.Flags()
	flags.StringVar(&shellPath, "shell", "", "override login shell path")
	flags.StringVar(&termName, "term", config.DefaultTerminalTerm, "TERM for the pty session")
	flags.IntVar(&cols, "cols", config.DefaultTerminalCols, "fixed columns (default: inherit)")
	flags.IntVar(&rows, "rows", config.DefaultTerminalRows, "fixed rows (default: inherit)")
	flags.StringVar(&logFile, "log-file", config.DefaultLogPath(), "session log file")

	cmd.AddCommand(NewServeCommand(loader))
	cmd.AddCommand(NewSessionsCommand(loader))
	cmd.AddCommand(NewTokenCommand())
	cmd.AddCommand(NewBootstrapCommand())

	return cmd
}
