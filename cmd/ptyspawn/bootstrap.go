package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"pkt.systems/ptyspawn/internal/config"
)

// NewBootstrapCommand builds the bootstrap command.
func NewBootstrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := pslog.Ctx(cmd.Context()).With("component", "bootstrap")
			_, err := config.WriteDefault(config.DefaultConfig(), logger)
			return err
		},
	}

	return cmd
}
