package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/prettyx"

	"pkt.systems/ptyspawn/internal/client"
	"pkt.systems/ptyspawn/internal/config"
)

// NewSessionsCommand builds the sessions management command.
func NewSessionsCommand(loader *config.Loader) *cobra.Command {
	var endpoint string
	var token string

	v := loader.Viper()
	v.SetDefault("client.endpoint", config.DefaultClientEndpoint)

	newClient := func(cmd *cobra.Command) (*client.Client, error) {
		cfg, err := loader.Load()
		if err != nil {
			return nil, err
		}
		endpointValue := endpoint
		if !cmd.Flags().Changed("endpoint") {
			endpointValue = cfg.Client.Endpoint
		}
		if endpointValue == "" {
			return nil, fmt.Errorf("endpoint is required")
		}
		tokenValue := token
		if !cmd.Flags().Changed("token") {
			tokenValue = cfg.Client.Token
		}
		return &client.Client{Endpoint: endpointValue, Token: tokenValue}, nil
	}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and manage sessions on a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			sessions, err := c.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.Marshal(sessions)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}

	killCmd := &cobra.Command{
		Use:   "kill <session-id>",
		Short: "Terminate a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			return c.KillSession(cmd.Context(), args[0])
		},
	}
	cmd.AddCommand(killCmd)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&endpoint, "endpoint", "e", config.DefaultClientEndpoint, "server endpoint (http base URL)")
	flags.StringVar(&token, "token", "", "bearer token for authenticated requests")

	return cmd
}
