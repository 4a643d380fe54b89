package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// NewTokenCommand builds the token hash generator. The printed hash
// goes into server.token_hash; clients send the plain secret.
func NewTokenCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "token <secret>",
		Short: "Print the bcrypt hash of a bearer token secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return err
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost factor")

	return cmd
}
