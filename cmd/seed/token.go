package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-curriculum/internal/platform/auth"
	"github.com/p-n-ai/pai-curriculum/internal/platform/config"
)

func newTokenCmd(cfg *config.Config) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token SUBJECT",
		Short: "Issue an operator token for the admin API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL()
			}
			tok, err := auth.IssueOperatorToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default LEARN_AUTH_OPERATOR_TOKEN_TTL)")
	return cmd
}
