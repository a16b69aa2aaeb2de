package main

import (
	"fmt"
	"strings"
	"time"

	"kanban_board/internal/config"
	"kanban_board/internal/service"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var name string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for a board user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg := config.Load()
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET not set")
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}
			service.InitJWT(cfg.JWTSecret)

			token, err := service.GenerateJWT(name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "user name placed in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default TOKEN_TTL_HOURS)")
	return cmd
}
