package main

import (
	"context"
	"fmt"

	"kanban_board/internal/config"
	"kanban_board/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "List or apply the schema migrations",
		Long: `Lists the embedded migrations. With --apply each one is executed
against DATABASE_URL in file name order. Migrations are idempotent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := migrations.All()
			if err != nil {
				return fmt.Errorf("read migrations: %w", err)
			}
			if !apply {
				for _, m := range ms {
					fmt.Fprintln(cmd.OutOrStdout(), m.Name)
				}
				return nil
			}

			cfg := config.Load()
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL not set")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			for _, m := range ms {
				if _, err := pool.Exec(ctx, m.SQL); err != nil {
					return fmt.Errorf("failed to apply %s: %w", m.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", m.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "apply migrations instead of listing them")
	return cmd
}
