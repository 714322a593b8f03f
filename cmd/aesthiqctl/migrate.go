package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/aesthiq-api/internal/repository/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE:  runWithEnv(runMigrate),
	}
}

func runMigrate(ctx context.Context, e *env, cmd *cobra.Command) error {
	if err := postgres.Migrate(ctx, e.db); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Schema applied.")
	return nil
}
