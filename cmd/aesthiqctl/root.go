package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/aesthiq-api/internal/config"
	"github.com/jwalitptl/aesthiq-api/internal/repository/postgres"
	"github.com/jwalitptl/aesthiq-api/pkg/logger"
)

// newRootCmd creates the aesthiqctl command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aesthiqctl",
		Short:         "Aesthiq administration tool",
		Long:          "aesthiqctl applies the database schema and bootstraps platform data.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newCreateSuperAdminCmd())
	root.AddCommand(newSeedPlansCmd())

	root.PersistentFlags().StringP("config", "c", "", "path to config file")

	return root
}

// env is what every subcommand needs once the config is loaded.
type env struct {
	cfg    *config.Config
	db     *sqlx.DB
	logger zerolog.Logger
}

func openEnv(cmd *cobra.Command) (*env, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}

	l := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console", Output: cmd.ErrOrStderr()})

	db, err := postgres.NewDB(cmd.Context(), postgres.DBConfig{
		DSN:          cfg.Database.DSN(),
		MaxOpenConns: 2,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: l}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

func runWithEnv(fn func(ctx context.Context, e *env, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialise: %w", err)
		}
		defer e.Close()
		return fn(cmd.Context(), e, cmd)
	}
}
