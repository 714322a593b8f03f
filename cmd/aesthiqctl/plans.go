package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/aesthiq-api/internal/repository/postgres"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	"github.com/jwalitptl/aesthiq-api/internal/service/plan"
)

func newSeedPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-plans",
		Short: "Insert the default subscription plans when none exist",
		RunE:  runWithEnv(runSeedPlans),
	}
}

func runSeedPlans(ctx context.Context, e *env, cmd *cobra.Command) error {
	base := postgres.NewBaseRepository(e.db)
	svc := plan.NewService(
		postgres.NewPlanRepository(base),
		event.NewService(postgres.NewOutboxRepository(base), e.logger),
		e.cfg.Stripe.Currency,
		e.logger,
	)

	added, err := svc.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seeded %d plans before failing: %w", added, err)
	}
	if added == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Plans already exist, nothing to do.")
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d plans.\n", added)
	return nil
}
