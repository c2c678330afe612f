package cli

import (
	"context"
	"fmt"

	"classbattle-client/internal/infra/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMigrateCmd applies the question bank migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the question bank tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if rt.cfg.Postgres.URL == "" {
					return fmt.Errorf("postgres url not configured")
				}
				applied, err := postgres.Migrate(ctx, rt.cfg.Postgres.URL)
				if err != nil {
					return err
				}
				rt.logger.Info("migrations applied", zap.Strings("migrations", applied))
				fmt.Fprintf(cmd.OutOrStdout(), "%d migrations applied\n", len(applied))
				return nil
			})
		},
	}
}
