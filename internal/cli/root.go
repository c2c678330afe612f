package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context so
// live sessions can leave their room cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "classbattle",
		Short:        "Classroom battles, All-for-All rounds and rewards from the terminal",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(
		NewLoginCmd(&configPath),
		NewLogoutCmd(&configPath),
		NewWhoamiCmd(&configPath),
		NewProfileCmd(&configPath),
		NewBattleCmd(&configPath),
		NewAllForAllCmd(&configPath),
		NewBanksCmd(&configPath),
		NewSubjectsCmd(&configPath),
		NewPointsCmd(&configPath),
		NewRewardsCmd(&configPath),
		NewAchievementsCmd(&configPath),
		NewMigrateCmd(&configPath),
	)
	return cmd
}
