package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"ytquiz/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg)
		if err != nil {
			return err
		}
		if err := config.AutoMigrate(db); err != nil {
			return err
		}
		slog.Info("schema migrated", slog.String("driver", cfg.DBDriver))
		return nil
	},
}
