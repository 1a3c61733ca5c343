package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"khosta-backend-go/internal/config"
	"khosta-backend-go/internal/db"
	"khosta-backend-go/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending postgres migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StorageBackend != config.BackendPostgres {
			return fmt.Errorf("migrate needs STORAGE_BACKEND=postgres, got %q", cfg.StorageBackend)
		}
		database, err := db.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer database.Close()
		applied, err := migrations.Apply(database, migrations.Files())
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		if len(applied) == 0 {
			logger.Info("schema is up to date")
			return nil
		}
		for _, name := range applied {
			logger.Info("migration applied", zap.String("migration", name))
		}
		return nil
	},
}
