package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/selfgo/internal/config"
	"github.com/nextlevelbuilder/selfgo/internal/store/sqlite"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Run: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				slog.Error("failed to load config", "error", err)
				os.Exit(1)
			}
			dbPath := config.ExpandHome(cfg.Storage.Path)
			db, err := sqlite.Open(dbPath)
			if err != nil {
				slog.Error("migration failed", "path", dbPath, "error", err)
				os.Exit(1)
			}
			defer db.Close()
			fmt.Printf("database at %s is up to date\n", dbPath)
		},
	}
}
