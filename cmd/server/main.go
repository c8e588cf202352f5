package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cathshield/internal/config"
	"cathshield/internal/platform/database"
	"cathshield/internal/platform/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cathshield",
		Short: "Catheter line-safety API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			return database.Migrate(cfg.MigrationsPath, cfg.DatabaseURL, log)
		},
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "cathshield")
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
