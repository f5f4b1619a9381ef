package main

import (
	"context"
	"fmt"

	"taod/internal/config"
	"taod/internal/ingest"
	"taod/internal/logging"
	"taod/internal/repository"
	"taod/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	configDir string
	cfg       config.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "importer",
		Short: "importer loads traffic accident statistics into PostgreSQL",
		Long: `importer decodes the Shift_JIS main (本票) and supplementary (補充票) files
of the traffic accident dataset and stores them in a PostGIS database.

Configuration is read from app.env in --config-dir. Every key can be
overridden by an environment variable of the same name (DB_SOURCE,
LOG_LEVEL, LOG_FORMAT, IMPORT_TRIM).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configDir)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return logging.Setup(cfg.LogLevel, cfg.LogFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "configs", "directory containing app.env")

	rootCmd.AddCommand(getInsertCmd())
	rootCmd.AddCommand(getCitiesCmd())

	return rootCmd
}

// openImportService connects to the database and prepares the schema.
func openImportService(ctx context.Context) (*service.ImportService, *repository.Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := repository.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	decoder := ingest.NewDecoder(ingest.WithTrim(cfg.ImportTrim))
	return service.NewImportService(repo, decoder), repo, pool.Close, nil
}
