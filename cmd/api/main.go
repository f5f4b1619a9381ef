package main

import (
	"context"

	"taod/internal/config"
	"taod/internal/handler"
	"taod/internal/ingest"
	"taod/internal/logging"
	"taod/internal/metrics"
	"taod/internal/repository"
	"taod/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	if err := logging.Setup(config.LogLevel, config.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("cannot set up logging")
	}

	// Database connection
	conn, err := pgxpool.New(context.Background(), config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	// Initialize layers
	repo := repository.NewRepository(conn)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("cannot create schema")
	}

	decoder := ingest.NewDecoder(ingest.WithTrim(config.ImportTrim))
	importService := service.NewImportService(repo, decoder).
		WithMetrics(metrics.New(prometheus.DefaultRegisterer))
	importHandler := handler.NewImportHandler(importService, config.ImportBaseDir)
	if config.ImportBaseDir == "" {
		log.Warn().Msg("IMPORT_BASE_DIR is empty, POST /imports can read any file the server can open")
	}

	r := gin.Default()

	r.GET("/health", handler.Health)
	r.POST("/imports", importHandler.Import)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("address", config.ServerAddress).Msg("starting server")
	if err := r.Run(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
