package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taod/internal/ingest"
	"taod/internal/metrics"
	"taod/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrInvalidRequest is returned when an import request is missing a file.
var ErrInvalidRequest = errors.New("invalid import request")

// ImportService runs the two-file import and stores the result.
type ImportService struct {
	repo    ImportRepository
	decoder *ingest.Decoder
	metrics *metrics.Metrics
}

// ImportRepository interface for dependency injection
type ImportRepository interface {
	CityCodes(ctx context.Context) (map[string]string, error)
	SaveCityCodes(ctx context.Context, codes map[string]string) error
	SaveImport(ctx context.Context, accidents []models.Accident, persons []models.InvolvedPerson) error
}

// NewImportService creates a new import service
func NewImportService(repo ImportRepository, decoder *ingest.Decoder) *ImportService {
	return &ImportService{repo: repo, decoder: decoder}
}

// WithMetrics makes s record import outcomes in m.
func (s *ImportService) WithMetrics(m *metrics.Metrics) *ImportService {
	s.metrics = m
	return s
}

// Import decodes the main and supplementary files of req and, unless it is a
// dry run, stores every record in one unit. No summary is returned on failure.
func (s *ImportService) Import(ctx context.Context, req models.ImportRequest) (*models.ImportSummary, error) {
	if req.MainFile == "" || req.SupportFile == "" {
		return nil, fmt.Errorf("service: main and support files are required: %w", ErrInvalidRequest)
	}

	started := time.Now()
	summary, err := s.importFiles(ctx, req)
	s.metrics.ObserveImport(importResult(summary, err), time.Since(started))
	return summary, err
}

func (s *ImportService) importFiles(ctx context.Context, req models.ImportRequest) (*models.ImportSummary, error) {
	cities, err := s.repo.CityCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load city codes: %w", err)
	}

	start := time.Now()
	batch, err := s.decoder.Decode(ctx, req.MainFile, req.SupportFile, cities)
	if err != nil {
		return nil, fmt.Errorf("service: failed to decode import files: %w", err)
	}
	s.metrics.AddDecoded(len(batch.Accidents), len(batch.InvolvedPersons), len(batch.Duplicates))
	log.Info().
		Str("main_file", req.MainFile).
		Str("support_file", req.SupportFile).
		Int("accidents", len(batch.Accidents)).
		Int("involved_persons", len(batch.InvolvedPersons)).
		Dur("duration", time.Since(start)).
		Msg("decoded import files")

	duplicates := make([]string, 0, len(batch.Duplicates))
	for _, key := range batch.Duplicates {
		log.Warn().Str("key", key.String()).Msg("duplicate accident key, last row wins")
		duplicates = append(duplicates, key.String())
	}

	summary := &models.ImportSummary{
		Accidents:       len(batch.Accidents),
		InvolvedPersons: len(batch.InvolvedPersons),
		DryRun:          req.DryRun,
	}
	if len(duplicates) > 0 {
		summary.DuplicateKeys = duplicates
	}

	if req.DryRun {
		return summary, nil
	}

	start = time.Now()
	if err := s.repo.SaveImport(ctx, batch.Accidents, batch.InvolvedPersons); err != nil {
		return nil, fmt.Errorf("service: failed to save import: %w", err)
	}
	log.Info().Dur("duration", time.Since(start)).Msg("stored import")

	return summary, nil
}

func importResult(summary *models.ImportSummary, err error) string {
	var derr *ingest.DecodeError
	switch {
	case errors.As(err, &derr):
		return metrics.ResultDecodeError
	case err != nil:
		return metrics.ResultError
	case summary.DryRun:
		return metrics.ResultDryRun
	default:
		return metrics.ResultStored
	}
}

// ImportCityCodes loads a municipality code table file into the store and
// returns the number of entries read.
func (s *ImportService) ImportCityCodes(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("service: city code file is required: %w", ErrInvalidRequest)
	}

	codes, err := s.decoder.ReadCityCodes(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("service: failed to decode city codes %s: %w", path, err)
	}

	if err := s.repo.SaveCityCodes(ctx, codes); err != nil {
		return 0, fmt.Errorf("service: failed to save city codes: %w", err)
	}

	return len(codes), nil
}
