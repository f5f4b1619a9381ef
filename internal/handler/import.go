package handler

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"taod/internal/ingest"
	"taod/internal/models"
	"taod/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ImportHandler handles import requests
type ImportHandler struct {
	service ImportService
	baseDir string
}

// ImportService interface for dependency injection
type ImportService interface {
	Import(context.Context, models.ImportRequest) (*models.ImportSummary, error)
}

// NewImportHandler creates a new import handler. When baseDir is not empty,
// requested files must lie below it and relative paths are resolved against it.
// A relative baseDir is taken from the working directory at construction.
func NewImportHandler(svc ImportService, baseDir string) *ImportHandler {
	if baseDir != "" {
		if abs, err := filepath.Abs(baseDir); err == nil {
			baseDir = abs
		}
	}
	return &ImportHandler{service: svc, baseDir: baseDir}
}

// Import handles POST /imports requests
func (h *ImportHandler) Import(c *gin.Context) {
	var req models.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.MainFile == "" || req.SupportFile == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields 'main_file' and 'support_file'"})
		return
	}

	var ok bool
	if req.MainFile, ok = h.resolve(req.MainFile); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "main_file is outside the import directory"})
		return
	}
	if req.SupportFile, ok = h.resolve(req.SupportFile); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "support_file is outside the import directory"})
		return
	}

	summary, err := h.service.Import(c.Request.Context(), req)
	if err != nil {
		var derr *ingest.DecodeError
		switch {
		case errors.As(err, &derr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  err.Error(),
				"kind":   derr.Kind.String(),
				"row":    derr.Row,
				"column": derr.Column,
				"field":  derr.Field,
				"value":  derr.Value,
				"key":    derr.Key,
			})
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("import failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	status := http.StatusCreated
	if summary.DryRun {
		status = http.StatusOK
	}
	c.JSON(status, summary)
}

func (h *ImportHandler) resolve(path string) (string, bool) {
	if h.baseDir == "" {
		return path, true
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.baseDir, path)
	}
	rel, err := filepath.Rel(h.baseDir, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(h.baseDir, rel), true
}

// Health handles GET /health requests
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
