package api

import (
	"errors"
	"net/http"
	"path/filepath"

	"product_importer/internal/importer"
	"product_importer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the import admin API.
type Handler struct {
	svc     *importer.Service
	dataDir string
}

// NewHandler creates a new handler.
func NewHandler(svc *importer.Service, dataDir string) *Handler {
	return &Handler{svc: svc, dataDir: dataDir}
}

// ListVendors handles GET /api/vendors
func (h *Handler) ListVendors(c *gin.Context) {
	registry := h.svc.Registry()

	type vendorInfo struct {
		Key    string `json:"key"`
		Name   string `json:"name"`
		Source string `json:"source"`
	}

	vendors := make([]vendorInfo, 0)
	for _, key := range registry.Keys() {
		cfg := registry.Get(key)
		vendors = append(vendors, vendorInfo{Key: cfg.Key, Name: cfg.Name, Source: cfg.Source})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(vendors),
		"vendors": vendors,
	})
}

// RunImport handles POST /api/import/run
func (h *Handler) RunImport(c *gin.Context) {
	var req struct {
		Vendor string `json:"vendor" binding:"required"`
		Offset int    `json:"offset"`
		Limit  int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.svc.RunImport(c.Request.Context(), req.Vendor, req.Offset, req.Limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, importer.ErrUnknownVendor) {
			status = http.StatusNotFound
		}
		logger.Error("Import failed: " + err.Error())
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// TestProduct handles POST /api/import/test
func (h *Handler) TestProduct(c *gin.Context) {
	var req struct {
		Vendor   string `json:"vendor" binding:"required"`
		Identity string `json:"identity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report, err := h.svc.TestSingleProduct(c.Request.Context(), req.Vendor, req.Identity)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, importer.ErrUnknownVendor) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// PreviewCSV handles POST /api/csv/preview
func (h *Handler) PreviewCSV(c *gin.Context) {
	var req struct {
		File string `json:"file" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	preview, err := importer.PreviewCSV(h.csvPath(req.File))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, preview)
}

// ProcessCSVBatch handles POST /api/csv/process. The client drives a polling
// loop: it keeps re-posting with an advanced offset while "continue" is
// true, so a long import never blocks one request.
func (h *Handler) ProcessCSVBatch(c *gin.Context) {
	var req struct {
		File      string `json:"file" binding:"required"`
		Vendor    string `json:"vendor" binding:"required"`
		Offset    int    `json:"offset"`
		BatchSize int    `json:"batch_size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	cfg := h.svc.Registry().Get(req.Vendor)
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown vendor: " + req.Vendor})
		return
	}

	result, err := h.svc.ProcessCSVBatch(c.Request.Context(), h.csvPath(req.File), cfg, req.Offset, req.BatchSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Health handles GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// csvPath confines client-supplied file names to the data directory.
func (h *Handler) csvPath(name string) string {
	return filepath.Join(h.dataDir, filepath.Base(name))
}
