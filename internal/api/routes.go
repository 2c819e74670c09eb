package api

import (
	"product_importer/internal/importer"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all admin API routes.
func SetupRoutes(r *gin.Engine, svc *importer.Service, dataDir string) {
	h := NewHandler(svc, dataDir)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/vendors", h.ListVendors)

		imports := api.Group("/import")
		{
			imports.POST("/run", h.RunImport)
			imports.POST("/test", h.TestProduct)
		}

		csv := api.Group("/csv")
		{
			csv.POST("/preview", h.PreviewCSV)
			csv.POST("/process", h.ProcessCSVBatch)
		}
	}
}
