package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"product_importer/internal/assets"
	"product_importer/internal/config"
	"product_importer/internal/domain"
	"product_importer/internal/fetcher"
	"product_importer/internal/importer"
	"product_importer/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()

	records := []domain.RawRecord{
		{"sku": "P-1", "name": "Akoya Strand", "price": "450"},
		{"sku": "P-2", "name": "Baroque Ring", "price": "120.5"},
	}
	encoded, err := json.Marshal(records)
	require.NoError(t, err)
	dataPath := filepath.Join(dataDir, "pearl-products.json")
	require.NoError(t, os.WriteFile(dataPath, encoded, 0644))

	vendors := fmt.Sprintf(`[{
		"key": "pearl",
		"name": "Pearl Masters",
		"source": "%s",
		"identity_field": "sku",
		"field_mapping": [
			{"source_path": "sku", "target_field": "vendor_sku"},
			{"source_path": "name", "target_field": "title"},
			{"source_path": "price", "target_field": "price"}
		],
		"transforms": {"price": "decimal"}
	}]`, dataPath)
	vendorsPath := filepath.Join(dataDir, "vendors.json")
	require.NoError(t, os.WriteFile(vendorsPath, []byte(vendors), 0644))

	registry, err := config.LoadVendors(vendorsPath)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	svc := importer.NewService(registry, fetcher.New(5*time.Second), store, assets.NewResolver(store), nil)

	router := gin.New()
	SetupRoutes(router, svc, dataDir)
	return router, dataDir
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListVendorsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/vendors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int `json:"count"`
		Vendors []struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"vendors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Vendors, 1)
	assert.Equal(t, "pearl", resp.Vendors[0].Key)
}

func TestRunImportEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/import/run", gin.H{"vendor": "pearl"})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Errors)
	assert.NotEmpty(t, result.RunID)
}

func TestRunImportUnknownVendorIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/import/run", gin.H{"vendor": "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunImportMissingVendorIs400(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/import/run", gin.H{"offset": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTestProductEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/import/test", gin.H{"vendor": "pearl", "identity": "P-2"})
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.TestReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "P-2", report.Raw["sku"])
	assert.Equal(t, "120.50", report.Normalized["price"])
	assert.Equal(t, domain.ActionCreated, report.Upsert.Action)
}

func TestCSVEndpoints(t *testing.T) {
	router, dataDir := newTestRouter(t)

	csv := "sku,name,price\nC-1,First,10.00\nC-2,Second,20.00\nC-3,Third,30.00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "upload.csv"), []byte(csv), 0644))

	w := postJSON(router, "/api/csv/preview", gin.H{"file": "upload.csv"})
	require.Equal(t, http.StatusOK, w.Code)

	var preview domain.CSVPreview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.Equal(t, []string{"sku", "name", "price"}, preview.Headers)
	assert.Equal(t, 3, preview.TotalRows)

	// Path traversal collapses to the data directory.
	w = postJSON(router, "/api/csv/preview", gin.H{"file": "../../etc/upload.csv"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/csv/process", gin.H{
		"file": "upload.csv", "vendor": "pearl", "offset": 0, "batch_size": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var batch domain.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Equal(t, 2, batch.Processed)
	assert.Equal(t, 2, batch.Created)
	assert.True(t, batch.Continue)

	w = postJSON(router, "/api/csv/process", gin.H{
		"file": "upload.csv", "vendor": "nobody",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
