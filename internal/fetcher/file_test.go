package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"product_importer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFileBareArray(t *testing.T) {
	path := writeDataFile(t, `[{"sku":"A"},{"sku":"B"}]`)

	records, err := LoadFile(path, domain.PaginationSpec{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0]["sku"])
}

func TestLoadFileEnvelopePriority(t *testing.T) {
	// "products" wins over "data" and "items".
	path := writeDataFile(t, `{
		"items": [{"sku":"from-items"}],
		"data": [{"sku":"from-data"}],
		"products": [{"sku":"from-products"}]
	}`)

	records, err := LoadFile(path, domain.PaginationSpec{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "from-products", records[0]["sku"])
}

func TestLoadFileDataPathWins(t *testing.T) {
	path := writeDataFile(t, `{
		"products": [{"sku":"wrong"}],
		"result": {"rows": [{"sku":"right"}]}
	}`)

	records, err := LoadFile(path, domain.PaginationSpec{DataPath: "result.rows"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "right", records[0]["sku"])
}

func TestLoadFileSkipsNonObjects(t *testing.T) {
	path := writeDataFile(t, `[{"sku":"A"}, "stray", 42, {"sku":"B"}]`)

	records, err := LoadFile(path, domain.PaginationSpec{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLoadFileNoRecordArray(t *testing.T) {
	path := writeDataFile(t, `{"status":"ok"}`)

	_, err := LoadFile(path, domain.PaginationSpec{})
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"), domain.PaginationSpec{})
	assert.Error(t, err)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "vendor-products.json")
	records := []domain.RawRecord{
		{"sku": "A", "price": "9.99"},
		{"sku": "B", "price": "19.99"},
	}

	require.NoError(t, SaveFile(path, records))

	loaded, err := LoadFile(path, domain.PaginationSpec{})
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "B", loaded[1]["sku"])
}
