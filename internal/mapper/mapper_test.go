package mapper

import (
	"testing"

	"product_importer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRecordStrictProjection(t *testing.T) {
	cfg := &domain.VendorConfig{
		Name: "Vendor One",
		FieldMapping: []domain.FieldRule{
			{SourcePath: "sku", TargetField: "vendor_sku"},
			{SourcePath: "price", TargetField: "price"},
		},
		Transforms: map[string]string{"price": "numeric"},
	}

	raw := domain.RawRecord{
		"sku":   "A1",
		"price": "$9.99",
		"extra": "ignored",
	}

	normalized := MapRecord(raw, cfg)

	assert.Equal(t, domain.NormalizedRecord{
		"vendor_sku": "A1",
		"price":      9.99,
		"vendor":     "Vendor One",
	}, normalized)
	assert.NotContains(t, normalized, "extra")
}

func TestMapRecordNestedPathsAndHandlers(t *testing.T) {
	cfg := &domain.VendorConfig{
		Name: "Pearl Masters",
		FieldMapping: []domain.FieldRule{
			{SourcePath: "variants.0.price", TargetField: "price"},
			{SourcePath: "tags", TargetField: "tags"},
			{SourcePath: "available", TargetField: "stock_status"},
		},
		Transforms: map[string]string{"variants.0.price": "decimal"},
		Handlers: map[string]string{
			"tags":      "split_list",
			"available": "stock_status",
		},
	}

	raw := domain.RawRecord{
		"variants":  []interface{}{map[string]interface{}{"price": "120.5"}},
		"tags":      "rings, gold ; bridal",
		"available": "1",
	}

	normalized := MapRecord(raw, cfg)

	assert.Equal(t, "120.50", normalized["price"])
	assert.Equal(t, []string{"rings", "gold", "bridal"}, normalized["tags"])
	assert.Equal(t, StatusInStock, normalized["stock_status"])
}

func TestMapRecordAbsentFieldsSkipped(t *testing.T) {
	cfg := &domain.VendorConfig{
		Name: "V",
		FieldMapping: []domain.FieldRule{
			{SourcePath: "name", TargetField: "title"},
			{SourcePath: "details.weight", TargetField: "weight"},
		},
	}

	normalized := MapRecord(domain.RawRecord{"name": "Ring"}, cfg)

	require.Contains(t, normalized, "title")
	assert.NotContains(t, normalized, "weight")
	assert.Equal(t, "V", normalized[domain.VendorNameField])
}

func TestMapRecordLaterRuleOverwrites(t *testing.T) {
	cfg := &domain.VendorConfig{
		Name: "V",
		FieldMapping: []domain.FieldRule{
			{SourcePath: "wholesale_price", TargetField: "price"},
			{SourcePath: "retail_price", TargetField: "price"},
		},
	}

	normalized := MapRecord(domain.RawRecord{
		"wholesale_price": "5.00",
		"retail_price":    "12.00",
	}, cfg)

	assert.Equal(t, "12.00", normalized["price"])
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, SplitList("a.jpg, b.jpg ,, c.jpg"))
	assert.Equal(t, []string{"x", "y", "z"}, SplitList("x;y|z"))
	assert.Empty(t, SplitList("  ,  ;  "))
}
