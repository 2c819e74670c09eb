package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVendors(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendors.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validVendors = `[
	{
		"key": "pearl",
		"name": "Pearl Masters",
		"source": "https://api.pearl.example/products",
		"auth_mode": "bearer",
		"auth_token": "tok",
		"pagination": {"strategy": "page", "page_size": 100, "data_path": "data", "total_path": "meta.last_page"},
		"identity_field": "sku",
		"field_mapping": [
			{"source_path": "sku", "target_field": "vendor_sku"},
			{"source_path": "name", "target_field": "title"}
		],
		"transforms": {"price": "decimal"},
		"handlers": {"images": "split_list"}
	},
	{
		"key": "local",
		"name": "Local Feed",
		"source": "./data/local-products.json",
		"identity_field": "id",
		"field_mapping": [{"source_path": "id", "target_field": "vendor_sku"}]
	}
]`

func TestLoadVendors(t *testing.T) {
	registry, err := LoadVendors(writeVendors(t, validVendors))
	require.NoError(t, err)

	assert.Equal(t, []string{"pearl", "local"}, registry.Keys())

	pearl := registry.Get("pearl")
	require.NotNil(t, pearl)
	assert.Equal(t, "Pearl Masters", pearl.Name)
	assert.Equal(t, "page", pearl.Pagination.Strategy)
	require.Len(t, pearl.FieldMapping, 2)
	assert.Equal(t, "vendor_sku", pearl.FieldMapping[0].TargetField)

	assert.Nil(t, registry.Get("missing"))
}

func TestLoadVendorsMissingFile(t *testing.T) {
	_, err := LoadVendors(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadVendorsBadJSON(t *testing.T) {
	_, err := LoadVendors(writeVendors(t, `{"not":"an array"}`))
	assert.Error(t, err)
}

func TestLoadVendorsValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			"missing key",
			`[{"name":"V","source":"s","identity_field":"sku","field_mapping":[{"source_path":"a","target_field":"b"}]}]`,
			"missing key",
		},
		{
			"missing identity field",
			`[{"key":"v","name":"V","source":"s","field_mapping":[{"source_path":"a","target_field":"b"}]}]`,
			"identity_field",
		},
		{
			"empty field mapping",
			`[{"key":"v","name":"V","source":"s","identity_field":"sku","field_mapping":[]}]`,
			"field_mapping",
		},
		{
			"unknown auth mode",
			`[{"key":"v","name":"V","source":"s","identity_field":"sku","auth_mode":"oauth2","field_mapping":[{"source_path":"a","target_field":"b"}]}]`,
			"auth_mode",
		},
		{
			"unsupported method",
			`[{"key":"v","name":"V","source":"s","identity_field":"sku","method":"DELETE","field_mapping":[{"source_path":"a","target_field":"b"}]}]`,
			"method",
		},
		{
			"unknown pagination strategy",
			`[{"key":"v","name":"V","source":"s","identity_field":"sku","pagination":{"strategy":"scroll"},"field_mapping":[{"source_path":"a","target_field":"b"}]}]`,
			"pagination",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadVendors(writeVendors(t, tc.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadVendorsDuplicateKey(t *testing.T) {
	payload := `[
		{"key":"v","name":"V","source":"s","identity_field":"sku","field_mapping":[{"source_path":"a","target_field":"b"}]},
		{"key":"v","name":"V2","source":"s2","identity_field":"sku","field_mapping":[{"source_path":"a","target_field":"b"}]}
	]`
	_, err := LoadVendors(writeVendors(t, payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate vendor key")
}

func TestLoadVendorsUnknownTransformIsPermissive(t *testing.T) {
	payload := `[{
		"key":"v","name":"V","source":"s","identity_field":"sku",
		"field_mapping":[{"source_path":"a","target_field":"b"}],
		"transforms":{"a":"frobnicate"},
		"handlers":{"a":"mystery"}
	}]`
	registry, err := LoadVendors(writeVendors(t, payload))
	require.NoError(t, err, "unknown transform names warn, never abort")
	assert.NotNil(t, registry.Get("v"))
}
