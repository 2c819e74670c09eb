package fetcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"product_importer/internal/domain"
	"product_importer/internal/mapper"
)

// envelopeKeys are tried in priority order when a data file wraps its record
// array instead of being a bare array.
var envelopeKeys = []string{"products", "data", "items"}

// LoadFile reads a vendor JSON data file. The file is either a bare array of
// records or an envelope holding the array under products/data/items or the
// configured data path. Whole-file load; a file is read start-to-finish or
// not at all.
func LoadFile(path string, spec domain.PaginationSpec) ([]domain.RawRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}

	records := recordsFromPayload(payload, spec.DataPath)
	if records == nil {
		return nil, fmt.Errorf("no record array found in %s", path)
	}
	return records, nil
}

// SaveFile persists fetched records as a pretty-printed JSON array, the
// hand-off format between the fetch and import stages.
func SaveFile(path string, records []domain.RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0644)
}

// recordsFromPayload extracts the record array from a decoded response or
// file payload. A configured dataPath wins; otherwise a bare array is taken
// as-is, then the common envelope keys are tried in order.
func recordsFromPayload(payload interface{}, dataPath string) []domain.RawRecord {
	if dataPath != "" {
		value, ok := mapper.Resolve(payload, dataPath)
		if !ok {
			return nil
		}
		return toRecords(value)
	}

	if records := toRecords(payload); records != nil {
		return records
	}

	if envelope, ok := payload.(map[string]interface{}); ok {
		for _, key := range envelopeKeys {
			if records := toRecords(envelope[key]); records != nil {
				return records
			}
		}
	}
	return nil
}

// toRecords converts a decoded array into raw records, skipping non-object
// elements.
func toRecords(value interface{}) []domain.RawRecord {
	list, ok := value.([]interface{})
	if !ok {
		return nil
	}

	records := make([]domain.RawRecord, 0, len(list))
	for _, item := range list {
		if record, ok := item.(map[string]interface{}); ok {
			records = append(records, record)
		}
	}
	return records
}
