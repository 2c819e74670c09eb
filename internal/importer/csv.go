package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"product_importer/internal/domain"
	"product_importer/internal/mapper"
	"product_importer/pkg/logger"

	"github.com/google/uuid"
)

// ProcessCSVBatch imports at most batchSize data rows starting after the
// first offset rows. The offset skip is a linear advance, so resuming a long
// file costs O(offset) per call; the caller owns the offset and keeps
// requesting batches while Continue is true. Each row becomes a RawRecord
// keyed by column name and flows through the same mapper and reconciler as
// API records. A row missing its title or identity is recorded as an error
// before any store interaction and never aborts the batch.
func (s *Service) ProcessCSVBatch(ctx context.Context, filePath string, cfg *domain.VendorConfig, offset, batchSize int) (domain.BatchResult, error) {
	var result domain.BatchResult

	if batchSize <= 0 {
		batchSize = 10
	}

	file, err := os.Open(filePath)
	if err != nil {
		return result, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	runID := uuid.NewString()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("read csv header: %w", err)
	}

	for i := 0; i < offset; i++ {
		if _, err := reader.Read(); err != nil {
			break
		}
	}

	for result.Processed < batchSize {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		rowNum := offset + result.Processed + 1
		result.Processed++

		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		raw := rowRecord(headers, row)
		if err := s.validateRequired(raw, cfg); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		normalized := mapper.MapRecord(raw, cfg)
		res := s.Upsert(ctx, runID, raw, normalized, cfg)
		switch res.Action {
		case domain.ActionCreated:
			result.Created++
		case domain.ActionUpdated:
			result.Updated++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, res.Message))
		}
	}

	result.Continue = result.Processed == batchSize
	logger.WriteLog("INFO", runID, "CSV",
		fmt.Sprintf("batch complete for %s: processed %d, created %d, updated %d, %d errors",
			cfg.Key, result.Processed, result.Created, result.Updated, len(result.Errors)))

	return result, nil
}

// PreviewCSV returns the headers, the first five data rows and the total
// data row count, for the admin upload preview.
func PreviewCSV(filePath string) (domain.CSVPreview, error) {
	var preview domain.CSVPreview

	file, err := os.Open(filePath)
	if err != nil {
		return preview, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	preview.Headers, err = reader.Read()
	if err != nil {
		return preview, fmt.Errorf("read csv header: %w", err)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		if len(preview.SampleRows) < 5 {
			preview.SampleRows = append(preview.SampleRows, row)
		}
		preview.TotalRows++
	}

	return preview, nil
}

// validateRequired checks title and identity presence before any sink
// interaction.
func (s *Service) validateRequired(raw domain.RawRecord, cfg *domain.VendorConfig) error {
	if s.identityValue(raw, cfg) == "" {
		return fmt.Errorf("missing required field: %s", cfg.IdentityField)
	}

	title := ""
	for _, rule := range cfg.FieldMapping {
		if rule.TargetField == cfg.TitleTarget() {
			if value, ok := mapper.Resolve(raw, rule.SourcePath); ok {
				title = strings.TrimSpace(mapper.Stringify(value))
			}
			break
		}
	}
	if title == "" {
		return fmt.Errorf("missing required field: %s", cfg.TitleTarget())
	}
	return nil
}

// rowRecord pairs headers with cells by position. Short rows leave trailing
// columns absent; extra cells are dropped.
func rowRecord(headers, row []string) domain.RawRecord {
	record := make(domain.RawRecord, len(headers))
	for i, header := range headers {
		if i >= len(row) {
			break
		}
		record[header] = row[i]
	}
	return record
}
