// Package fetcher drives vendor HTTP APIs through their pagination strategy
// and accumulates the raw records they return.
package fetcher

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"product_importer/internal/domain"
	"product_importer/internal/mapper"
	"product_importer/pkg/logger"
)

// ErrCursorPagination marks the unimplemented cursor strategy. Returned
// explicitly so a misconfigured vendor never looks like an empty feed.
var ErrCursorPagination = errors.New("cursor pagination is not supported")

const defaultPageLimit = 100

// Fetcher issues paginated requests against a vendor source.
type Fetcher struct {
	client *http.Client
}

// New creates a fetcher with the given per-request timeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch materializes the full result set for a vendor. A transport error,
// non-200 status or JSON decode failure on any page truncates the fetch:
// whatever was accumulated before the failure is returned and the failure is
// logged, never raised. Callers needing completeness must re-run and compare
// counts.
func (f *Fetcher) Fetch(runID string, cfg *domain.VendorConfig) ([]domain.RawRecord, error) {
	switch cfg.Pagination.Strategy {
	case domain.PaginationPage:
		return f.fetchPaged(runID, cfg), nil
	case domain.PaginationOffset:
		return f.fetchOffset(runID, cfg), nil
	case domain.PaginationNone, "":
		return f.fetchSingle(runID, cfg), nil
	case domain.PaginationCursor:
		logger.WriteLog("WARN", runID, "FETCH", fmt.Sprintf("vendor %s requests cursor pagination", cfg.Key))
		return nil, ErrCursorPagination
	default:
		return nil, fmt.Errorf("unknown pagination strategy: %s", cfg.Pagination.Strategy)
	}
}

// fetchPaged walks page=1..lastPage. lastPage starts unbounded and is read
// from TotalPath on every page, keeping its previous value when the path is
// absent.
func (f *Fetcher) fetchPaged(runID string, cfg *domain.VendorConfig) []domain.RawRecord {
	var all []domain.RawRecord
	page := 1
	lastPage := math.MaxInt32

	for page <= lastPage {
		url := withParams(cfg.Source, fmt.Sprintf("page=%d", page))
		if cfg.Pagination.PageSize > 0 {
			url = withParams(url, fmt.Sprintf("per_page=%d", cfg.Pagination.PageSize))
		}

		payload, err := f.requestJSON(url, cfg)
		if err != nil {
			logger.WriteLog("ERROR", runID, "FETCH", fmt.Sprintf("page %d: %v", page, err))
			break
		}

		records := recordsFromPayload(payload, cfg.Pagination.DataPath)
		if len(records) == 0 {
			break
		}
		all = append(all, records...)

		if cfg.Pagination.TotalPath != "" {
			if v, ok := mapper.Resolve(payload, cfg.Pagination.TotalPath); ok {
				if n := int(mapper.ToNumber(v)); n > 0 {
					lastPage = n
				}
			}
		}

		logger.WriteLog("INFO", runID, "FETCH", fmt.Sprintf("page %d: %d records", page, len(records)))
		page++
	}

	return all
}

// fetchOffset advances offset by limit until a short page.
func (f *Fetcher) fetchOffset(runID string, cfg *domain.VendorConfig) []domain.RawRecord {
	var all []domain.RawRecord
	offset := 0
	limit := cfg.Pagination.PageSize
	if limit <= 0 {
		limit = defaultPageLimit
	}

	for {
		url := withParams(cfg.Source, fmt.Sprintf("offset=%d&limit=%d", offset, limit))

		payload, err := f.requestJSON(url, cfg)
		if err != nil {
			logger.WriteLog("ERROR", runID, "FETCH", fmt.Sprintf("offset %d: %v", offset, err))
			break
		}

		records := recordsFromPayload(payload, cfg.Pagination.DataPath)
		all = append(all, records...)
		logger.WriteLog("INFO", runID, "FETCH", fmt.Sprintf("offset %d: %d records", offset, len(records)))

		if len(records) < limit {
			break
		}
		offset += limit
	}

	return all
}

// fetchSingle issues one request, no looping.
func (f *Fetcher) fetchSingle(runID string, cfg *domain.VendorConfig) []domain.RawRecord {
	payload, err := f.requestJSON(cfg.Source, cfg)
	if err != nil {
		logger.WriteLog("ERROR", runID, "FETCH", err.Error())
		return nil
	}
	return recordsFromPayload(payload, cfg.Pagination.DataPath)
}

// requestJSON performs one request. Success is strictly status 200 with a
// body that decodes as JSON.
func (f *Fetcher) requestJSON(url string, cfg *domain.VendorConfig) (interface{}, error) {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if method == http.MethodPost {
		params := cfg.BodyParams
		if params == nil {
			params = map[string]any{}
		}
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	setAuthHeader(req, cfg)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %.200s", resp.StatusCode, string(raw))
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

func setAuthHeader(req *http.Request, cfg *domain.VendorConfig) {
	switch cfg.AuthMode {
	case domain.AuthBearer:
		req.Header.Set("Authorization", "Bearer "+cfg.AuthToken)
	case domain.AuthBasic:
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(cfg.AuthToken)))
	case domain.AuthCustomHeader:
		req.Header.Set("X-API-Key", cfg.AuthToken)
	}
}

func withParams(url, params string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + params
}
