// Package importer runs the feed-to-record pipeline: fetch or load raw
// records, normalize them, and reconcile each against the product store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"product_importer/internal/assets"
	"product_importer/internal/config"
	"product_importer/internal/domain"
	"product_importer/internal/fetcher"
	"product_importer/internal/mapper"
	"product_importer/internal/metrics"
	"product_importer/internal/repository"
	"product_importer/pkg/logger"

	"github.com/google/uuid"
)

// ErrUnknownVendor is returned for a vendor key absent from the registry.
var ErrUnknownVendor = errors.New("unknown vendor")

// Service wires the pipeline stages together. One Service handles any number
// of sequential invocations; it holds no per-run state.
type Service struct {
	registry *config.VendorRegistry
	fetcher  *fetcher.Fetcher
	store    repository.ProductStore
	resolver *assets.Resolver
	recorder *metrics.Recorder
}

// NewService creates the import service. recorder may be nil.
func NewService(registry *config.VendorRegistry, f *fetcher.Fetcher, store repository.ProductStore, resolver *assets.Resolver, recorder *metrics.Recorder) *Service {
	return &Service{
		registry: registry,
		fetcher:  f,
		store:    store,
		resolver: resolver,
		recorder: recorder,
	}
}

// Registry exposes the vendor registry for the API layer.
func (s *Service) Registry() *config.VendorRegistry {
	return s.registry
}

// RunImport imports one window of a vendor's feed. offset/limit slice the
// materialized record set; limit <= 0 means "to the end". Per-record
// failures are tallied and logged, never aborting the batch; only config
// errors (unknown vendor, unreadable source, cursor pagination) fail the
// invocation before any record is touched.
func (s *Service) RunImport(ctx context.Context, vendorKey string, offset, limit int) (domain.ImportResult, error) {
	result := domain.ImportResult{Vendor: vendorKey, RunID: uuid.NewString(), StartedAt: time.Now()}

	cfg := s.registry.Get(vendorKey)
	if cfg == nil {
		return result, fmt.Errorf("%w: %s", ErrUnknownVendor, vendorKey)
	}

	logger.WriteLog("INFO", result.RunID, "IMPORT",
		fmt.Sprintf("starting import for vendor %s (offset %d, limit %d)", vendorKey, offset, limit))

	records, err := s.loadRecords(result.RunID, cfg)
	if err != nil {
		return result, err
	}

	for _, raw := range sliceWindow(records, offset, limit) {
		normalized := mapper.MapRecord(raw, cfg)
		res := s.Upsert(ctx, result.RunID, raw, normalized, cfg)

		switch res.Action {
		case domain.ActionCreated:
			result.Created++
		case domain.ActionUpdated:
			result.Updated++
		default:
			result.Errors++
		}
		result.Log = append(result.Log, fmt.Sprintf("%s: %s", res.Action, res.Message))
	}

	result.Duration = time.Since(result.StartedAt).Seconds()
	logger.WriteLog("INFO", result.RunID, "IMPORT",
		fmt.Sprintf("import complete for %s: %d created, %d updated, %d errors",
			vendorKey, result.Created, result.Updated, result.Errors))

	s.recorder.RecordRun(ctx, result)
	return result, nil
}

// TestSingleProduct locates one record by identity value and runs it through
// the full pipeline, returning every intermediate stage for diagnostics.
func (s *Service) TestSingleProduct(ctx context.Context, vendorKey, identity string) (domain.TestReport, error) {
	var report domain.TestReport

	cfg := s.registry.Get(vendorKey)
	if cfg == nil {
		return report, fmt.Errorf("%w: %s", ErrUnknownVendor, vendorKey)
	}

	runID := uuid.NewString()
	records, err := s.loadRecords(runID, cfg)
	if err != nil {
		return report, err
	}

	for _, raw := range records {
		if s.identityValue(raw, cfg) != identity {
			continue
		}
		report.Raw = raw
		report.Normalized = mapper.MapRecord(raw, cfg)
		report.Upsert = s.Upsert(ctx, runID, raw, report.Normalized, cfg)
		return report, nil
	}

	return report, fmt.Errorf("no record found with identity %q for vendor %s", identity, vendorKey)
}

// Upsert reconciles one normalized record against the store. The
// find-then-create-or-update sequence is not transactional; concurrent
// invocations on the same identity can race (documented behavior).
func (s *Service) Upsert(ctx context.Context, runID string, raw domain.RawRecord, normalized domain.NormalizedRecord, cfg *domain.VendorConfig) domain.UpsertResult {
	identity := s.identityValue(raw, cfg)
	if identity == "" {
		msg := fmt.Sprintf("missing identity field %q", cfg.IdentityField)
		logger.WriteLog("WARN", runID, "UPSERT", msg)
		return domain.UpsertResult{Action: domain.ActionErrored, Message: msg}
	}

	existingID, err := s.store.FindByIdentity(ctx, cfg.Name, identity)
	if err != nil {
		return errored(runID, identity, err)
	}

	fields := domain.RecordFields{
		Vendor:   cfg.Name,
		Identity: identity,
		Title:    titleOf(normalized, cfg),
		Body:     mapper.Stringify(normalized[cfg.BodyTarget()]),
	}

	var id string
	action := domain.ActionUpdated
	if existingID != "" {
		id = existingID
		if err := s.store.UpdateRecord(ctx, id, fields); err != nil {
			return errored(runID, identity, err)
		}
	} else {
		action = domain.ActionCreated
		if id, err = s.store.CreateRecord(ctx, fields); err != nil {
			return errored(runID, identity, err)
		}
	}

	if err := s.store.SetAttributes(ctx, id, s.attributesOf(normalized, cfg)); err != nil {
		return errored(runID, identity, err)
	}

	for target, taxonomy := range cfg.TaxonomyMapping {
		value, ok := normalized[target]
		if !ok {
			continue
		}
		if err := s.store.AttachTaxonomy(ctx, id, taxonomy, value); err != nil {
			return errored(runID, identity, err)
		}
	}

	s.attachImages(ctx, runID, id, normalized, cfg)

	logger.WriteLog("INFO", runID, "UPSERT", fmt.Sprintf("%s: %s (%s)", action, fields.Title, identity))
	return domain.UpsertResult{Action: action, ID: id, Message: fmt.Sprintf("%s (%s)", fields.Title, identity)}
}

// attachImages resolves every configured image field and writes the featured
// image plus gallery. Unresolved references only cost the image; the record
// stays saved.
func (s *Service) attachImages(ctx context.Context, runID, id string, normalized domain.NormalizedRecord, cfg *domain.VendorConfig) {
	var ids []string
	seen := make(map[string]bool)

	for _, target := range cfg.ImageFields {
		value, ok := normalized[target]
		if !ok {
			continue
		}
		for _, assetID := range s.resolver.ResolveAll(ctx, runID, id, referenceString(value)) {
			if !seen[assetID] {
				seen[assetID] = true
				ids = append(ids, assetID)
			}
		}
	}

	if len(ids) == 0 {
		return
	}

	if err := s.store.SetPrimaryImage(ctx, id, ids[0]); err != nil {
		logger.WriteLog("ERROR", runID, "ASSET", fmt.Sprintf("record %s: set featured image: %v", id, err))
	}
	if len(ids) > 1 {
		if err := s.store.SetGallery(ctx, id, ids[1:]); err != nil {
			logger.WriteLog("ERROR", runID, "ASSET", fmt.Sprintf("record %s: set gallery: %v", id, err))
		}
	}
}

// loadRecords materializes the vendor's raw record set from either its HTTP
// API or its JSON data file.
func (s *Service) loadRecords(runID string, cfg *domain.VendorConfig) ([]domain.RawRecord, error) {
	if isHTTPSource(cfg.Source) {
		return s.fetcher.Fetch(runID, cfg)
	}
	return fetcher.LoadFile(cfg.Source, cfg.Pagination)
}

// identityValue resolves the identity field from the raw record.
func (s *Service) identityValue(raw domain.RawRecord, cfg *domain.VendorConfig) string {
	value, ok := mapper.Resolve(raw, cfg.IdentityField)
	if !ok {
		return ""
	}
	return strings.TrimSpace(mapper.Stringify(value))
}

// attributesOf selects the normalized fields stored as generic attributes:
// everything except the dedicated title/body slots, plus the import stamp.
func (s *Service) attributesOf(normalized domain.NormalizedRecord, cfg *domain.VendorConfig) map[string]interface{} {
	attrs := make(map[string]interface{}, len(normalized))
	for key, value := range normalized {
		if key == cfg.TitleTarget() || key == cfg.BodyTarget() {
			continue
		}
		attrs[key] = value
	}
	attrs["import_date"] = time.Now().Format(time.RFC3339)
	return attrs
}

func titleOf(normalized domain.NormalizedRecord, cfg *domain.VendorConfig) string {
	if title := strings.TrimSpace(mapper.Stringify(normalized[cfg.TitleTarget()])); title != "" {
		return title
	}
	return "Untitled Product"
}

// referenceString renders an image field value as a delimited reference
// list; list values are rejoined so ResolveAll can split them uniformly.
func referenceString(value interface{}) string {
	switch refs := value.(type) {
	case []string:
		return strings.Join(refs, ",")
	case []interface{}:
		parts := make([]string, 0, len(refs))
		for _, r := range refs {
			parts = append(parts, mapper.Stringify(r))
		}
		return strings.Join(parts, ",")
	default:
		return mapper.Stringify(value)
	}
}

func errored(runID, identity string, err error) domain.UpsertResult {
	msg := fmt.Sprintf("%s: %v", identity, err)
	logger.WriteLog("ERROR", runID, "UPSERT", msg)
	return domain.UpsertResult{Action: domain.ActionErrored, Message: msg}
}

func isHTTPSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// sliceWindow returns records[offset : offset+limit] with bounds clamped;
// limit <= 0 takes everything after offset.
func sliceWindow(records []domain.RawRecord, offset, limit int) []domain.RawRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return nil
	}
	window := records[offset:]
	if limit > 0 && limit < len(window) {
		window = window[:limit]
	}
	return window
}
