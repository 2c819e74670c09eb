package domain

import "time"

// Auth modes understood by the fetcher.
const (
	AuthBearer       = "bearer"
	AuthBasic        = "basic"
	AuthCustomHeader = "customHeader"
	AuthNone         = "none"
)

// Pagination strategies.
const (
	PaginationPage   = "page"
	PaginationOffset = "offset"
	PaginationCursor = "cursor"
	PaginationNone   = "none"
)

// FieldRule maps one source path to one target field. Rules are kept in a
// slice so the configured order survives JSON round-trips; later rules may
// overwrite earlier ones when they target the same field.
type FieldRule struct {
	SourcePath  string `json:"source_path" bson:"source_path"`
	TargetField string `json:"target_field" bson:"target_field"`
}

// PaginationSpec describes how a vendor API pages its results.
type PaginationSpec struct {
	Strategy  string `json:"strategy" bson:"strategy"`
	PageSize  int    `json:"page_size" bson:"page_size"`
	DataPath  string `json:"data_path" bson:"data_path"`
	TotalPath string `json:"total_path" bson:"total_path"`
}

// VendorConfig identifies one data source and how its records become
// normalized products.
type VendorConfig struct {
	Key             string            `json:"key" bson:"key"`
	Name            string            `json:"name" bson:"name"`
	Source          string            `json:"source" bson:"source"` // URL or file path
	AuthMode        string            `json:"auth_mode" bson:"auth_mode"`
	AuthToken       string            `json:"auth_token" bson:"auth_token"`
	Method          string            `json:"method" bson:"method"` // GET or POST
	BodyParams      map[string]any    `json:"body_params,omitempty" bson:"body_params,omitempty"`
	Pagination      PaginationSpec    `json:"pagination" bson:"pagination"`
	FieldMapping    []FieldRule       `json:"field_mapping" bson:"field_mapping"`
	Transforms      map[string]string `json:"transforms,omitempty" bson:"transforms,omitempty"`
	Handlers        map[string]string `json:"handlers,omitempty" bson:"handlers,omitempty"`
	IdentityField   string            `json:"identity_field" bson:"identity_field"`
	TaxonomyMapping map[string]string `json:"taxonomy_mapping,omitempty" bson:"taxonomy_mapping,omitempty"`
	ImageFields     []string          `json:"image_fields,omitempty" bson:"image_fields,omitempty"`
	TitleField      string            `json:"title_field" bson:"title_field"`
	BodyField       string            `json:"body_field" bson:"body_field"`
}

// TitleTarget returns the target field holding the product title.
func (v *VendorConfig) TitleTarget() string {
	if v.TitleField != "" {
		return v.TitleField
	}
	return "title"
}

// BodyTarget returns the target field holding the product description.
func (v *VendorConfig) BodyTarget() string {
	if v.BodyField != "" {
		return v.BodyField
	}
	return "description"
}

// RawRecord is one record exactly as received from a source. Treated as
// immutable once fetched.
type RawRecord = map[string]interface{}

// NormalizedRecord is the flat, target-schema view of one product. The
// "vendor" key is synthesized by the mapper.
type NormalizedRecord = map[string]interface{}

// VendorNameField is the synthesized field on every normalized record.
const VendorNameField = "vendor"

// Upsert actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionErrored = "errored"
)

// UpsertResult reports what the reconciler did with one record.
type UpsertResult struct {
	Action  string `json:"action"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// ImportResult summarizes one import invocation. Created per batch, returned
// to the caller, never persisted by the core itself.
type ImportResult struct {
	Vendor    string    `json:"vendor"`
	RunID     string    `json:"run_id"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Errors    int       `json:"errors"`
	Log       []string  `json:"log,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Duration  float64   `json:"duration_seconds"`
}

// BatchResult summarizes one CSV batch call. Continue tells the caller
// whether another batch is worth requesting.
type BatchResult struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors"`
	Continue  bool     `json:"continue"`
}

// CSVPreview is the admin-facing peek at an uploaded file.
type CSVPreview struct {
	Headers    []string   `json:"headers"`
	SampleRows [][]string `json:"sample_rows"`
	TotalRows  int        `json:"total_rows"`
}

// RecordFields are the dedicated slots of a stored product record. Everything
// else travels as attributes.
type RecordFields struct {
	Vendor   string `json:"vendor" bson:"vendor"`
	Identity string `json:"identity" bson:"identity"`
	Title    string `json:"title" bson:"title"`
	Body     string `json:"body" bson:"body"`
}

// TestReport is the diagnostic output of a single-product dry run.
type TestReport struct {
	Raw        RawRecord        `json:"raw_record"`
	Normalized NormalizedRecord `json:"normalized_record"`
	Upsert     UpsertResult     `json:"upsert_result"`
}
