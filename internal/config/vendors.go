package config

import (
	"encoding/json"
	"fmt"
	"os"

	"product_importer/internal/domain"
	"product_importer/internal/mapper"
	"product_importer/pkg/logger"
)

// VendorRegistry holds every configured vendor. Constructed once at startup
// and never mutated afterwards; callers share it by reference.
type VendorRegistry struct {
	vendors map[string]*domain.VendorConfig
	keys    []string
}

// LoadVendors reads the vendor definition file (a JSON array of vendor
// configs) and validates each entry. Validation failures are config errors
// and abort startup before any I/O against the sources.
func LoadVendors(path string) (*VendorRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vendor config: %w", err)
	}

	var configs []domain.VendorConfig
	if err := json.Unmarshal(raw, &configs); err != nil {
		return nil, fmt.Errorf("parse vendor config: %w", err)
	}

	reg := &VendorRegistry{vendors: make(map[string]*domain.VendorConfig, len(configs))}
	for i := range configs {
		v := &configs[i]
		if err := validateVendor(v); err != nil {
			return nil, fmt.Errorf("vendor %q: %w", v.Key, err)
		}
		if _, dup := reg.vendors[v.Key]; dup {
			return nil, fmt.Errorf("duplicate vendor key: %s", v.Key)
		}
		reg.vendors[v.Key] = v
		reg.keys = append(reg.keys, v.Key)
	}

	logger.Infof("Loaded %d vendor configurations from %s", len(reg.keys), path)
	return reg, nil
}

// Get returns the config for a vendor key, or nil when unknown.
func (r *VendorRegistry) Get(key string) *domain.VendorConfig {
	return r.vendors[key]
}

// Keys returns vendor keys in file order.
func (r *VendorRegistry) Keys() []string {
	return r.keys
}

func validateVendor(v *domain.VendorConfig) error {
	if v.Key == "" {
		return fmt.Errorf("missing key")
	}
	if v.Name == "" {
		return fmt.Errorf("missing name")
	}
	if v.Source == "" {
		return fmt.Errorf("missing source")
	}
	if v.IdentityField == "" {
		return fmt.Errorf("missing identity_field")
	}
	if len(v.FieldMapping) == 0 {
		return fmt.Errorf("empty field_mapping")
	}

	switch v.AuthMode {
	case "", domain.AuthNone, domain.AuthBearer, domain.AuthBasic, domain.AuthCustomHeader:
	default:
		return fmt.Errorf("unknown auth_mode: %s", v.AuthMode)
	}

	switch v.Method {
	case "", "GET", "POST":
	default:
		return fmt.Errorf("unsupported method: %s", v.Method)
	}

	switch v.Pagination.Strategy {
	case "", domain.PaginationNone, domain.PaginationPage, domain.PaginationOffset, domain.PaginationCursor:
	default:
		return fmt.Errorf("unknown pagination strategy: %s", v.Pagination.Strategy)
	}

	// Unknown transform and handler names stay permissive pass-throughs at
	// apply time; surface them here so typos are visible at startup.
	for path, name := range v.Transforms {
		if !mapper.KnownTransform(name) {
			logger.Infof("vendor %s: unknown transform %q on %s (will pass through)", v.Key, name, path)
		}
	}
	for path, name := range v.Handlers {
		if !mapper.KnownHandler(name) {
			logger.Infof("vendor %s: unknown handler %q on %s (will pass through)", v.Key, name, path)
		}
	}

	return nil
}
