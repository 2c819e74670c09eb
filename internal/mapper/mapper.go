// Package mapper normalizes raw vendor records into the target product
// schema using per-vendor declarative field rules.
package mapper

import "product_importer/internal/domain"

// MapRecord applies a vendor's field rules to one raw record. Rules run in
// configured order; a later rule targeting the same field overwrites the
// earlier value. For each rule the source value is resolved by dot path, the
// bound special handler (if any) reshapes it, the bound transform (if any)
// converts it, and the result lands under the target field. Source fields
// with no rule never reach the output; the mapper is a strict projection.
func MapRecord(raw domain.RawRecord, cfg *domain.VendorConfig) domain.NormalizedRecord {
	normalized := make(domain.NormalizedRecord, len(cfg.FieldMapping)+1)

	for _, rule := range cfg.FieldMapping {
		value, ok := Resolve(raw, rule.SourcePath)
		if !ok {
			continue
		}

		if name, bound := cfg.Handlers[rule.SourcePath]; bound {
			value = ApplyHandler(value, name)
		}
		if name, bound := cfg.Transforms[rule.SourcePath]; bound {
			value = ApplyTransform(value, name)
		}

		normalized[rule.TargetField] = value
	}

	normalized[domain.VendorNameField] = cfg.Name
	return normalized
}
