// Package repository defines the persistence interfaces the import core
// talks to, plus the MongoDB and in-memory implementations.
package repository

import (
	"context"

	"product_importer/internal/domain"
)

// ProductStore is the content sink. The core expresses intent only through
// these operations and never embeds store-specific queries.
type ProductStore interface {
	// FindByIdentity returns the record id for (vendor, identity), or ""
	// when no record exists. At most one record per identity is expected.
	FindByIdentity(ctx context.Context, vendor, identity string) (string, error)

	// CreateRecord stores a new record and returns its id.
	CreateRecord(ctx context.Context, fields domain.RecordFields) (string, error)

	// UpdateRecord rewrites the dedicated slots of an existing record.
	UpdateRecord(ctx context.Context, id string, fields domain.RecordFields) error

	// SetAttributes writes generic attributes on a record.
	SetAttributes(ctx context.Context, id string, attrs map[string]interface{}) error

	// AttachTaxonomy attaches a value (scalar or list) as a term under the
	// named taxonomy.
	AttachTaxonomy(ctx context.Context, id, taxonomy string, value interface{}) error

	// SetPrimaryImage marks an asset as the record's featured image.
	SetPrimaryImage(ctx context.Context, id, assetID string) error

	// SetGallery stores the gallery asset ids, order preserved.
	SetGallery(ctx context.Context, id string, assetIDs []string) error
}

// AssetStore is the binary asset library the asset resolver searches.
type AssetStore interface {
	// FindByFilename returns the id of a stored asset whose path contains
	// the given basename, or "" when none matches.
	FindByFilename(ctx context.Context, name string) (string, error)

	// FindByPath returns the id of the asset stored under the exact
	// relative path, or "" when none exists.
	FindByPath(ctx context.Context, path string) (string, error)

	// ImportFromURL downloads a remote asset into the store.
	ImportFromURL(ctx context.Context, url string) (string, error)
}
