// Package assets resolves textual image references from vendor feeds to
// stored asset ids.
package assets

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"product_importer/internal/mapper"
	"product_importer/internal/repository"
	"product_importer/pkg/logger"
)

// Resolver maps image references to assets using three fallbacks: filename
// match against the library, URL import, then relative-path lookup.
type Resolver struct {
	store repository.AssetStore
}

// NewResolver creates a resolver over an asset store.
func NewResolver(store repository.AssetStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve tries the fallback chain for a single reference. Returns the asset
// id and whether anything matched.
func (r *Resolver) Resolve(ctx context.Context, reference string) (string, bool) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", false
	}

	// Filename match against already-stored assets.
	if id, err := r.store.FindByFilename(ctx, reference); err == nil && id != "" {
		return id, true
	}

	// A syntactically valid absolute URL is downloaded into the store.
	if isAbsoluteURL(reference) {
		id, err := r.store.ImportFromURL(ctx, reference)
		if err != nil || id == "" {
			return "", false
		}
		return id, true
	}

	// Otherwise treat the reference as a path relative to the asset root.
	if id, err := r.store.FindByPath(ctx, strings.TrimPrefix(reference, "/")); err == nil && id != "" {
		return id, true
	}

	return "", false
}

// ResolveAll splits a multi-reference value on comma/semicolon/pipe and
// resolves each token independently, in order, skipping empty tokens.
// Duplicate asset ids are dropped. Unresolved references are logged with the
// owning record's id; the record is still saved without them.
func (r *Resolver) ResolveAll(ctx context.Context, runID, recordID, references string) []string {
	var ids []string
	seen := make(map[string]bool)

	for _, reference := range mapper.SplitList(references) {
		id, ok := r.Resolve(ctx, reference)
		if !ok {
			logger.WriteLog("WARN", runID, "ASSET",
				fmt.Sprintf("record %s: unresolved image reference %q", recordID, reference))
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
