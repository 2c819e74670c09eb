package repository

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"product_importer/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore is an in-process ProductStore and AssetStore. It backs tests
// and the STORE_TYPE=memory dry-run mode.
type MemoryStore struct {
	mu       sync.Mutex
	records  map[string]*MemoryRecord
	byIdent  map[string]string // vendor + "\x00" + identity -> record id
	assets   []memoryAsset
	assetIDs map[string]string // path -> id
}

// MemoryRecord is one stored product, visible to tests.
type MemoryRecord struct {
	ID         string
	Fields     domain.RecordFields
	Attributes map[string]interface{}
	Taxonomies map[string][]interface{}
	Featured   string
	Gallery    string
	Saves      int
}

type memoryAsset struct {
	id   string
	path string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]*MemoryRecord),
		byIdent:  make(map[string]string),
		assetIDs: make(map[string]string),
	}
}

func identKey(vendor, identity string) string {
	return vendor + "\x00" + identity
}

// FindByIdentity implements ProductStore.
func (s *MemoryStore) FindByIdentity(_ context.Context, vendor, identity string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byIdent[identKey(vendor, identity)], nil
}

// CreateRecord implements ProductStore.
func (s *MemoryStore) CreateRecord(_ context.Context, fields domain.RecordFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.records[id] = &MemoryRecord{
		ID:         id,
		Fields:     fields,
		Attributes: make(map[string]interface{}),
		Taxonomies: make(map[string][]interface{}),
		Saves:      1,
	}
	s.byIdent[identKey(fields.Vendor, fields.Identity)] = id
	return id, nil
}

// UpdateRecord implements ProductStore.
func (s *MemoryStore) UpdateRecord(_ context.Context, id string, fields domain.RecordFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s not found", id)
	}
	rec.Fields = fields
	rec.Saves++
	return nil
}

// SetAttributes implements ProductStore.
func (s *MemoryStore) SetAttributes(_ context.Context, id string, attrs map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s not found", id)
	}
	for k, v := range attrs {
		rec.Attributes[k] = v
	}
	return nil
}

// AttachTaxonomy implements ProductStore.
func (s *MemoryStore) AttachTaxonomy(_ context.Context, id, taxonomy string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s not found", id)
	}

	existing := rec.Taxonomies[taxonomy]
	for _, term := range termList(value) {
		dup := false
		for _, have := range existing {
			if have == term {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, term)
		}
	}
	rec.Taxonomies[taxonomy] = existing
	return nil
}

// SetPrimaryImage implements ProductStore.
func (s *MemoryStore) SetPrimaryImage(_ context.Context, id, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s not found", id)
	}
	rec.Featured = assetID
	return nil
}

// SetGallery implements ProductStore.
func (s *MemoryStore) SetGallery(_ context.Context, id string, assetIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s not found", id)
	}
	rec.Gallery = joinIDs(assetIDs)
	return nil
}

// FindByFilename implements AssetStore: first stored path containing the
// basename wins, case-sensitive.
func (s *MemoryStore) FindByFilename(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := path.Base(name)
	for _, a := range s.assets {
		if strings.Contains(a.path, base) {
			return a.id, nil
		}
	}
	return "", nil
}

// FindByPath implements AssetStore with an exact path match.
func (s *MemoryStore) FindByPath(_ context.Context, relPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assetIDs[relPath], nil
}

// ImportFromURL implements AssetStore. The memory store never touches the
// network; the asset is registered under its URL basename.
func (s *MemoryStore) ImportFromURL(_ context.Context, url string) (string, error) {
	return s.AddAsset(path.Base(strings.SplitN(url, "?", 2)[0])), nil
}

// AddAsset registers an asset path and returns its id. Used to seed tests.
func (s *MemoryStore) AddAsset(relPath string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.assetIDs[relPath]; ok {
		return id
	}
	id := uuid.NewString()
	s.assets = append(s.assets, memoryAsset{id: id, path: relPath})
	s.assetIDs[relPath] = id
	return id
}

// Record returns a stored record by id, for tests.
func (s *MemoryStore) Record(id string) *MemoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
