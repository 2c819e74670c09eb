package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"time"

	"product_importer/internal/config"
	"product_importer/internal/domain"
	"product_importer/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements ProductStore and AssetStore on MongoDB.
type MongoStore struct {
	products *mongo.Collection
	assets   *mongo.Collection
	client   *http.Client
}

// NewMongoStore creates the store and ensures the identity index. The index
// is not unique: create-vs-update is decided by the reconciler's
// find-then-write sequence.
func NewMongoStore(db *config.MongoDatabase) *MongoStore {
	s := &MongoStore{
		products: db.Database.Collection("products"),
		assets:   db.Database.Collection("assets"),
		client:   &http.Client{Timeout: 60 * time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vendor", Value: 1}, {Key: "identity", Value: 1}},
	})
	s.assets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "path", Value: 1}},
	})

	return s
}

// FindByIdentity looks up the single record for (vendor, identity).
func (s *MongoStore) FindByIdentity(ctx context.Context, vendor, identity string) (string, error) {
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}

	err := s.products.FindOne(ctx, bson.M{"vendor": vendor, "identity": identity}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("identity lookup failed: %w", err)
	}
	return doc.ID.Hex(), nil
}

// CreateRecord inserts a new product record.
func (s *MongoStore) CreateRecord(ctx context.Context, fields domain.RecordFields) (string, error) {
	now := time.Now()
	res, err := s.products.InsertOne(ctx, bson.M{
		"vendor":     fields.Vendor,
		"identity":   fields.Identity,
		"title":      fields.Title,
		"body":       fields.Body,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return "", fmt.Errorf("insert failed: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// UpdateRecord rewrites the dedicated slots of an existing record.
func (s *MongoStore) UpdateRecord(ctx context.Context, id string, fields domain.RecordFields) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("bad record id %q: %w", id, err)
	}

	res, err := s.products.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":      fields.Title,
		"body":       fields.Body,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("record %s not found", id)
	}
	return nil
}

// SetAttributes writes generic attributes under the attributes subdocument.
func (s *MongoStore) SetAttributes(ctx context.Context, id string, attrs map[string]interface{}) error {
	if len(attrs) == 0 {
		return nil
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("bad record id %q: %w", id, err)
	}

	set := bson.M{}
	for key, value := range attrs {
		set["attributes."+key] = value
	}

	_, err = s.products.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("set attributes failed: %w", err)
	}
	return nil
}

// AttachTaxonomy adds terms under the named taxonomy, deduplicated.
func (s *MongoStore) AttachTaxonomy(ctx context.Context, id, taxonomy string, value interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("bad record id %q: %w", id, err)
	}

	_, err = s.products.UpdateByID(ctx, oid, bson.M{
		"$addToSet": bson.M{"taxonomies." + taxonomy: bson.M{"$each": termList(value)}},
	})
	if err != nil {
		return fmt.Errorf("attach taxonomy failed: %w", err)
	}
	return nil
}

// SetPrimaryImage marks the featured asset.
func (s *MongoStore) SetPrimaryImage(ctx context.Context, id, assetID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("bad record id %q: %w", id, err)
	}

	_, err = s.products.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"featured_image": assetID}})
	return err
}

// SetGallery stores the gallery as a comma-joined id string.
func (s *MongoStore) SetGallery(ctx context.Context, id string, assetIDs []string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("bad record id %q: %w", id, err)
	}

	_, err = s.products.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"gallery": joinIDs(assetIDs)}})
	return err
}

// FindByFilename matches stored asset paths containing the basename,
// case-sensitive, first match wins.
func (s *MongoStore) FindByFilename(ctx context.Context, name string) (string, error) {
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}

	filter := bson.M{"path": bson.M{"$regex": regexp.QuoteMeta(path.Base(name))}}
	err := s.assets.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("asset filename lookup failed: %w", err)
	}
	return doc.ID.Hex(), nil
}

// FindByPath matches the exact stored relative path.
func (s *MongoStore) FindByPath(ctx context.Context, relPath string) (string, error) {
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}

	err := s.assets.FindOne(ctx, bson.M{"path": relPath}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("asset path lookup failed: %w", err)
	}
	return doc.ID.Hex(), nil
}

// ImportFromURL downloads a remote asset and registers it in the library.
func (s *MongoStore) ImportFromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	size, err := discardBody(resp)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	res, err := s.assets.InsertOne(ctx, bson.M{
		"path":        path.Base(req.URL.Path),
		"source_url":  url,
		"size_bytes":  size,
		"imported_at": time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("asset insert failed: %w", err)
	}

	oid := res.InsertedID.(primitive.ObjectID)
	logger.Infof("Imported asset %s from %s", oid.Hex(), url)
	return oid.Hex(), nil
}

// EnsureSeedAssets registers asset paths that exist outside the import flow,
// used by setup scripts. Existing paths are left alone.
func (s *MongoStore) EnsureSeedAssets(ctx context.Context, paths []string) error {
	for _, p := range paths {
		opts := options.Update().SetUpsert(true)
		_, err := s.assets.UpdateOne(ctx,
			bson.M{"path": p},
			bson.M{"$setOnInsert": bson.M{"path": p, "imported_at": time.Now()}},
			opts,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
