package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

const (
	listingsCollection = "listings"
	countersCollection = "counters"
)

type listingDocument struct {
	ID         string               `bson:"_id"`
	Seq        int64                `bson:"seq"`
	MatchEvent string               `bson:"matchEvent"`
	Item       domain.InventoryItem `bson:"item"`
	UpdatedAt  time.Time            `bson:"updatedAt"`
}

// MongoAdapter stores one document per listing. seq comes from a counter
// document so List returns listings in insertion order.
type MongoAdapter struct {
	listings *mongo.Collection
	counters *mongo.Collection
}

func NewMongoAdapter(ctx context.Context, db *mongo.Database) (*MongoAdapter, error) {
	m := &MongoAdapter{
		listings: db.Collection(listingsCollection),
		counters: db.Collection(countersCollection),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MongoAdapter) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "matchEvent", Value: 1}}},
	}
	if _, err := m.listings.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create listing indexes: %w", err)
	}
	return nil
}

func (m *MongoAdapter) nextSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": listingsCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next listing seq: %w", err)
	}
	return counter.Seq, nil
}

func (m *MongoAdapter) List(ctx context.Context) ([]domain.InventoryItem, error) {
	cursor, err := m.listings.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	items := make([]domain.InventoryItem, 0, len(docs))
	for _, d := range docs {
		it := d.Item
		it.ID = d.ID
		items = append(items, it)
	}
	return items, nil
}

func (m *MongoAdapter) Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	seq, err := m.nextSeq(ctx)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	_, err = m.listings.InsertOne(ctx, listingDocument{
		ID:         item.ID,
		Seq:        seq,
		MatchEvent: item.MatchEvent,
		Item:       item,
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
		}
		return domain.InventoryItem{}, fmt.Errorf("failed to save listing: %w", err)
	}
	return item, nil
}

func (m *MongoAdapter) Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	update := bson.M{
		"$set": bson.M{
			"matchEvent": item.MatchEvent,
			"item":       item,
			"updatedAt":  time.Now(),
		},
	}

	result, err := m.listings.UpdateOne(ctx, bson.M{"_id": item.ID}, update)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("failed to update listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}
	return item, nil
}

func (m *MongoAdapter) Delete(ctx context.Context, id string) error {
	_, err := m.listings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return nil
}
