package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
)

type ReadingRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewReadingRepository creates a new MongoDB reading repository
func NewReadingRepository(db *mongo.Database, logger *zap.Logger) *ReadingRepository {
	collection := db.Collection(readingsCollection)
	ensureIndexes(collection, readingIndexes(), logger)
	return &ReadingRepository{
		collection: collection,
		logger:     logger,
	}
}

// Insert implements repositories.ReadingRepository
func (r *ReadingRepository) Insert(ctx context.Context, reading *entities.Reading) error {
	if reading == nil {
		return errors.New("reading cannot be nil")
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	if err := reading.Validate(); err != nil {
		return err
	}

	result, err := r.collection.InsertOne(ctx, reading)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reading.ID = oid
	}
	return nil
}

func queryFilter(ownerID, deviceID string, from, to time.Time) bson.M {
	filter := bson.M{}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}
	if deviceID != "" {
		filter["device_id"] = deviceID
	}
	if !from.IsZero() || !to.IsZero() {
		ts := bson.M{}
		if !from.IsZero() {
			ts["$gte"] = from
		}
		if !to.IsZero() {
			ts["$lte"] = to
		}
		filter["timestamp"] = ts
	}
	return filter
}

var newestFirst = bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}

// Find implements repositories.ReadingRepository
func (r *ReadingRepository) Find(ctx context.Context, q repositories.ReadingQuery) ([]*entities.Reading, int64, error) {
	filter := queryFilter(q.OwnerID, q.DeviceID, q.From, q.To)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count readings: %w", err)
	}

	opts := options.Find().SetSort(newestFirst)
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find readings: %w", err)
	}
	defer cursor.Close(ctx)

	readings := []*entities.Reading{}
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode readings: %w", err)
	}
	return readings, total, nil
}

// LatestPerDevice implements repositories.ReadingRepository
func (r *ReadingRepository) LatestPerDevice(ctx context.Context, f repositories.LatestFilter) ([]*entities.Reading, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: queryFilter(f.OwnerID, f.DeviceID, time.Time{}, time.Time{})}},
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$device_id",
			"latest": bson.M{"$first": "$$ROOT"},
		}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$latest"}}},
		{{Key: "$sort", Value: bson.D{{Key: "device_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate latest readings: %w", err)
	}
	defer cursor.Close(ctx)

	readings := []*entities.Reading{}
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, fmt.Errorf("failed to decode latest readings: %w", err)
	}
	return readings, nil
}

// DeleteByOwner implements repositories.ReadingRepository
func (r *ReadingRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	if ownerID == "" {
		return 0, errors.New("owner ID cannot be empty")
	}
	result, err := r.collection.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete readings of %s: %w", ownerID, err)
	}
	r.logger.Info("Deleted readings", zap.String("owner_id", ownerID), zap.Int64("count", result.DeletedCount))
	return result.DeletedCount, nil
}
