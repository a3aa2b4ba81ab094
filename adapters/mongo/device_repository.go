package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
)

type DeviceRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewDeviceRepository creates a new MongoDB device repository
func NewDeviceRepository(db *mongo.Database, logger *zap.Logger) *DeviceRepository {
	collection := db.Collection(devicesCollection)
	ensureIndexes(collection, deviceIndexes(), logger)
	return &DeviceRepository{
		collection: collection,
		logger:     logger,
	}
}

// Upsert implements repositories.DeviceRepository
func (r *DeviceRepository) Upsert(ctx context.Context, deviceID, name, ownerID string, loc entities.GeoPoint) (*entities.Device, error) {
	if deviceID == "" {
		return nil, errors.New("device ID cannot be empty")
	}

	now := time.Now().UTC()
	setOnInsert := bson.M{
		"device_id":  deviceID,
		"name":       name,
		"created_at": now,
	}
	if ownerID != "" {
		setOnInsert["owner_id"] = ownerID
	}
	update := bson.M{
		"$set": bson.M{
			"location":   loc,
			"updated_at": now,
		},
		"$setOnInsert": setOnInsert,
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var device entities.Device
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"device_id": deviceID}, update, opts).Decode(&device)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device %s: %w", deviceID, err)
	}
	return &device, nil
}

// GetByDeviceID implements repositories.DeviceRepository
func (r *DeviceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*entities.Device, error) {
	var device entities.Device
	err := r.collection.FindOne(ctx, bson.M{"device_id": deviceID}).Decode(&device)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get device %s: %w", deviceID, err)
	}
	return &device, nil
}

// List implements repositories.DeviceRepository
func (r *DeviceRepository) List(ctx context.Context) ([]*entities.Device, error) {
	opts := options.Find().SetSort(bson.D{{Key: "device_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer cursor.Close(ctx)

	devices := []*entities.Device{}
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, fmt.Errorf("failed to decode devices: %w", err)
	}
	return devices, nil
}
