package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	usersCollection    = "users"
	devicesCollection  = "devices"
	readingsCollection = "sensordatas"
)

// ensureIndexes creates indexes in the background. Failure only degrades
// performance and uniqueness enforcement, so it is logged and not returned.
func ensureIndexes(collection *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := collection.Indexes().CreateMany(ctx, models)
		if err != nil {
			logger.Error("Failed to create indexes",
				zap.String("collection", collection.Name()),
				zap.Error(err))
		} else {
			logger.Info("Indexes created successfully",
				zap.String("collection", collection.Name()))
		}
	}()
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "access_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
}

func deviceIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "device_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
	}
}

func readingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "device_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
}
