package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. Called once at
// startup; CreateOne is a no-op for indexes that already exist.
func (f Factory) EnsureIndexes(ctx context.Context) error {
	if f.DB == nil {
		return ErrUnitOfWorkNotConfigured
	}

	ledger := f.DB.Collection("availability_ledger")
	if _, err := ledger.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "date", Value: 1}, {Key: "source", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo: create ledger index: %w", err)
	}

	feeds := f.DB.Collection("calendar_feeds")
	if _, err := feeds.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "platform", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo: create feed index: %w", err)
	}

	syncLog := f.DB.Collection("sync_log")
	if _, err := syncLog.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("mongo: create sync log index: %w", err)
	}
	return nil
}
