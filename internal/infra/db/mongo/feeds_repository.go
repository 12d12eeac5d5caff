package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "rentsync/internal/domain/availability"
	domainfeeds "rentsync/internal/domain/feeds"
	domainrooms "rentsync/internal/domain/rooms"
)

type FeedRepository struct {
	col *mongo.Collection
}

func NewFeedRepository(db *mongo.Database) *FeedRepository {
	return &FeedRepository{col: db.Collection("calendar_feeds")}
}

func (r *FeedRepository) ByRoomPlatform(ctx context.Context, roomID domainrooms.RoomID, platform domainavailability.Source) (*domainfeeds.Feed, error) {
	var doc feedDocument
	filter := bson.M{"room_id": roomID, "platform": platform}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainfeeds.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *FeedRepository) ListEnabled(ctx context.Context, roomIDs []domainrooms.RoomID) ([]*domainfeeds.Feed, error) {
	filter := bson.M{"enabled": true}
	if roomIDs != nil {
		filter["room_id"] = bson.M{"$in": roomIDs}
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "room_id", Value: 1}, {Key: "platform", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var feeds []*domainfeeds.Feed
	for cur.Next(ctx) {
		var doc feedDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		feeds = append(feeds, doc.toAggregate())
	}
	return feeds, cur.Err()
}

func (r *FeedRepository) Save(ctx context.Context, feed *domainfeeds.Feed) error {
	doc := newFeedDocument(feed)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type feedDocument struct {
	ID           string `bson:"_id"`
	RoomID       string `bson:"room_id"`
	Platform     string `bson:"platform"`
	URL          string `bson:"url"`
	Enabled      bool   `bson:"enabled"`
	LastSyncedAt *int64 `bson:"last_synced_at,omitempty"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func newFeedDocument(f *domainfeeds.Feed) feedDocument {
	doc := feedDocument{
		ID:        f.ID,
		RoomID:    string(f.RoomID),
		Platform:  string(f.Platform),
		URL:       f.URL,
		Enabled:   f.Enabled,
		CreatedAt: f.CreatedAt.UnixMilli(),
		UpdatedAt: f.UpdatedAt.UnixMilli(),
	}
	if f.LastSyncedAt != nil {
		ms := f.LastSyncedAt.UnixMilli()
		doc.LastSyncedAt = &ms
	}
	return doc
}

func (d feedDocument) toAggregate() *domainfeeds.Feed {
	feed := &domainfeeds.Feed{
		ID:        d.ID,
		RoomID:    domainrooms.RoomID(d.RoomID),
		Platform:  domainavailability.Source(d.Platform),
		URL:       d.URL,
		Enabled:   d.Enabled,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
	if d.LastSyncedAt != nil {
		t := timestampToTime(*d.LastSyncedAt)
		feed.LastSyncedAt = &t
	}
	return feed
}

// SyncLogRepository stores the append-only sync run history.
type SyncLogRepository struct {
	col *mongo.Collection
}

func NewSyncLogRepository(db *mongo.Database) *SyncLogRepository {
	return &SyncLogRepository{col: db.Collection("sync_log")}
}

func (r *SyncLogRepository) Append(ctx context.Context, entry *domainfeeds.LogEntry) error {
	_, err := r.col.InsertOne(ctx, newLogDocument(entry))
	return err
}

func (r *SyncLogRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID, limit int) ([]*domainfeeds.LogEntry, error) {
	opts := options.Find().SetSort(bson.M{"at": -1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var entries []*domainfeeds.LogEntry
	for cur.Next(ctx) {
		var doc logDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, doc.toAggregate())
	}
	return entries, cur.Err()
}

type logDocument struct {
	ID              string `bson:"_id"`
	RoomID          string `bson:"room_id"`
	Platform        string `bson:"platform"`
	Outcome         string `bson:"outcome"`
	EventsProcessed int    `bson:"events_processed"`
	Error           string `bson:"error,omitempty"`
	DurationMS      int64  `bson:"duration_ms"`
	At              int64  `bson:"at"`
}

func newLogDocument(e *domainfeeds.LogEntry) logDocument {
	return logDocument{
		ID:              e.ID,
		RoomID:          string(e.RoomID),
		Platform:        string(e.Platform),
		Outcome:         string(e.Outcome),
		EventsProcessed: e.EventsProcessed,
		Error:           e.Error,
		DurationMS:      e.Duration.Milliseconds(),
		At:              e.At.UnixMilli(),
	}
}

func (d logDocument) toAggregate() *domainfeeds.LogEntry {
	return &domainfeeds.LogEntry{
		ID:              d.ID,
		RoomID:          domainrooms.RoomID(d.RoomID),
		Platform:        domainavailability.Source(d.Platform),
		Outcome:         domainfeeds.Outcome(d.Outcome),
		EventsProcessed: d.EventsProcessed,
		Error:           d.Error,
		Duration:        time.Duration(d.DurationMS) * time.Millisecond,
		At:              timestampToTime(d.At),
	}
}
