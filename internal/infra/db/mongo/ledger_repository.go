package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "rentsync/internal/domain/availability"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/domain/shared/money"
)

// LedgerRepository persists the per-day availability ledger. The factory
// creates a unique index on (room_id, date, source) at startup; upserts key
// on that triple so a source never duplicates a day and never touches
// another source's rows.
type LedgerRepository struct {
	col *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{col: db.Collection("availability_ledger")}
}

func (r *LedgerRepository) Range(ctx context.Context, roomID domainrooms.RoomID, window daterange.DateRange) ([]*domainavailability.SyncRecord, error) {
	filter := bson.M{
		"room_id": roomID,
		"date":    bson.M{"$gte": window.Start.UnixMilli(), "$lt": window.End.UnixMilli()},
	}
	return r.find(ctx, filter)
}

func (r *LedgerRepository) BlockedBySource(ctx context.Context, roomID domainrooms.RoomID, source domainavailability.Source) ([]*domainavailability.SyncRecord, error) {
	filter := bson.M{
		"room_id": roomID,
		"source":  source,
		"blocked": true,
	}
	return r.find(ctx, filter)
}

func (r *LedgerRepository) find(ctx context.Context, filter bson.M) ([]*domainavailability.SyncRecord, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "source", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var records []*domainavailability.SyncRecord
	for cur.Next(ctx) {
		var doc ledgerDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, doc.toAggregate())
	}
	return records, cur.Err()
}

func (r *LedgerRepository) Upsert(ctx context.Context, record *domainavailability.SyncRecord) error {
	doc := newLedgerDocument(record)
	filter := bson.M{"room_id": doc.RoomID, "date": doc.Date, "source": doc.Source}
	update := bson.M{
		"$set": bson.M{
			"available":           doc.Available,
			"blocked":             doc.Blocked,
			"external_booking_id": doc.ExternalBookingID,
			"price_cents":         doc.PriceCents,
			"price_currency":      doc.PriceCurrency,
		},
		"$setOnInsert": bson.M{"_id": doc.ID},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, filter, update, opts)
	return err
}

// ReplaceSource deletes the room's rows for the source and inserts the new
// set. It must run inside a session transaction so readers never observe
// the intermediate state.
func (r *LedgerRepository) ReplaceSource(ctx context.Context, roomID domainrooms.RoomID, source domainavailability.Source, records []*domainavailability.SyncRecord) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"room_id": roomID, "source": source}); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]any, 0, len(records))
	for _, rec := range records {
		docs = append(docs, newLedgerDocument(rec))
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

type ledgerDocument struct {
	ID                string `bson:"_id"`
	RoomID            string `bson:"room_id"`
	Date              int64  `bson:"date"`
	Available         bool   `bson:"available"`
	Blocked           bool   `bson:"blocked"`
	Source            string `bson:"source"`
	ExternalBookingID string `bson:"external_booking_id,omitempty"`
	PriceCents        *int64 `bson:"price_cents,omitempty"`
	PriceCurrency     string `bson:"price_currency,omitempty"`
}

func newLedgerDocument(rec *domainavailability.SyncRecord) ledgerDocument {
	doc := ledgerDocument{
		ID:                rec.ID,
		RoomID:            string(rec.RoomID),
		Date:              rec.Date.UnixMilli(),
		Available:         rec.Available,
		Blocked:           rec.Blocked,
		Source:            string(rec.Source),
		ExternalBookingID: rec.ExternalBookingID,
	}
	if rec.PriceOverride != nil {
		cents := rec.PriceOverride.Amount
		doc.PriceCents = &cents
		doc.PriceCurrency = rec.PriceOverride.Currency
	}
	return doc
}

func (d ledgerDocument) toAggregate() *domainavailability.SyncRecord {
	rec := &domainavailability.SyncRecord{
		ID:                d.ID,
		RoomID:            domainrooms.RoomID(d.RoomID),
		Date:              timestampToTime(d.Date),
		Available:         d.Available,
		Blocked:           d.Blocked,
		Source:            domainavailability.Source(d.Source),
		ExternalBookingID: d.ExternalBookingID,
	}
	if d.PriceCents != nil {
		price := money.Money{Amount: *d.PriceCents, Currency: d.PriceCurrency}
		rec.PriceOverride = &price
	}
	return rec
}
