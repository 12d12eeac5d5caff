package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/money"
)

type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection("rooms")}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrooms.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RoomRepository) BySlug(ctx context.Context, slug string) (*domainrooms.Room, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrooms.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RoomRepository) List(ctx context.Context) ([]*domainrooms.Room, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rooms []*domainrooms.Room
	for cur.Next(ctx) {
		var doc roomDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rooms = append(rooms, doc.toAggregate())
	}
	return rooms, cur.Err()
}

func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	doc := newRoomDocument(room)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type roomDocument struct {
	ID             string  `bson:"_id"`
	Slug           string  `bson:"slug"`
	Name           string  `bson:"name"`
	BasePriceCents int64   `bson:"base_price_cents"`
	Currency       string  `bson:"currency"`
	Status         string  `bson:"status"`
	ServiceFeeRate float64 `bson:"service_fee_rate"`
	TaxRate        float64 `bson:"tax_rate"`
	CreatedAt      int64   `bson:"created_at"`
	UpdatedAt      int64   `bson:"updated_at"`
}

func newRoomDocument(room *domainrooms.Room) roomDocument {
	return roomDocument{
		ID:             string(room.ID),
		Slug:           room.Slug,
		Name:           room.Name,
		BasePriceCents: room.BasePrice.Amount,
		Currency:       room.BasePrice.Currency,
		Status:         string(room.Status),
		ServiceFeeRate: room.ServiceFeeRate,
		TaxRate:        room.TaxRate,
		CreatedAt:      room.CreatedAt.UnixMilli(),
		UpdatedAt:      room.UpdatedAt.UnixMilli(),
	}
}

func (d roomDocument) toAggregate() *domainrooms.Room {
	return &domainrooms.Room{
		ID:             domainrooms.RoomID(d.ID),
		Slug:           d.Slug,
		Name:           d.Name,
		BasePrice:      money.Money{Amount: d.BasePriceCents, Currency: d.Currency},
		Status:         domainrooms.RoomStatus(d.Status),
		ServiceFeeRate: d.ServiceFeeRate,
		TaxRate:        d.TaxRate,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
