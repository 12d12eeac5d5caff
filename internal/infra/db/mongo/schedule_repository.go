package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
	"rentsync/internal/domain/shared/daterange"
)

type BlockedPeriodRepository struct {
	col *mongo.Collection
}

func NewBlockedPeriodRepository(db *mongo.Database) *BlockedPeriodRepository {
	return &BlockedPeriodRepository{col: db.Collection("blocked_periods")}
}

func (r *BlockedPeriodRepository) ByID(ctx context.Context, id string) (*domainschedule.BlockedPeriod, error) {
	var doc blockedPeriodDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainschedule.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BlockedPeriodRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID) ([]*domainschedule.BlockedPeriod, error) {
	cur, err := r.col.Find(ctx, bson.M{"room_id": roomID}, options.Find().SetSort(bson.M{"range.start": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var periods []*domainschedule.BlockedPeriod
	for cur.Next(ctx) {
		var doc blockedPeriodDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		periods = append(periods, doc.toAggregate())
	}
	return periods, cur.Err()
}

func (r *BlockedPeriodRepository) Save(ctx context.Context, period *domainschedule.BlockedPeriod) error {
	doc := newBlockedPeriodDocument(period)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *BlockedPeriodRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainschedule.ErrNotFound
	}
	return nil
}

type blockedPeriodDocument struct {
	ID        string        `bson:"_id"`
	RoomID    string        `bson:"room_id"`
	Range     rangeDocument `bson:"range"`
	Reason    string        `bson:"reason"`
	Notes     string        `bson:"notes"`
	CreatedAt int64         `bson:"created_at"`
	UpdatedAt int64         `bson:"updated_at"`
}

func newBlockedPeriodDocument(p *domainschedule.BlockedPeriod) blockedPeriodDocument {
	return blockedPeriodDocument{
		ID:        p.ID,
		RoomID:    string(p.RoomID),
		Range:     rangeDocument{Start: p.Range.Start.UnixMilli(), End: p.Range.End.UnixMilli()},
		Reason:    p.Reason,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.UnixMilli(),
		UpdatedAt: p.UpdatedAt.UnixMilli(),
	}
}

func (d blockedPeriodDocument) toAggregate() *domainschedule.BlockedPeriod {
	return &domainschedule.BlockedPeriod{
		ID:        d.ID,
		RoomID:    domainrooms.RoomID(d.RoomID),
		Range:     daterange.DateRange{Start: timestampToTime(d.Range.Start), End: timestampToTime(d.Range.End)},
		Reason:    d.Reason,
		Notes:     d.Notes,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
