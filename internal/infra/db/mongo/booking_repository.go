package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "rentsync/internal/domain/booking"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// ConfirmedOverlapping uses the half-open overlap predicate: a stay overlaps
// the window when stay.start < window.end and window.start < stay.end.
func (r *BookingRepository) ConfirmedOverlapping(ctx context.Context, roomID domainrooms.RoomID, window daterange.DateRange) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"room_id":    roomID,
		"status":     domainbooking.StatusConfirmed,
		"stay.start": bson.M{"$lt": window.End.UnixMilli()},
		"stay.end":   bson.M{"$gt": window.Start.UnixMilli()},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.M{"stay.start": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var bookings []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		bookings = append(bookings, doc.toAggregate())
	}
	return bookings, cur.Err()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type bookingDocument struct {
	ID               string        `bson:"_id"`
	RoomID           string        `bson:"room_id"`
	ConfirmationCode string        `bson:"confirmation_code"`
	Stay             rangeDocument `bson:"stay"`
	Guests           int           `bson:"guests"`
	Status           string        `bson:"status"`
	CreatedAt        int64         `bson:"created_at"`
	UpdatedAt        int64         `bson:"updated_at"`
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:               string(b.ID),
		RoomID:           string(b.RoomID),
		ConfirmationCode: b.ConfirmationCode,
		Stay:             rangeDocument{Start: b.Stay.Start.UnixMilli(), End: b.Stay.End.UnixMilli()},
		Guests:           b.Guests,
		Status:           string(b.Status),
		CreatedAt:        b.CreatedAt.UnixMilli(),
		UpdatedAt:        b.UpdatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:               domainbooking.BookingID(d.ID),
		RoomID:           domainrooms.RoomID(d.RoomID),
		ConfirmationCode: d.ConfirmationCode,
		Stay:             daterange.DateRange{Start: timestampToTime(d.Stay.Start), End: timestampToTime(d.Stay.End)},
		Guests:           d.Guests,
		Status:           domainbooking.Status(d.Status),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
	}
}
