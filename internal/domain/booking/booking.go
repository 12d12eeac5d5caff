package booking

import (
	"context"
	"errors"
	"time"

	"rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

var ErrNotFound = errors.New("booking: not found")

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Booking is a reservation record created by the reservation flow. The
// calendar core only reads it: a confirmed booking holds its stay range on
// the room's calendar, everything else is invisible to availability.
type Booking struct {
	ID               BookingID
	RoomID           rooms.RoomID
	ConfirmationCode string
	Stay             daterange.DateRange
	Guests           int
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BlocksCalendar reports whether the booking holds its dates. Pending
// bookings do not block; holding dates while payment is in flight is a
// product decision that stays out of the calendar core.
func (b *Booking) BlocksCalendar() bool {
	return b.Status == StatusConfirmed
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// ConfirmedOverlapping returns confirmed bookings whose stay shares at
	// least one day with the window.
	ConfirmedOverlapping(ctx context.Context, roomID rooms.RoomID, window daterange.DateRange) ([]*Booking, error)
	Save(ctx context.Context, booking *Booking) error
}
