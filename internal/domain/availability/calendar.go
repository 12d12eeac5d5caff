package availability

import (
	"time"

	"rentsync/internal/domain/booking"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/domain/shared/money"
)

// SourceDirectBooking tags calendar days held by a confirmed reservation.
// It only ever appears on computed days, never on ledger rows.
const SourceDirectBooking = "direct-booking"

// BookingSummary carries the display fields of the booking holding a day.
type BookingSummary struct {
	BookingID        booking.BookingID
	ConfirmationCode string
	Stay             daterange.DateRange
}

// CalendarDay is one computed day of a room's availability view. It is
// produced fresh on every query and never mutated in place.
type CalendarDay struct {
	Date      time.Time
	Available bool
	Blocked   bool
	Price     money.Money
	Source    string
	Booking   *BookingSummary
}

// dayStateKind orders the three per-day precedence levels. A higher kind
// always wins, so precedence is enforced by construction rather than by
// nested conditionals per day.
type dayStateKind int

const (
	dayOpen dayStateKind = iota
	dayLedger
	dayBooked
)

type dayState struct {
	kind    dayStateKind
	record  *SyncRecord
	booking *booking.Booking
}

// BuildCalendar merges confirmed bookings and ledger rows into one
// CalendarDay per day of the half-open window. Precedence per day, highest
// first: confirmed booking, ledger row, default-available at the base price.
// When several sources hold a row on the same date, a blocked row beats an
// available one and ties break on source rank, so the winner is always
// deterministic. Inputs are read only; the result is freshly allocated.
func BuildCalendar(window daterange.DateRange, basePrice money.Money, bookings []*booking.Booking, records []*SyncRecord) []CalendarDay {
	states := make(map[string]dayState, window.Nights())

	for _, rec := range records {
		if !window.Contains(rec.Date) {
			continue
		}
		key := daterange.FormatDay(rec.Date)
		if prev, ok := states[key]; ok && !outranks(rec, prev.record) {
			continue
		}
		states[key] = dayState{kind: dayLedger, record: rec}
	}
	for _, b := range bookings {
		if !b.BlocksCalendar() {
			continue
		}
		overlap, ok := b.Stay.Intersect(window)
		if !ok {
			continue
		}
		for _, day := range overlap.Days() {
			states[daterange.FormatDay(day)] = dayState{kind: dayBooked, booking: b}
		}
	}

	days := make([]CalendarDay, 0, window.Nights())
	for _, date := range window.Days() {
		state := states[daterange.FormatDay(date)]
		days = append(days, resolveDay(date, basePrice, state))
	}
	return days
}

// outranks decides which of two same-day ledger rows drives the calendar
// view: a blocking row beats an available one, then the lower source rank
// wins.
func outranks(rec, prev *SyncRecord) bool {
	recBlocks := rec.Blocked || !rec.Available
	prevBlocks := prev.Blocked || !prev.Available
	if recBlocks != prevBlocks {
		return recBlocks
	}
	return sourceRank(rec.Source) < sourceRank(prev.Source)
}

func resolveDay(date time.Time, basePrice money.Money, state dayState) CalendarDay {
	switch state.kind {
	case dayBooked:
		b := state.booking
		return CalendarDay{
			Date:    date,
			Blocked: true,
			Price:   basePrice,
			Source:  SourceDirectBooking,
			Booking: &BookingSummary{
				BookingID:        b.ID,
				ConfirmationCode: b.ConfirmationCode,
				Stay:             b.Stay,
			},
		}
	case dayLedger:
		rec := state.record
		price := basePrice
		if rec.PriceOverride != nil {
			price = *rec.PriceOverride
		}
		if rec.Blocked || !rec.Available {
			return CalendarDay{
				Date:    date,
				Blocked: true,
				Price:   price,
				Source:  string(rec.Source),
			}
		}
		return CalendarDay{
			Date:      date,
			Available: true,
			Price:     price,
			Source:    string(rec.Source),
		}
	default:
		return CalendarDay{
			Date:      date,
			Available: true,
			Price:     basePrice,
			Source:    string(SourceDirect),
		}
	}
}
