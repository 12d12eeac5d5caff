package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/domain/shared/money"
)

var ErrUnknownSource = errors.New("availability: unknown source")

// Source is the origin of a per-day ledger row.
type Source string

const (
	SourceDirect  Source = "direct"
	SourceManual  Source = "manual"
	SourceAirbnb  Source = "airbnb"
	SourceExpedia Source = "expedia"
	SourceBooking Source = "booking"
)

// ParseSource validates an external source tag.
func ParseSource(value string) (Source, error) {
	switch Source(value) {
	case SourceDirect, SourceManual, SourceAirbnb, SourceExpedia, SourceBooking:
		return Source(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, value)
}

// SyncPlatforms are the external feeds a room calendar can be synced from.
var SyncPlatforms = []Source{SourceAirbnb, SourceExpedia, SourceBooking}

// sourceRank orders sources for per-day merging when several sources hold
// rows on the same date. Lower ranks win; manual blocks outrank anything a
// platform feed imports.
func sourceRank(s Source) int {
	switch s {
	case SourceManual:
		return 0
	case SourceDirect:
		return 1
	case SourceAirbnb:
		return 2
	case SourceExpedia:
		return 3
	case SourceBooking:
		return 4
	}
	return 5
}

// SyncRecord is one row of the materialized per-day availability ledger.
// There is exactly one row per (room, date, source); writes are upserts
// keyed on that triple, so each source owns its own rows and a resync for
// one platform never disturbs another source's days.
type SyncRecord struct {
	ID                string
	RoomID            rooms.RoomID
	Date              time.Time
	Available         bool
	Blocked           bool
	Source            Source
	ExternalBookingID string
	PriceOverride     *money.Money
}

// LedgerRepository stores the per-day ledger the aggregator reads and the
// import adapter writes.
type LedgerRepository interface {
	// Range returns every row for the room with Start <= date < End.
	Range(ctx context.Context, roomID rooms.RoomID, window daterange.DateRange) ([]*SyncRecord, error)
	// BlockedBySource returns the room's blocked rows for one source,
	// ordered by date.
	BlockedBySource(ctx context.Context, roomID rooms.RoomID, source Source) ([]*SyncRecord, error)
	// Upsert writes one row keyed on (room, date, source), preserving the
	// existing row id when the triple already exists.
	Upsert(ctx context.Context, record *SyncRecord) error
	// ReplaceSource swaps the room's entire row set for one source with the
	// provided records as a single step; a reader never observes the
	// deleted-but-not-reinserted intermediate state, and rows owned by
	// other sources are left untouched.
	ReplaceSource(ctx context.Context, roomID rooms.RoomID, source Source, records []*SyncRecord) error
}
