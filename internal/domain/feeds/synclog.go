package feeds

import (
	"context"
	"time"

	"rentsync/internal/domain/availability"
	"rentsync/internal/domain/rooms"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// LogEntry records one sync attempt against a feed. Entries are append-only;
// failed attempts are recorded the same way successful ones are.
type LogEntry struct {
	ID              string
	RoomID          rooms.RoomID
	Platform        availability.Source
	Outcome         Outcome
	EventsProcessed int
	Error           string
	Duration        time.Duration
	At              time.Time
}

type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error
	// ListByRoom returns entries for the room, newest first, capped at limit.
	// A non-positive limit returns everything.
	ListByRoom(ctx context.Context, roomID rooms.RoomID, limit int) ([]*LogEntry, error)
}
