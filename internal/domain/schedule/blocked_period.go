package schedule

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

var (
	ErrNotFound       = errors.New("schedule: blocked period not found")
	ErrReasonRequired = errors.New("schedule: reason is required")
)

// BlockedPeriod is a manually entered unavailability interval. Active periods
// for one room never pairwise-overlap; the conflict check runs inside the
// same critical section as the write.
type BlockedPeriod struct {
	ID        string
	RoomID    rooms.RoomID
	Range     daterange.DateRange
	Reason    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id string) (*BlockedPeriod, error)
	ListByRoom(ctx context.Context, roomID rooms.RoomID) ([]*BlockedPeriod, error)
	Save(ctx context.Context, period *BlockedPeriod) error
	Delete(ctx context.Context, id string) error
}

type CreateParams struct {
	ID     string
	RoomID rooms.RoomID
	Range  daterange.DateRange
	Reason string
	Notes  string
	Now    time.Time
}

func NewBlockedPeriod(params CreateParams) (*BlockedPeriod, error) {
	if strings.TrimSpace(params.Reason) == "" {
		return nil, ErrReasonRequired
	}
	now := params.Now.UTC()
	return &BlockedPeriod{
		ID:        params.ID,
		RoomID:    params.RoomID,
		Range:     params.Range,
		Reason:    params.Reason,
		Notes:     params.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Label identifies the period in conflict messages.
func (p *BlockedPeriod) Label() string {
	return p.Reason + " " + p.Range.String()
}
