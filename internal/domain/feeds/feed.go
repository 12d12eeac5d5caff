package feeds

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentsync/internal/domain/availability"
	"rentsync/internal/domain/rooms"
)

var (
	ErrNotFound    = errors.New("feeds: feed not found")
	ErrURLRequired = errors.New("feeds: url is required")
)

// Feed is a registered external calendar subscription for one
// (room, platform) pair. LastSyncedAt moves forward only after a sync run
// commits successfully.
type Feed struct {
	ID           string
	RoomID       rooms.RoomID
	Platform     availability.Source
	URL          string
	Enabled      bool
	LastSyncedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByRoomPlatform(ctx context.Context, roomID rooms.RoomID, platform availability.Source) (*Feed, error)
	// ListEnabled returns enabled feeds, optionally restricted to the given
	// rooms. A nil filter means every room.
	ListEnabled(ctx context.Context, roomIDs []rooms.RoomID) ([]*Feed, error)
	Save(ctx context.Context, feed *Feed) error
}

type CreateParams struct {
	ID       string
	RoomID   rooms.RoomID
	Platform availability.Source
	URL      string
	Now      time.Time
}

func NewFeed(params CreateParams) (*Feed, error) {
	if strings.TrimSpace(params.URL) == "" {
		return nil, ErrURLRequired
	}
	now := params.Now.UTC()
	return &Feed{
		ID:        params.ID,
		RoomID:    params.RoomID,
		Platform:  params.Platform,
		URL:       params.URL,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
