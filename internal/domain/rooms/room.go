package rooms

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentsync/internal/domain/shared/money"
)

var (
	ErrNotFound     = errors.New("rooms: room not found")
	ErrSlugRequired = errors.New("rooms: slug is required")
	ErrNameRequired = errors.New("rooms: name is required")
	ErrBasePrice    = errors.New("rooms: base price must be positive")
	ErrFeeRate      = errors.New("rooms: fee and tax rates must be non-negative")
)

type RoomID string

type RoomStatus string

const (
	RoomActive   RoomStatus = "active"
	RoomInactive RoomStatus = "inactive"
	RoomArchived RoomStatus = "archived"
)

// Room is the bookable unit. The calendar core treats it as an immutable
// snapshot for the duration of one computation; the property catalog owns
// its lifecycle.
type Room struct {
	ID             RoomID
	Slug           string
	Name           string
	BasePrice      money.Money
	Status         RoomStatus
	ServiceFeeRate float64
	TaxRate        float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Repository interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	BySlug(ctx context.Context, slug string) (*Room, error)
	List(ctx context.Context) ([]*Room, error)
	Save(ctx context.Context, room *Room) error
}

type CreateParams struct {
	ID             RoomID
	Slug           string
	Name           string
	BasePrice      money.Money
	ServiceFeeRate float64
	TaxRate        float64
	Now            time.Time
}

func NewRoom(params CreateParams) (*Room, error) {
	if strings.TrimSpace(params.Slug) == "" {
		return nil, ErrSlugRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if params.BasePrice.Amount <= 0 || params.BasePrice.Currency == "" {
		return nil, ErrBasePrice
	}
	if params.ServiceFeeRate < 0 || params.TaxRate < 0 {
		return nil, ErrFeeRate
	}
	now := params.Now.UTC()
	return &Room{
		ID:             params.ID,
		Slug:           params.Slug,
		Name:           params.Name,
		BasePrice:      params.BasePrice,
		Status:         RoomActive,
		ServiceFeeRate: params.ServiceFeeRate,
		TaxRate:        params.TaxRate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Bookable reports whether the room participates in availability queries.
func (r *Room) Bookable() bool {
	return r.Status == RoomActive
}
