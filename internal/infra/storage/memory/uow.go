package memory

import (
	"context"
	"errors"

	"rentsync/internal/app/uow"
	domainavailability "rentsync/internal/domain/availability"
	domainbooking "rentsync/internal/domain/booking"
	domainfeeds "rentsync/internal/domain/feeds"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	RoomRepo    domainrooms.Repository
	BookingRepo domainbooking.Repository
	BlockedRepo domainschedule.Repository
	RuleRepo    domainpricing.Repository
	LedgerRepo  domainavailability.LedgerRepository
	FeedRepo    domainfeeds.Repository
	SyncLogRepo domainfeeds.LogRepository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over a fresh set of in-memory stores.
func NewFactory() Factory {
	return Factory{
		RoomRepo:    NewRoomRepository(),
		BookingRepo: NewBookingRepository(),
		BlockedRepo: NewBlockedPeriodRepository(),
		RuleRepo:    NewPricingRuleRepository(),
		LedgerRepo:  NewLedgerRepository(),
		FeedRepo:    NewFeedRepository(),
		SyncLogRepo: NewSyncLogRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.RoomRepo == nil || f.BookingRepo == nil || f.BlockedRepo == nil ||
		f.RuleRepo == nil || f.LedgerRepo == nil || f.FeedRepo == nil || f.SyncLogRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		rooms:    f.RoomRepo,
		bookings: f.BookingRepo,
		blocked:  f.BlockedRepo,
		rules:    f.RuleRepo,
		ledger:   f.LedgerRepo,
		feeds:    f.FeedRepo,
		syncLog:  f.SyncLogRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	rooms    domainrooms.Repository
	bookings domainbooking.Repository
	blocked  domainschedule.Repository
	rules    domainpricing.Repository
	ledger   domainavailability.LedgerRepository
	feeds    domainfeeds.Repository
	syncLog  domainfeeds.LogRepository
}

func (u *Unit) Rooms() domainrooms.Repository {
	return u.rooms
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) BlockedPeriods() domainschedule.Repository {
	return u.blocked
}

func (u *Unit) PricingRules() domainpricing.Repository {
	return u.rules
}

func (u *Unit) Ledger() domainavailability.LedgerRepository {
	return u.ledger
}

func (u *Unit) Feeds() domainfeeds.Repository {
	return u.feeds
}

func (u *Unit) SyncLog() domainfeeds.LogRepository {
	return u.syncLog
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
