package uow

import (
	"context"

	domainavailability "rentsync/internal/domain/availability"
	domainbooking "rentsync/internal/domain/booking"
	domainfeeds "rentsync/internal/domain/feeds"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Rooms() domainrooms.Repository
	Bookings() domainbooking.Repository
	BlockedPeriods() domainschedule.Repository
	PricingRules() domainpricing.Repository
	Ledger() domainavailability.LedgerRepository
	Feeds() domainfeeds.Repository
	SyncLog() domainfeeds.LogRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
