package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentsync/internal/app/uow"
	domainavailability "rentsync/internal/domain/availability"
	domainbooking "rentsync/internal/domain/booking"
	domainfeeds "rentsync/internal/domain/feeds"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	RoomRepo    domainrooms.Repository
	BookingRepo domainbooking.Repository
	BlockedRepo domainschedule.Repository
	RuleRepo    domainpricing.Repository
	LedgerRepo  domainavailability.LedgerRepository
	FeedRepo    domainfeeds.Repository
	SyncLogRepo domainfeeds.LogRepository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds a factory whose repositories share the given database.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:          db,
		RoomRepo:    NewRoomRepository(db),
		BookingRepo: NewBookingRepository(db),
		BlockedRepo: NewBlockedPeriodRepository(db),
		RuleRepo:    NewPricingRuleRepository(db),
		LedgerRepo:  NewLedgerRepository(db),
		FeedRepo:    NewFeedRepository(db),
		SyncLogRepo: NewSyncLogRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:       f.DB,
		session:  session,
		rooms:    f.RoomRepo,
		bookings: f.BookingRepo,
		blocked:  f.BlockedRepo,
		rules:    f.RuleRepo,
		ledger:   f.LedgerRepo,
		feeds:    f.FeedRepo,
		syncLog:  f.SyncLogRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
