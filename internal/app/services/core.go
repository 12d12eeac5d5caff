// Package services holds the application core: calendar queries, quote
// calculation, manual block and pricing rule management, and the sync
// pipeline against external platform feeds.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rentsync/internal/app/uow"
)

var ErrUnitOfWorkRequired = errors.New("services: unit of work factory required")

// Fetcher downloads a calendar feed body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Publisher emits sync events to the broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Cache stores rendered calendar responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, prefix string) error
}

// Uploader publishes exported feeds to object storage.
type Uploader interface {
	PublishFeed(ctx context.Context, slug, payload string) (publicURL string, err error)
}

// Core wires the calendar use cases onto their ports. Publisher, Cache and
// Uploader are optional; a nil port disables that integration.
type Core struct {
	uowFactory uow.UoWFactory
	fetcher    Fetcher
	publisher  Publisher
	cache      Cache
	uploader   Uploader
	logger     *slog.Logger

	locks        *roomLocks
	now          func() time.Time
	newID        func() string
	topicPrefix  string
	fetchTimeout time.Duration
}

type Options struct {
	UoWFactory   uow.UoWFactory
	Fetcher      Fetcher
	Publisher    Publisher
	Cache        Cache
	Uploader     Uploader
	Logger       *slog.Logger
	Now          func() time.Time
	NewID        func() string
	TopicPrefix  string
	FetchTimeout time.Duration
}

func New(opts Options) (*Core, error) {
	if opts.UoWFactory == nil {
		return nil, ErrUnitOfWorkRequired
	}
	c := &Core{
		uowFactory:   opts.UoWFactory,
		fetcher:      opts.Fetcher,
		publisher:    opts.Publisher,
		cache:        opts.Cache,
		uploader:     opts.Uploader,
		logger:       opts.Logger,
		locks:        newRoomLocks(),
		now:          opts.Now,
		newID:        opts.NewID,
		topicPrefix:  opts.TopicPrefix,
		fetchTimeout: opts.FetchTimeout,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = 30 * time.Second
	}
	return c, nil
}

// withUnit runs fn inside a transaction boundary, committing on success and
// rolling back otherwise.
func (c *Core) withUnit(ctx context.Context, opts uow.TxOptions, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	unit, err := c.uowFactory.Begin(ctx, opts)
	if err != nil {
		return err
	}
	ctx = uow.ContextWithUnitOfWork(ctx, unit)
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		ctx = injector.InjectContext(ctx)
	}
	if err := fn(ctx, unit); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	return unit.Commit(ctx)
}
