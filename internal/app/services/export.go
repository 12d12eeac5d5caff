package services

import (
	"context"
	"errors"

	"rentsync/internal/app/uow"
	domainavailability "rentsync/internal/domain/availability"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/infra/ical"
)

var ErrUploaderRequired = errors.New("services: uploader not configured")

// ExportCalendar renders the room's direct-booking days as an iCalendar
// feed for external platforms to subscribe to. Only rows written by the
// direct reservation flow are exported; imported platform days and manual
// blocks never round-trip back out. Identical ledger state always yields
// identical bytes.
func (c *Core) ExportCalendar(ctx context.Context, roomID domainrooms.RoomID) (string, error) {
	var records []*domainavailability.SyncRecord
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Rooms().ByID(ctx, roomID); err != nil {
			return err
		}
		var err error
		records, err = unit.Ledger().BlockedBySource(ctx, roomID, domainavailability.SourceDirect)
		return err
	})
	if err != nil {
		return "", err
	}
	return ical.Generate(groupRuns(records)), nil
}

// PublishCalendar exports the room's feed and uploads it to object storage
// under a stable key, returning the public URL platforms can poll.
func (c *Core) PublishCalendar(ctx context.Context, roomID domainrooms.RoomID) (string, error) {
	if c.uploader == nil {
		return "", ErrUploaderRequired
	}

	var room *domainrooms.Room
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		var err error
		room, err = unit.Rooms().ByID(ctx, roomID)
		return err
	})
	if err != nil {
		return "", err
	}

	payload, err := c.ExportCalendar(ctx, roomID)
	if err != nil {
		return "", err
	}
	url, err := c.uploader.PublishFeed(ctx, room.Slug, payload)
	if err != nil {
		return "", err
	}
	c.logger.Info("calendar feed published", "room_id", roomID, "url", url)
	return url, nil
}

// PublishAllCalendars uploads a fresh feed for every room. Rooms are
// processed independently; the first upload error stops the pass and is
// reported, already-published feeds stay live.
func (c *Core) PublishAllCalendars(ctx context.Context) error {
	if c.uploader == nil {
		return ErrUploaderRequired
	}
	var rooms []*domainrooms.Room
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		var err error
		rooms, err = unit.Rooms().List(ctx)
		return err
	})
	if err != nil {
		return err
	}
	for _, room := range rooms {
		if !room.Bookable() {
			continue
		}
		if _, err := c.PublishCalendar(ctx, room.ID); err != nil {
			return err
		}
	}
	return nil
}

// groupRuns folds consecutive blocked days into one event per maximal run.
// The UID and stamp derive from the run's first row, so regenerating from
// the same ledger state is byte-stable.
func groupRuns(records []*domainavailability.SyncRecord) []ical.Event {
	var events []ical.Event
	var run []*domainavailability.SyncRecord

	flush := func() {
		if len(run) == 0 {
			return
		}
		first := run[0]
		last := run[len(run)-1]
		events = append(events, ical.Event{
			UID:   first.ID + "@rentsync",
			Start: daterange.Day(first.Date),
			End:   daterange.Day(last.Date).AddDate(0, 0, 1),
			Stamp: daterange.Day(first.Date),
		})
		run = nil
	}

	for _, rec := range records {
		if len(run) > 0 {
			prev := run[len(run)-1]
			if !daterange.Day(rec.Date).Equal(daterange.Day(prev.Date).AddDate(0, 0, 1)) {
				flush()
			}
		}
		run = append(run, rec)
	}
	flush()
	return events
}
