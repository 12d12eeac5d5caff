package services

import (
	"context"
	"time"

	"rentsync/internal/app/uow"
	domainavailability "rentsync/internal/domain/availability"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
	"rentsync/internal/domain/shared/daterange"
)

// Bounds wide enough to catch every booking on the calendar when a single
// overlap query has to cover all of them.
var (
	minSentinel = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	maxSentinel = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// CreateBlockedPeriod blocks a date range on the room's calendar. The write
// is rejected with a ConflictError when the range overlaps an existing
// block or a confirmed booking; the conflict check and the write run under
// the room's lock so concurrent creates cannot both pass.
func (c *Core) CreateBlockedPeriod(ctx context.Context, roomID domainrooms.RoomID, rng daterange.DateRange, reason, notes string) (*domainschedule.BlockedPeriod, error) {
	unlock := c.locks.lock(roomID)
	defer unlock()

	var period *domainschedule.BlockedPeriod
	err := c.withUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Rooms().ByID(ctx, roomID); err != nil {
			return err
		}
		occupied, err := c.occupiedRanges(ctx, unit, roomID, "")
		if err != nil {
			return err
		}
		if with, ok := domainschedule.FirstConflict(rng, occupied); ok {
			return &domainschedule.ConflictError{RoomID: roomID, Candidate: rng, With: with}
		}

		period, err = domainschedule.NewBlockedPeriod(domainschedule.CreateParams{
			ID:     c.newID(),
			RoomID: roomID,
			Range:  rng,
			Reason: reason,
			Notes:  notes,
			Now:    c.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.BlockedPeriods().Save(ctx, period); err != nil {
			return err
		}
		return c.rebuildManualLedger(ctx, unit, roomID)
	})
	if err != nil {
		return nil, err
	}

	c.invalidateCalendar(ctx, roomID)
	return period, nil
}

// UpdateBlockedPeriod moves or relabels an existing block. The updated
// range is conflict-checked against every other block and confirmed
// booking, excluding the period being updated.
func (c *Core) UpdateBlockedPeriod(ctx context.Context, id string, rng daterange.DateRange, reason, notes string) (*domainschedule.BlockedPeriod, error) {
	var period *domainschedule.BlockedPeriod
	var roomID domainrooms.RoomID

	// Resolve the room first so the lock covers the conflict check.
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.BlockedPeriods().ByID(ctx, id)
		if err != nil {
			return err
		}
		roomID = existing.RoomID
		return nil
	})
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(roomID)
	defer unlock()

	err = c.withUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.BlockedPeriods().ByID(ctx, id)
		if err != nil {
			return err
		}
		occupied, err := c.occupiedRanges(ctx, unit, existing.RoomID, id)
		if err != nil {
			return err
		}
		if with, ok := domainschedule.FirstConflict(rng, occupied); ok {
			return &domainschedule.ConflictError{RoomID: existing.RoomID, Candidate: rng, With: with}
		}

		existing.Range = rng
		if reason != "" {
			existing.Reason = reason
		}
		existing.Notes = notes
		existing.UpdatedAt = c.now()
		if err := unit.BlockedPeriods().Save(ctx, existing); err != nil {
			return err
		}
		period = existing
		return c.rebuildManualLedger(ctx, unit, existing.RoomID)
	})
	if err != nil {
		return nil, err
	}

	c.invalidateCalendar(ctx, roomID)
	return period, nil
}

// DeleteBlockedPeriod removes a block and its materialized ledger days.
func (c *Core) DeleteBlockedPeriod(ctx context.Context, id string) error {
	var roomID domainrooms.RoomID
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.BlockedPeriods().ByID(ctx, id)
		if err != nil {
			return err
		}
		roomID = existing.RoomID
		return nil
	})
	if err != nil {
		return err
	}

	unlock := c.locks.lock(roomID)
	defer unlock()

	err = c.withUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.BlockedPeriods().Delete(ctx, id); err != nil {
			return err
		}
		return c.rebuildManualLedger(ctx, unit, roomID)
	})
	if err != nil {
		return err
	}

	c.invalidateCalendar(ctx, roomID)
	return nil
}

// ListBlockedPeriods returns the room's blocks ordered by start date.
func (c *Core) ListBlockedPeriods(ctx context.Context, roomID domainrooms.RoomID) ([]*domainschedule.BlockedPeriod, error) {
	var periods []*domainschedule.BlockedPeriod
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Rooms().ByID(ctx, roomID); err != nil {
			return err
		}
		var err error
		periods, err = unit.BlockedPeriods().ListByRoom(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return periods, nil
}

// occupiedRanges collects everything a candidate block may collide with:
// the room's other blocks and its confirmed bookings. excludeID skips the
// period being updated.
func (c *Core) occupiedRanges(ctx context.Context, unit uow.UnitOfWork, roomID domainrooms.RoomID, excludeID string) ([]domainschedule.Occupied, error) {
	periods, err := unit.BlockedPeriods().ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var occupied []domainschedule.Occupied
	for _, p := range periods {
		if p.ID == excludeID {
			continue
		}
		occupied = append(occupied, domainschedule.Occupied{ID: p.ID, Label: p.Label(), Range: p.Range})
	}

	bookings, err := unit.Bookings().ConfirmedOverlapping(ctx, roomID, daterange.DateRange{
		Start: minSentinel, End: maxSentinel,
	})
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		occupied = append(occupied, domainschedule.Occupied{
			ID:    string(b.ID),
			Label: "booking " + b.ConfirmationCode,
			Range: b.Stay,
		})
	}
	return occupied, nil
}

// rebuildManualLedger rematerializes every manual block of the room into
// per-day ledger rows and swaps them in atomically. Rebuilding from the
// full block list keeps the ledger consistent after any block mutation.
func (c *Core) rebuildManualLedger(ctx context.Context, unit uow.UnitOfWork, roomID domainrooms.RoomID) error {
	periods, err := unit.BlockedPeriods().ListByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	var records []*domainavailability.SyncRecord
	for _, p := range periods {
		for _, day := range p.Range.Days() {
			records = append(records, &domainavailability.SyncRecord{
				ID:        c.newID(),
				RoomID:    roomID,
				Date:      day,
				Available: false,
				Blocked:   true,
				Source:    domainavailability.SourceManual,
			})
		}
	}
	return unit.Ledger().ReplaceSource(ctx, roomID, domainavailability.SourceManual, records)
}
