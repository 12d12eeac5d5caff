package services

import (
	"context"
	"encoding/json"
	"fmt"

	"rentsync/internal/app/uow"
	domainavailability "rentsync/internal/domain/availability"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

// GetAvailability computes the room's calendar view for the half-open
// window [from, to). Results are cached per (room, window) and invalidated
// by every calendar write for the room.
func (c *Core) GetAvailability(ctx context.Context, roomID domainrooms.RoomID, window daterange.DateRange) ([]domainavailability.CalendarDay, error) {
	cacheKey := calendarCacheKey(roomID, window)
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, cacheKey); err == nil {
			var days []domainavailability.CalendarDay
			if err := json.Unmarshal(raw, &days); err == nil {
				return days, nil
			}
		}
	}

	var days []domainavailability.CalendarDay
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		room, err := unit.Rooms().ByID(ctx, roomID)
		if err != nil {
			return err
		}
		bookings, err := unit.Bookings().ConfirmedOverlapping(ctx, roomID, window)
		if err != nil {
			return err
		}
		records, err := unit.Ledger().Range(ctx, roomID, window)
		if err != nil {
			return err
		}
		days = domainavailability.BuildCalendar(window, room.BasePrice, bookings, records)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if raw, err := json.Marshal(days); err == nil {
			if err := c.cache.Set(ctx, cacheKey, raw); err != nil {
				c.logger.Warn("calendar cache write failed", "room_id", roomID, "err", err)
			}
		}
	}
	return days, nil
}

func calendarCacheKey(roomID domainrooms.RoomID, window daterange.DateRange) string {
	return fmt.Sprintf("%s%s:%s", calendarCachePrefix(roomID), daterange.FormatDay(window.Start), daterange.FormatDay(window.End))
}

func calendarCachePrefix(roomID domainrooms.RoomID) string {
	return fmt.Sprintf("calendar:%s:", roomID)
}

// invalidateCalendar drops the room's cached calendar views. Cache trouble
// is logged, never surfaced; the store stays the source of truth.
func (c *Core) invalidateCalendar(ctx context.Context, roomID domainrooms.RoomID) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, calendarCachePrefix(roomID)); err != nil {
		c.logger.Warn("calendar cache invalidation failed", "room_id", roomID, "err", err)
	}
}
