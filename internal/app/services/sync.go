package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"rentsync/internal/app/uow"
	domainavailability "rentsync/internal/domain/availability"
	domainfeeds "rentsync/internal/domain/feeds"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/infra/ical"
)

// SyncResult reports the outcome of one sync run. Upstream failures are a
// result, not an error: the room and feed were found, the run happened, it
// just did not succeed.
type SyncResult struct {
	RoomID          domainrooms.RoomID
	Platform        domainavailability.Source
	Success         bool
	EventsProcessed int
	ErrorMessage    string
}

// syncedEventType follows the broker's type naming for published events.
const syncedEventType = "calendar.synced.v1"

// SyncRoomCalendar pulls the platform's feed for the room and swaps the
// platform's ledger rows for the fresh set. A failed fetch or an empty feed
// leaves the existing rows untouched and is recorded in the sync log; the
// feed's last-synced stamp only moves on success.
func (c *Core) SyncRoomCalendar(ctx context.Context, roomID domainrooms.RoomID, platform string) (*SyncResult, error) {
	source, err := parseSyncPlatform(platform)
	if err != nil {
		return nil, err
	}

	var feed *domainfeeds.Feed
	err = c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Rooms().ByID(ctx, roomID); err != nil {
			return err
		}
		feed, err = unit.Feeds().ByRoomPlatform(ctx, roomID, source)
		return err
	})
	if err != nil {
		return nil, err
	}

	start := c.now()

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	body, err := c.fetcher.Fetch(fetchCtx, feed.URL)
	cancel()
	if err != nil {
		return c.failSync(ctx, roomID, source, start, err)
	}

	events, err := ical.Parse(body)
	if err != nil {
		return c.failSync(ctx, roomID, source, start, err)
	}

	records := c.expandEvents(roomID, source, events)

	unlock := c.locks.lock(roomID)
	err = c.withUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Ledger().ReplaceSource(ctx, roomID, source, records); err != nil {
			return err
		}
		syncedAt := c.now()
		feed.LastSyncedAt = &syncedAt
		feed.UpdatedAt = syncedAt
		if err := unit.Feeds().Save(ctx, feed); err != nil {
			return err
		}
		return unit.SyncLog().Append(ctx, &domainfeeds.LogEntry{
			ID:              c.newID(),
			RoomID:          roomID,
			Platform:        source,
			Outcome:         domainfeeds.OutcomeSuccess,
			EventsProcessed: len(events),
			Duration:        c.now().Sub(start),
			At:              start,
		})
	})
	unlock()
	if err != nil {
		return nil, err
	}

	c.invalidateCalendar(ctx, roomID)
	c.publishSynced(ctx, roomID, source, len(events), len(records))

	c.logger.Info("calendar synced",
		"room_id", roomID,
		"platform", source,
		"events", len(events),
		"days_blocked", len(records),
	)
	return &SyncResult{
		RoomID:          roomID,
		Platform:        source,
		Success:         true,
		EventsProcessed: len(events),
	}, nil
}

// SyncAllCalendars runs every enabled feed concurrently, one goroutine per
// (room, platform) pair. A non-empty roomIDs restricts the pass to those
// rooms; nil means every room. A failing feed never blocks or aborts the
// others.
func (c *Core) SyncAllCalendars(ctx context.Context, roomIDs []domainrooms.RoomID) ([]SyncResult, error) {
	var feeds []*domainfeeds.Feed
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		var err error
		feeds, err = unit.Feeds().ListEnabled(ctx, roomIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make(chan SyncResult, len(feeds))
	var wg sync.WaitGroup
	for _, feed := range feeds {
		wg.Add(1)
		go func(feed *domainfeeds.Feed) {
			defer wg.Done()
			res, err := c.SyncRoomCalendar(ctx, feed.RoomID, string(feed.Platform))
			if err != nil {
				results <- SyncResult{
					RoomID:       feed.RoomID,
					Platform:     feed.Platform,
					ErrorMessage: err.Error(),
				}
				return
			}
			results <- *res
		}(feed)
	}
	wg.Wait()
	close(results)

	out := make([]SyncResult, 0, len(feeds))
	for res := range results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomID != out[j].RoomID {
			return out[i].RoomID < out[j].RoomID
		}
		return out[i].Platform < out[j].Platform
	})
	return out, nil
}

// SyncHistory returns the room's most recent sync log entries.
func (c *Core) SyncHistory(ctx context.Context, roomID domainrooms.RoomID, limit int) ([]*domainfeeds.LogEntry, error) {
	var entries []*domainfeeds.LogEntry
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Rooms().ByID(ctx, roomID); err != nil {
			return err
		}
		var err error
		entries, err = unit.SyncLog().ListByRoom(ctx, roomID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// expandEvents turns feed events into per-day blocked ledger rows. Events
// with an invalid range are dropped; overlapping events collapse into one
// row per day, the first event to claim a day keeps it.
func (c *Core) expandEvents(roomID domainrooms.RoomID, source domainavailability.Source, events []ical.Event) []*domainavailability.SyncRecord {
	byDate := make(map[string]*domainavailability.SyncRecord)
	var order []string
	for _, ev := range events {
		rng, err := daterange.New(daterange.Day(ev.Start), daterange.Day(ev.End))
		if err != nil {
			continue
		}
		for _, day := range rng.Days() {
			key := daterange.FormatDay(day)
			if _, ok := byDate[key]; ok {
				continue
			}
			byDate[key] = &domainavailability.SyncRecord{
				ID:                c.newID(),
				RoomID:            roomID,
				Date:              day,
				Available:         false,
				Blocked:           true,
				Source:            source,
				ExternalBookingID: ev.UID,
			}
			order = append(order, key)
		}
	}
	sort.Strings(order)
	records := make([]*domainavailability.SyncRecord, 0, len(order))
	for _, key := range order {
		records = append(records, byDate[key])
	}
	return records
}

// failSync records a failed run in the sync log and reports it as an
// unsuccessful result. The log write runs in its own transaction; the
// ledger and feed stamp stay untouched.
func (c *Core) failSync(ctx context.Context, roomID domainrooms.RoomID, source domainavailability.Source, start time.Time, cause error) (*SyncResult, error) {
	err := c.withUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		return unit.SyncLog().Append(ctx, &domainfeeds.LogEntry{
			ID:       c.newID(),
			RoomID:   roomID,
			Platform: source,
			Outcome:  domainfeeds.OutcomeFailure,
			Error:    cause.Error(),
			Duration: c.now().Sub(start),
			At:       start,
		})
	})
	if err != nil {
		c.logger.Error("sync log write failed", "room_id", roomID, "platform", source, "err", err)
	}
	c.logger.Warn("calendar sync failed", "room_id", roomID, "platform", source, "err", cause)
	return &SyncResult{
		RoomID:       roomID,
		Platform:     source,
		ErrorMessage: cause.Error(),
	}, nil
}

// publishSynced emits a CloudEvents envelope to the broker. Publishing is
// best effort; a broker outage must not fail a completed sync.
func (c *Core) publishSynced(ctx context.Context, roomID domainrooms.RoomID, source domainavailability.Source, events, daysBlocked int) {
	if c.publisher == nil {
		return
	}
	envelope := map[string]any{
		"specversion":     "1.0",
		"id":              c.newID(),
		"type":            syncedEventType,
		"source":          "app://rentsync",
		"time":            c.now(),
		"datacontenttype": "application/json",
		"data": map[string]any{
			"room_id":      roomID,
			"platform":     source,
			"events":       events,
			"days_blocked": daysBlocked,
		},
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	topic := c.topicPrefix + "calendar.events.v1"
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	if err := c.publisher.Publish(ctx, topic, string(roomID), payload, headers); err != nil {
		c.logger.Warn("sync event publish failed", "room_id", roomID, "platform", source, "err", err)
	}
}

func parseSyncPlatform(value string) (domainavailability.Source, error) {
	source, err := domainavailability.ParseSource(value)
	if err != nil {
		return "", err
	}
	for _, p := range domainavailability.SyncPlatforms {
		if p == source {
			return source, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a sync platform", domainavailability.ErrUnknownSource, value)
}
