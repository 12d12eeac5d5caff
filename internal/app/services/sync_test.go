package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "rentsync/internal/domain/availability"
	domainfeeds "rentsync/internal/domain/feeds"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

const overlappingFeed = "BEGIN:VCALENDAR\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-1@airbnb.com\r\n" +
	"DTSTART;VALUE=DATE:20250710\r\n" +
	"DTEND;VALUE=DATE:20250712\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-2@airbnb.com\r\n" +
	"DTSTART;VALUE=DATE:20250712\r\n" +
	"DTEND;VALUE=DATE:20250714\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func (e *testEnv) seedFeed(t *testing.T, roomID string, platform domainavailability.Source) *domainfeeds.Feed {
	t.Helper()
	feed, err := domainfeeds.NewFeed(domainfeeds.CreateParams{
		ID:       "feed-" + roomID + "-" + string(platform),
		RoomID:   domainrooms.RoomID(roomID),
		Platform: platform,
		URL:      "https://" + string(platform) + ".example.com/" + roomID + ".ics",
		Now:      testClock,
	})
	require.NoError(t, err)
	require.NoError(t, e.factory.FeedRepo.Save(context.Background(), feed))
	return feed
}

func TestSyncRoomCalendarExpandsOverlappingEvents(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	env.fetcher.body = overlappingFeed
	ctx := context.Background()

	result, err := env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.EventsProcessed)

	records, err := env.factory.LedgerRepo.BlockedBySource(ctx, "room-1", domainavailability.SourceAirbnb)
	require.NoError(t, err)
	require.Len(t, records, 4)
	dates := make([]string, 0, len(records))
	for _, rec := range records {
		dates = append(dates, daterange.FormatDay(rec.Date))
		assert.True(t, rec.Blocked)
	}
	assert.Equal(t, []string{"2025-07-10", "2025-07-11", "2025-07-12", "2025-07-13"}, dates)
}

func TestSyncRoomCalendarIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	env.fetcher.body = overlappingFeed
	ctx := context.Background()

	_, err := env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)
	_, err = env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)

	records, err := env.factory.LedgerRepo.BlockedBySource(ctx, "room-1", domainavailability.SourceAirbnb)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestSyncRoomCalendarStampsFeedAndLogsSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	env.fetcher.body = overlappingFeed
	ctx := context.Background()

	_, err := env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)

	feed, err := env.factory.FeedRepo.ByRoomPlatform(ctx, "room-1", domainavailability.SourceAirbnb)
	require.NoError(t, err)
	require.NotNil(t, feed.LastSyncedAt)
	assert.Equal(t, testClock, *feed.LastSyncedAt)

	entries, err := env.core.SyncHistory(ctx, "room-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domainfeeds.OutcomeSuccess, entries[0].Outcome)
	assert.Equal(t, 2, entries[0].EventsProcessed)

	require.Len(t, env.publisher.events, 1)
	assert.Equal(t, "calendar.events.v1", env.publisher.events[0].Topic)
	assert.Equal(t, "room-1", env.publisher.events[0].Key)
}

func TestSyncRoomCalendarFetchFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	ctx := context.Background()

	// Seed existing platform rows that a failed sync must not disturb.
	env.fetcher.body = overlappingFeed
	_, err := env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)

	env.fetcher.err = errors.New("upstream down")
	result, err := env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "upstream down")

	records, err := env.factory.LedgerRepo.BlockedBySource(ctx, "room-1", domainavailability.SourceAirbnb)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	entries, err := env.core.SyncHistory(ctx, "room-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	failures := 0
	for _, e := range entries {
		if e.Outcome == domainfeeds.OutcomeFailure {
			failures++
			assert.Contains(t, e.Error, "upstream down")
		}
	}
	assert.Equal(t, 1, failures)
}

func TestSyncRoomCalendarEmptyFeedIsFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	env.fetcher.body = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	ctx := context.Background()

	result, err := env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)
	assert.False(t, result.Success)

	feed, err := env.factory.FeedRepo.ByRoomPlatform(ctx, "room-1", domainavailability.SourceAirbnb)
	require.NoError(t, err)
	assert.Nil(t, feed.LastSyncedAt)
}

func TestSyncRoomCalendarRejectsUnknownPlatform(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")

	_, err := env.core.SyncRoomCalendar(context.Background(), "room-1", "vrbo")
	assert.ErrorIs(t, err, domainavailability.ErrUnknownSource)

	// Calendar-internal sources are not syncable platforms either.
	_, err = env.core.SyncRoomCalendar(context.Background(), "room-1", "manual")
	assert.ErrorIs(t, err, domainavailability.ErrUnknownSource)
}

func TestSyncRoomCalendarMissingFeed(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")

	_, err := env.core.SyncRoomCalendar(context.Background(), "room-1", "airbnb")
	assert.ErrorIs(t, err, domainfeeds.ErrNotFound)
}

func TestSyncAllCalendarsIsolatesFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedRoom(t, "room-2")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	env.seedFeed(t, "room-2", domainavailability.SourceExpedia)
	env.fetcher.err = errors.New("network unreachable")
	ctx := context.Background()

	results, err := env.core.SyncAllCalendars(ctx, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.False(t, res.Success)
		assert.Contains(t, res.ErrorMessage, "network unreachable")
	}
}

func TestSyncAllCalendarsRunsEveryEnabledFeed(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedRoom(t, "room-2")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	env.seedFeed(t, "room-2", domainavailability.SourceBooking)
	disabled := env.seedFeed(t, "room-2", domainavailability.SourceExpedia)
	disabled.Enabled = false
	require.NoError(t, env.factory.FeedRepo.Save(context.Background(), disabled))

	env.fetcher.body = overlappingFeed
	results, err := env.core.SyncAllCalendars(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Success)
	}
	assert.Equal(t, 2, env.fetcher.calls)
}

func TestSyncAllCalendarsFiltersByRoom(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedRoom(t, "room-2")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	env.seedFeed(t, "room-2", domainavailability.SourceBooking)
	env.fetcher.body = overlappingFeed

	results, err := env.core.SyncAllCalendars(context.Background(), []domainrooms.RoomID{"room-2"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domainrooms.RoomID("room-2"), results[0].RoomID)
	assert.Equal(t, 1, env.fetcher.calls)
}

func TestSyncDoesNotDisturbManualBlocks(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	ctx := context.Background()

	_, err := env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-07-10", "2025-07-11"), "maintenance", "")
	require.NoError(t, err)

	// The platform claims the blocked day, then drops the reservation.
	env.fetcher.body = overlappingFeed
	_, err = env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)

	env.fetcher.body = "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:evt-9@airbnb.com\r\n" +
		"DTSTART;VALUE=DATE:20250801\r\n" +
		"DTEND;VALUE=DATE:20250802\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	_, err = env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)

	days, err := env.core.GetAvailability(ctx, "room-1", mustRange(t, "2025-07-10", "2025-07-12"))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.True(t, days[0].Blocked)
	assert.Equal(t, string(domainavailability.SourceManual), days[0].Source)
	assert.True(t, days[1].Available)
}
