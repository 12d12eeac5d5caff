package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "rentsync/internal/domain/availability"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/infra/ical"
)

func (e *testEnv) seedDirectDay(t *testing.T, id, roomID, day string) {
	t.Helper()
	date, err := daterange.ParseDay(day)
	require.NoError(t, err)
	require.NoError(t, e.factory.LedgerRepo.Upsert(context.Background(), &domainavailability.SyncRecord{
		ID:      id,
		RoomID:  domainrooms.RoomID(roomID),
		Date:    date,
		Blocked: true,
		Source:  domainavailability.SourceDirect,
	}))
}

func TestExportCalendarGroupsConsecutiveDays(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedDirectDay(t, "d1", "room-1", "2025-10-01")
	env.seedDirectDay(t, "d2", "room-1", "2025-10-02")
	env.seedDirectDay(t, "d3", "room-1", "2025-10-03")
	env.seedDirectDay(t, "d4", "room-1", "2025-10-10")

	payload, err := env.core.ExportCalendar(context.Background(), "room-1")
	require.NoError(t, err)

	events, err := ical.Parse(payload)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "d1@rentsync", events[0].UID)
	assert.Equal(t, "2025-10-01", daterange.FormatDay(events[0].Start))
	// DTEND is exclusive: three blocked days end on the fourth.
	assert.Equal(t, "2025-10-04", daterange.FormatDay(events[0].End))

	assert.Equal(t, "d4@rentsync", events[1].UID)
	assert.Equal(t, "2025-10-10", daterange.FormatDay(events[1].Start))
	assert.Equal(t, "2025-10-11", daterange.FormatDay(events[1].End))
}

func TestExportCalendarIsDeterministic(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedDirectDay(t, "d1", "room-1", "2025-10-01")
	env.seedDirectDay(t, "d2", "room-1", "2025-10-02")

	first, err := env.core.ExportCalendar(context.Background(), "room-1")
	require.NoError(t, err)
	second, err := env.core.ExportCalendar(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasSuffix(first, "END:VCALENDAR\r\n"))
}

func TestExportCalendarOmitsImportedAndManualDays(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedFeed(t, "room-1", domainavailability.SourceAirbnb)
	env.fetcher.body = overlappingFeed
	ctx := context.Background()

	_, err := env.core.SyncRoomCalendar(ctx, "room-1", "airbnb")
	require.NoError(t, err)
	_, err = env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-08-01", "2025-08-05"), "maintenance", "")
	require.NoError(t, err)
	env.seedDirectDay(t, "d1", "room-1", "2025-09-01")

	payload, err := env.core.ExportCalendar(ctx, "room-1")
	require.NoError(t, err)

	events, err := ical.Parse(payload)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-09-01", daterange.FormatDay(events[0].Start))
}

func TestPublishCalendarUploadsRenderedFeed(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedDirectDay(t, "d1", "room-1", "2025-10-01")

	url, err := env.core.PublishCalendar(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/feeds/room-1.ics", url)

	require.Len(t, env.uploader.feeds, 1)
	assert.Equal(t, "room-1", env.uploader.feeds[0].Slug)
	assert.Contains(t, env.uploader.feeds[0].Payload, "d1@rentsync")
}

func TestExportCalendarEmptyLedger(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")

	payload, err := env.core.ExportCalendar(context.Background(), "room-1")
	require.NoError(t, err)
	assert.NotContains(t, payload, "BEGIN:VEVENT")

	_, err = env.core.ExportCalendar(context.Background(), "ghost")
	assert.ErrorIs(t, err, domainrooms.ErrNotFound)
}
