package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const airbnbFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-1@airbnb.com\r\n" +
	"DTSTAMP:20250701T120000Z\r\n" +
	"DTSTART;VALUE=DATE:20250710\r\n" +
	"DTEND;VALUE=DATE:20250712\r\n" +
	"SUMMARY:Reserved\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-2@airbnb.com\r\n" +
	"DTSTART;VALUE=DATE:20250712\r\n" +
	"DTEND;VALUE=DATE:20250714\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseReadsDateValuedEvents(t *testing.T) {
	events, err := Parse(airbnbFeed)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "evt-1@airbnb.com", events[0].UID)
	assert.Equal(t, date(2025, 7, 10), events[0].Start)
	assert.Equal(t, date(2025, 7, 12), events[0].End)
	assert.Equal(t, "Reserved", events[0].Summary)

	assert.Equal(t, date(2025, 7, 12), events[1].Start)
	assert.Equal(t, date(2025, 7, 14), events[1].End)
}

func TestParseAcceptsBareDateTimeValues(t *testing.T) {
	feed := "BEGIN:VCALENDAR\n" +
		"BEGIN:VEVENT\n" +
		"UID:x\n" +
		"DTSTART:20250801T140000Z\n" +
		"DTEND:20250803T100000Z\n" +
		"END:VEVENT\n" +
		"END:VCALENDAR\n"

	events, err := Parse(feed)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, date(2025, 8, 1), events[0].Start)
	assert.Equal(t, date(2025, 8, 3), events[0].End)
}

func TestParseSkipsMalformedEvents(t *testing.T) {
	feed := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:missing-dates\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:inverted\r\n" +
		"DTSTART;VALUE=DATE:20250710\r\n" +
		"DTEND;VALUE=DATE:20250710\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"DTSTART;VALUE=DATE:20250715\r\n" +
		"DTEND;VALUE=DATE:20250716\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID: \r\n" +
		"DTSTART;VALUE=DATE:20250717\r\n" +
		"DTEND;VALUE=DATE:20250718\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:good\r\n" +
		"DTSTART;VALUE=DATE:20250720\r\n" +
		"DTEND;VALUE=DATE:20250721\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := Parse(feed)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "good", events[0].UID)
}

func TestParseErrNoEvents(t *testing.T) {
	_, err := Parse("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n")
	assert.ErrorIs(t, err, ErrNoEvents)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrNoEvents)

	// A feed whose every event is malformed still counts as having events.
	feed := "BEGIN:VEVENT\r\nUID:broken\r\nEND:VEVENT\r\n"
	events, err := Parse(feed)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGenerateIsDeterministic(t *testing.T) {
	events := []Event{
		{UID: "b@rentsync", Start: date(2025, 9, 10), End: date(2025, 9, 12), Stamp: date(2025, 9, 10)},
		{UID: "a@rentsync", Start: date(2025, 9, 1), End: date(2025, 9, 3), Stamp: date(2025, 9, 1)},
	}

	first := Generate(events)
	second := Generate([]Event{events[1], events[0]})
	assert.Equal(t, first, second)

	lines := strings.Split(first, "\r\n")
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Contains(t, first, "DTSTART;VALUE=DATE:20250901")
	assert.Contains(t, first, "DTEND;VALUE=DATE:20250903")
	assert.Contains(t, first, "SUMMARY:Unavailable")
	// Earlier event must come first regardless of input order.
	assert.Less(t, strings.Index(first, "a@rentsync"), strings.Index(first, "b@rentsync"))
}

func TestGenerateRoundTripsThroughParse(t *testing.T) {
	events := []Event{
		{UID: "stay-1@rentsync", Start: date(2025, 10, 1), End: date(2025, 10, 5), Stamp: date(2025, 10, 1)},
	}

	parsed, err := Parse(Generate(events))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, events[0].UID, parsed[0].UID)
	assert.Equal(t, events[0].Start, parsed[0].Start)
	assert.Equal(t, events[0].End, parsed[0].End)
}
