// Package ical reads and writes the minimal subset of RFC 5545 that the
// booking platforms exchange: all-day VEVENT blocks with date-valued
// DTSTART and an exclusive DTEND.
package ical

import (
	"errors"
	"time"
)

var ErrNoEvents = errors.New("ical: no events in feed")

const dateLayout = "20060102"

// Event is one busy interval from a calendar feed. End is exclusive,
// matching the DTEND convention of all-day events.
type Event struct {
	UID     string
	Start   time.Time
	End     time.Time
	Stamp   time.Time
	Summary string
}
