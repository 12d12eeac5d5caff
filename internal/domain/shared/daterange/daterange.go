package daterange

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must be after start")
	ErrInvalidDay   = errors.New("daterange: malformed calendar day")
)

// DayFormat is the canonical calendar-day encoding used across the system.
const DayFormat = "2006-01-02"

// Day truncates t to a UTC calendar day. All range arithmetic operates on
// these normalized values, never on instants.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD value into a normalized calendar day.
func ParseDay(value string) (time.Time, error) {
	t, err := time.Parse(DayFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
	}
	return Day(t), nil
}

// FormatDay renders a calendar day in the canonical encoding.
func FormatDay(t time.Time) string {
	return Day(t).Format(DayFormat)
}

// DateRange is a half-open [Start, End) calendar-day interval: Start is
// occupied, End is not. Adjacent ranges may share a boundary day without
// overlapping, which is what lets a checkout day double as the next guest's
// check-in day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New builds a range from two instants, normalizing both to calendar days.
// A range whose end does not fall strictly after its start is invalid; there
// is no zero-width range.
func New(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if !r.End.After(r.Start) {
		return DateRange{}, fmt.Errorf("%w: [%s, %s)", ErrInvalidRange, FormatDay(r.Start), FormatDay(r.End))
	}
	return r, nil
}

// Parse builds a range from two YYYY-MM-DD values.
func Parse(start, end string) (DateRange, error) {
	s, err := ParseDay(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return DateRange{}, err
	}
	return New(s, e)
}

// Overlaps reports whether the two half-open ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether day falls inside the range: Start <= day < End.
func (r DateRange) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

// Intersect returns the overlapping part of two ranges if any.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	start := r.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := r.End
	if other.End.Before(end) {
		end = other.End
	}
	if !end.After(start) {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

// Days returns every occupied day of the range in order. Stepping is by
// calendar day, not by 24 hours, so DST-style drift cannot occur.
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.Nights())
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Nights counts the occupied days of the range.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

func (r DateRange) String() string {
	return FormatDay(r.Start) + ".." + FormatDay(r.End)
}
