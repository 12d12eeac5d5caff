package ical

import (
	"bufio"
	"strings"
	"time"
)

// Parse extracts the VEVENT blocks from an iCalendar payload. Events that
// are missing a UID or dates, carry unparseable dates, or end on or before
// their start are dropped rather than failing the whole feed; platforms
// routinely ship a few malformed entries. ErrNoEvents is returned only when
// the feed contains no VEVENT blocks at all.
func Parse(payload string) ([]Event, error) {
	var (
		events  []Event
		current map[string]string
		seen    bool
	)

	scanner := bufio.NewScanner(strings.NewReader(payload))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "BEGIN:VEVENT":
			seen = true
			current = make(map[string]string)
		case line == "END:VEVENT":
			if current != nil {
				if ev, ok := buildEvent(current); ok {
					events = append(events, ev)
				}
				current = nil
			}
		case current != nil:
			name, value, ok := splitContentLine(line)
			if ok {
				current[name] = value
			}
		}
	}

	if !seen {
		return nil, ErrNoEvents
	}
	return events, nil
}

// splitContentLine splits "NAME;PARAM=V:value" into the bare property name
// and its value. Parameters such as VALUE=DATE are discarded; the date
// layout below accepts both forms.
func splitContentLine(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	name = line[:idx]
	value = line[idx+1:]
	if p := strings.Index(name, ";"); p >= 0 {
		name = name[:p]
	}
	return strings.ToUpper(name), value, true
}

func buildEvent(props map[string]string) (Event, bool) {
	if strings.TrimSpace(props["UID"]) == "" {
		return Event{}, false
	}
	start, ok := parseDate(props["DTSTART"])
	if !ok {
		return Event{}, false
	}
	end, ok := parseDate(props["DTEND"])
	if !ok {
		return Event{}, false
	}
	if !end.After(start) {
		return Event{}, false
	}
	ev := Event{
		UID:     props["UID"],
		Start:   start,
		End:     end,
		Summary: props["SUMMARY"],
	}
	if stamp, ok := parseDate(props["DTSTAMP"]); ok {
		ev.Stamp = stamp
	}
	return ev, true
}

// parseDate reads the leading YYYYMMDD of a date or date-time value. Feeds
// mix bare dates with full timestamps like 20250710T120000Z; only the day
// portion matters for all-day availability.
func parseDate(value string) (time.Time, bool) {
	if len(value) < len(dateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, value[:len(dateLayout)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
