package ical

import (
	"fmt"
	"sort"
	"strings"
)

const (
	prodID      = "-//rentsync//Calendar Export//EN"
	summary     = "Unavailable"
	description = "Reserved via direct booking"
)

// Generate renders events as a VCALENDAR document. Events are sorted by
// start date (then UID) and every stamp comes from the events themselves,
// so identical input always yields identical bytes. Lines end with CRLF
// per RFC 5545.
func Generate(events []Event) string {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].UID < sorted[j].UID
	})

	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+prodID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	for _, ev := range sorted {
		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, "UID:"+ev.UID)
		writeLine(&b, "DTSTAMP:"+ev.Stamp.UTC().Format(dateLayout)+"T000000Z")
		writeLine(&b, fmt.Sprintf("DTSTART;VALUE=DATE:%s", ev.Start.UTC().Format(dateLayout)))
		writeLine(&b, fmt.Sprintf("DTEND;VALUE=DATE:%s", ev.End.UTC().Format(dateLayout)))
		writeLine(&b, "SUMMARY:"+summary)
		writeLine(&b, "DESCRIPTION:"+description)
		writeLine(&b, "END:VEVENT")
	}
	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}
