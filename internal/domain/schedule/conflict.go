package schedule

import (
	"fmt"

	"rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

// Occupied is an existing interval a candidate may collide with: a blocked
// period, an active pricing rule, or a booking stay.
type Occupied struct {
	ID    string
	Label string
	Range daterange.DateRange
}

// ConflictError reports the first existing interval that overlaps a
// candidate range, with enough detail for the caller to render a specific
// message rather than a generic failure.
type ConflictError struct {
	RoomID    rooms.RoomID
	Candidate daterange.DateRange
	With      Occupied
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule: %s conflicts with %s on room %s", e.Candidate, e.With.Label, e.RoomID)
}

// FirstConflict returns the first existing interval overlapping the
// candidate. Callers are expected to pass only active intervals.
func FirstConflict(candidate daterange.DateRange, existing []Occupied) (Occupied, bool) {
	for _, occ := range existing {
		if candidate.Overlaps(occ.Range) {
			return occ, true
		}
	}
	return Occupied{}, false
}

// AllConflicts returns every existing interval overlapping the candidate.
func AllConflicts(candidate daterange.DateRange, existing []Occupied) []Occupied {
	var hits []Occupied
	for _, occ := range existing {
		if candidate.Overlaps(occ.Range) {
			hits = append(hits, occ)
		}
	}
	return hits
}
