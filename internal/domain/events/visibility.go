package events

import "time"

// DateOf returns the calendar day t falls on in loc, as midnight UTC. All
// stored dates use the same representation so they compare directly.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ActiveOn reports whether day lies within the event's activity window:
// from BeginDate through ActiveUntil, or End when ActiveUntil is unset, or
// indefinitely when both are unset. Both bounds are inclusive.
func (e Event) ActiveOn(day time.Time) bool {
	if day.Before(e.BeginDate) {
		return false
	}
	last := e.ActiveUntil
	if last == nil {
		last = e.End
	}
	return last == nil || !day.After(*last)
}

// IsActive reports whether e is active at now, judged by the calendar day
// in loc.
func IsActive(e Event, now time.Time, loc *time.Location) bool {
	return e.ActiveOn(DateOf(now, loc))
}
