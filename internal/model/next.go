package model

import (
	"errors"
	"time"
)

var ErrNoOccurrence = errors.New("model: no occurrence within two weeks")

// NextTrigger returns the next instant strictly after now at which the alarm
// should fire, evaluated in now's location. An alarm set for the current
// minute is pushed to its next occurrence so a just-fired alarm cannot
// re-trigger itself.
func NextTrigger(a Alarm, now time.Time) (time.Time, error) {
	if err := a.Validate(); err != nil {
		return time.Time{}, err
	}

	if !a.Days.IsRepeating() {
		candidate := atClock(now, 0, a.Hour, a.Minute)
		if !candidate.After(now) {
			candidate = atClock(now, 1, a.Hour, a.Minute)
		}
		return candidate, nil
	}

	for offset := 0; offset < 7; offset++ {
		candidate := atClock(now, offset, a.Hour, a.Minute)
		if a.Days.Has(candidate.Weekday()) && candidate.After(now) {
			return candidate, nil
		}
	}
	for offset := 7; offset < 14; offset++ {
		candidate := atClock(now, offset, a.Hour, a.Minute)
		if a.Days.Has(candidate.Weekday()) {
			return candidate, nil
		}
	}
	return time.Time{}, ErrNoOccurrence
}

func atClock(base time.Time, dayOffset, hour, minute int) time.Time {
	y, m, d := base.Date()
	return time.Date(y, m, d+dayOffset, hour, minute, 0, 0, base.Location())
}
