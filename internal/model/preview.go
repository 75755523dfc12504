package model

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleDays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Preview lists the next n fire instants. The first element always matches
// NextTrigger; later ones for repeating alarms come from the weekly rule.
func Preview(a Alarm, now time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return []time.Time{}, nil
	}
	first, err := NextTrigger(a, now)
	if err != nil {
		return nil, err
	}
	if !a.IsRepeating() {
		return []time.Time{first}, nil
	}

	opt := weeklyOption(a)
	opt.Dtstart = first
	opt.Count = n
	opt.Byhour = []int{a.Hour}
	opt.Byminute = []int{a.Minute}
	opt.Bysecond = []int{0}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("model: build preview rule: %w", err)
	}
	return rule.All(), nil
}

// RRule renders the RFC 5545 recurrence for a repeating alarm, or "" for a
// one-time alarm.
func RRule(a Alarm) string {
	if !a.IsRepeating() {
		return ""
	}
	opt := weeklyOption(a)
	return opt.RRuleString()
}

// WeeklyRule returns the weekly recurrence of a repeating alarm. ok is false
// for one-time alarms.
func WeeklyRule(a Alarm) (opt *rrule.ROption, ok bool) {
	if !a.IsRepeating() {
		return nil, false
	}
	o := weeklyOption(a)
	return &o, true
}

func weeklyOption(a Alarm) rrule.ROption {
	days := make([]rrule.Weekday, 0, 7)
	for _, d := range a.Days.Weekdays() {
		days = append(days, rruleDays[d])
	}
	return rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: days,
	}
}
