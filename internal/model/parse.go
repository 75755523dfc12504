package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidClock = errors.New("model: invalid clock time")

var dayAliases = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseDaySpec accepts a raw mask ("0111110"), a preset (once, daily,
// weekdays, weekends) or a comma separated list of day names ("mon,wed").
func ParseDaySpec(raw string) (DayMask, error) {
	spec := strings.ToLower(strings.TrimSpace(raw))
	switch spec {
	case "", "once", "none":
		return NoDays, nil
	case "daily", "everyday", "every-day", "all":
		return EveryDay, nil
	case "weekdays":
		return Weekdays, nil
	case "weekends":
		return Weekends, nil
	}
	if strings.Trim(spec, "01") == "" {
		return ParseDayMask(spec)
	}

	days := make([]time.Weekday, 0, 7)
	for _, part := range strings.Split(spec, ",") {
		d, ok := dayAliases[strings.TrimSpace(part)]
		if !ok {
			return "", fmt.Errorf("%w: unknown day %q", ErrInvalidDays, part)
		}
		days = append(days, d)
	}
	return DayMaskOf(days...), nil
}

// ParseClock parses "H:MM" or "HH:MM" in 24-hour form.
func ParseClock(raw string) (int, int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return 0, 0, fmt.Errorf("%w: %q (want HH:MM)", ErrInvalidClock, raw)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour in %q", ErrInvalidClock, raw)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute in %q", ErrInvalidClock, raw)
	}
	return hour, minute, nil
}
