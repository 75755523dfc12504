package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDays = errors.New("model: invalid day mask")

// DayMask holds one '0'/'1' flag per weekday. Index i is time.Weekday(i),
// so the mask is Sunday-first: "1000001" repeats on Sunday and Saturday.
type DayMask string

const (
	NoDays   DayMask = "0000000"
	EveryDay DayMask = "1111111"
	Weekdays DayMask = "0111110"
	Weekends DayMask = "1000001"
)

var shortDayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func ParseDayMask(raw string) (DayMask, error) {
	if len(raw) != 7 {
		return "", fmt.Errorf("%w: %q must have 7 flags", ErrInvalidDays, raw)
	}
	for _, r := range raw {
		if r != '0' && r != '1' {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidDays, raw, r)
		}
	}
	return DayMask(raw), nil
}

func DayMaskOf(days ...time.Weekday) DayMask {
	flags := []byte(NoDays)
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			flags[d] = '1'
		}
	}
	return DayMask(flags)
}

func (m DayMask) Has(d time.Weekday) bool {
	if len(m) != 7 || d < time.Sunday || d > time.Saturday {
		return false
	}
	return m[d] == '1'
}

func (m DayMask) IsRepeating() bool {
	return strings.ContainsRune(string(m), '1')
}

func (m DayMask) Toggle(d time.Weekday) DayMask {
	if len(m) != 7 || d < time.Sunday || d > time.Saturday {
		return m
	}
	flags := []byte(m)
	if flags[d] == '1' {
		flags[d] = '0'
	} else {
		flags[d] = '1'
	}
	return DayMask(flags)
}

func (m DayMask) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if m.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (m DayMask) String() string {
	return string(m)
}

// Summary renders the mask the way the alarm list shows it.
func (m DayMask) Summary() string {
	switch m {
	case NoDays, "":
		return "Once"
	case EveryDay:
		return "Every day"
	case Weekdays:
		return "Weekdays"
	case Weekends:
		return "Weekends"
	}
	names := make([]string, 0, 7)
	for _, d := range m.Weekdays() {
		names = append(names, shortDayNames[d])
	}
	return strings.Join(names, ", ")
}

func ShortDayName(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return ""
	}
	return shortDayNames[d]
}
