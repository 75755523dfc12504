package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidHour   = errors.New("model: invalid alarm hour")
	ErrInvalidMinute = errors.New("model: invalid alarm minute")
)

const defaultLabel = "Alarm"

// Alarm is the single persisted entity. Hour and Minute are local wall-clock
// values interpreted in the zone of the instant they are evaluated against.
type Alarm struct {
	ID       int64
	Hour     int
	Minute   int
	Label    *string
	IsActive bool
	Days     DayMask
	ToneURI  *string
	Vibrate  bool
}

func (a Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("%w: %d", ErrInvalidHour, a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("%w: %d", ErrInvalidMinute, a.Minute)
	}
	if _, err := ParseDayMask(string(a.Days)); err != nil {
		return err
	}
	return nil
}

// IsRepeating reports whether the alarm fires on a weekly schedule rather than once.
func (a Alarm) IsRepeating() bool {
	return a.Days.IsRepeating()
}

func (a Alarm) DisplayLabel() string {
	if a.Label == nil || strings.TrimSpace(*a.Label) == "" {
		return defaultLabel
	}
	return *a.Label
}

func (a Alarm) Clock() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// StringPtr returns nil for blank input so optional columns stay NULL.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
