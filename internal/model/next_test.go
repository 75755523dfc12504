package model

import (
	"errors"
	"testing"
	"time"
)

var testZone = time.FixedZone("test", 2*60*60)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, testZone)
}

func TestNextTriggerOneTimeLaterToday(t *testing.T) {
	now := at(2026, 2, 9, 6, 0) // Monday
	next, err := NextTrigger(Alarm{Hour: 7, Minute: 30, Days: NoDays, IsActive: true}, now)
	if err != nil {
		t.Fatalf("next trigger failed: %v", err)
	}
	if want := at(2026, 2, 9, 7, 30); !next.Equal(want) {
		t.Fatalf("got %s want %s", next.Format(time.RFC3339), want.Format(time.RFC3339))
	}
}

func TestNextTriggerOneTimeAlreadyPassed(t *testing.T) {
	now := at(2026, 2, 9, 8, 0) // Monday
	next, err := NextTrigger(Alarm{ID: 7, Hour: 7, Minute: 0, Days: NoDays, IsActive: true}, now)
	if err != nil {
		t.Fatalf("next trigger failed: %v", err)
	}
	if next.Weekday() != time.Tuesday || next.Format("2006-01-02 15:04") != "2026-02-10 07:00" {
		t.Fatalf("unexpected next trigger: %s", next.Format(time.RFC3339))
	}
}

func TestNextTriggerCurrentMinuteIsNotReused(t *testing.T) {
	now := at(2026, 2, 9, 7, 0)
	next, err := NextTrigger(Alarm{Hour: 7, Minute: 0, Days: NoDays}, now)
	if err != nil {
		t.Fatalf("next trigger failed: %v", err)
	}
	if got := next.Format("2006-01-02 15:04"); got != "2026-02-10 07:00" {
		t.Fatalf("expected tomorrow, got %s", got)
	}

	next, err = NextTrigger(Alarm{Hour: 7, Minute: 0, Days: DayMaskOf(time.Monday)}, now)
	if err != nil {
		t.Fatalf("next trigger failed: %v", err)
	}
	if got := next.Format("2006-01-02 15:04"); got != "2026-02-16 07:00" {
		t.Fatalf("expected next monday, got %s", got)
	}
}

func TestNextTriggerSingleDayToday(t *testing.T) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		// 2026-02-08 is a Sunday.
		now := at(2026, 2, 8+int(d), 12, 0)
		if now.Weekday() != d {
			t.Fatalf("fixture weekday mismatch: %s", now.Weekday())
		}
		alarm := Alarm{Hour: 18, Minute: 15, Days: DayMaskOf(d)}

		next, err := NextTrigger(alarm, now)
		if err != nil {
			t.Fatalf("%s future: %v", d, err)
		}
		if want := at(2026, 2, 8+int(d), 18, 15); !next.Equal(want) {
			t.Fatalf("%s future: got %s want %s", d, next, want)
		}

		alarm.Hour = 6
		next, err = NextTrigger(alarm, now)
		if err != nil {
			t.Fatalf("%s passed: %v", d, err)
		}
		if want := at(2026, 2, 8+int(d)+7, 6, 15); !next.Equal(want) {
			t.Fatalf("%s passed: got %s want %s", d, next, want)
		}
	}
}

func TestNextTriggerPicksNearestSelectedDay(t *testing.T) {
	now := at(2026, 2, 11, 9, 0) // Wednesday
	alarm := Alarm{Hour: 8, Minute: 0, Days: DayMaskOf(time.Monday, time.Friday)}
	next, err := NextTrigger(alarm, now)
	if err != nil {
		t.Fatalf("next trigger failed: %v", err)
	}
	if next.Weekday() != time.Friday || next.Format("2006-01-02 15:04") != "2026-02-13 08:00" {
		t.Fatalf("unexpected next trigger: %s", next.Format(time.RFC3339))
	}
}

func TestNextTriggerDailyNeverSkipsADay(t *testing.T) {
	alarm := Alarm{Days: EveryDay}
	start := at(2026, 2, 9, 0, 0)
	for step := 0; step < 24*60*2; step += 37 {
		now := start.Add(time.Duration(step) * time.Minute)
		for _, hm := range [][2]int{{0, 0}, {6, 30}, {12, 0}, {23, 59}} {
			alarm.Hour, alarm.Minute = hm[0], hm[1]
			next, err := NextTrigger(alarm, now)
			if err != nil {
				t.Fatalf("next trigger failed: %v", err)
			}
			if !next.After(now) || next.Sub(now) > 24*time.Hour {
				t.Fatalf("daily alarm %02d:%02d from %s gave %s", hm[0], hm[1], now, next)
			}
		}
	}
}

func TestNextTriggerKeepsLocation(t *testing.T) {
	now := at(2026, 2, 9, 8, 0)
	next, err := NextTrigger(Alarm{Hour: 9, Minute: 0, Days: NoDays}, now)
	if err != nil {
		t.Fatalf("next trigger failed: %v", err)
	}
	if next.Location() != testZone {
		t.Fatalf("expected location %v, got %v", testZone, next.Location())
	}
}

func TestNextTriggerRejectsInvalidAlarm(t *testing.T) {
	now := at(2026, 2, 9, 8, 0)
	if _, err := NextTrigger(Alarm{Hour: 24, Days: NoDays}, now); !errors.Is(err, ErrInvalidHour) {
		t.Fatalf("expected ErrInvalidHour, got %v", err)
	}
	if _, err := NextTrigger(Alarm{Hour: 1, Days: "101"}, now); !errors.Is(err, ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays, got %v", err)
	}
}
