// Package export writes alarms in formats other calendar tools can read.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/sandeepkv93/clockd/internal/model"
)

const (
	productID = "-//clockd//alarms//EN"
	// floatingLayout has no zone suffix, so calendars read the value as
	// local wall-clock time the way alarms ring.
	floatingLayout = "20060102T150405"
)

// WriteICS encodes every active alarm as a VEVENT starting at its next fire
// time. Repeating alarms carry a weekly RRULE and every event has a display
// VALARM at its start.
func WriteICS(w io.Writer, alarms []model.Alarm, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")

	for _, a := range alarms {
		if !a.IsActive {
			continue
		}
		ev, err := alarmEvent(a, now)
		if errors.Is(err, model.ErrNoOccurrence) {
			continue
		}
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("export: encode calendar: %w", err)
	}
	return nil
}

func alarmEvent(a model.Alarm, now time.Time) (*ical.Event, error) {
	start, err := model.NextTrigger(a, now)
	if err != nil {
		return nil, fmt.Errorf("export: alarm %d: %w", a.ID, err)
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, fmt.Sprintf("alarm-%d@clockd", a.ID))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ev.Props.SetText(ical.PropSummary, a.DisplayLabel())
	ev.Props.SetText(ical.PropDescription, fmt.Sprintf("%s alarm at %s", a.Days.Summary(), a.Clock()))
	ev.Props.Set(floating(ical.PropDateTimeStart, start))
	if rule, ok := model.WeeklyRule(a); ok {
		ev.Props.SetRecurrenceRule(rule)
	}

	valarm := ical.NewComponent(ical.CompAlarm)
	valarm.Props.SetText(ical.PropAction, "DISPLAY")
	valarm.Props.SetText(ical.PropDescription, a.DisplayLabel())
	trigger := ical.NewProp(ical.PropTrigger)
	trigger.SetValueType(ical.ValueDuration)
	trigger.Value = "PT0S"
	valarm.Props.Set(trigger)
	ev.Children = append(ev.Children, valarm)

	return ev, nil
}

func floating(name string, t time.Time) *ical.Prop {
	p := ical.NewProp(name)
	p.SetValueType(ical.ValueDateTime)
	p.Value = t.Format(floatingLayout)
	return p
}
