package views

import (
	"fmt"
	"strings"
)

type AlarmListData struct {
	TableView string
	Total     int
	Active    int
}

type DayChipData struct {
	Key  string
	Name string
	On   bool
}

type AlarmDetailData struct {
	ID       int64
	Clock    string
	Label    string
	Summary  string
	Tone     string
	Next     string
	RRule    string
	Active   bool
	Vibrate  bool
	Chips    []DayChipData
	Upcoming []string
}

type RingingData struct {
	AlarmID int64
	Label   string
	Tone    string
	Since   string
	Vibrate bool
}

type EditorData struct {
	Title     string
	InputView string
	Hint      string
}

type HelpPanelData struct {
	Mode     string
	Bindings []string
	HelpView string
}

func RenderAlarmList(data AlarmListData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("alarms: %d (%d on)\n", data.Total, data.Active))
	b.WriteString("actions: [j/k]move [a]add [space]on/off [x]delete\n")
	if data.Total == 0 {
		b.WriteString("(no alarms, press [a] to add one)")
		return b.String()
	}
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderAlarmDetail(data *AlarmDetailData) string {
	if data == nil {
		return "alarm:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("alarm #%d:\n", data.ID))
	b.WriteString(fmt.Sprintf("time: %s [e]\n", data.Clock))
	b.WriteString(fmt.Sprintf("label: %s [l]\n", data.Label))
	b.WriteString(fmt.Sprintf("days: %s\n", RenderDayChips(data.Chips)))
	b.WriteString(fmt.Sprintf("repeat: %s\n", data.Summary))
	b.WriteString(fmt.Sprintf("state: %s\n", onOff(data.Active)))
	b.WriteString(fmt.Sprintf("tone: %s [t]\n", data.Tone))
	b.WriteString(fmt.Sprintf("vibrate: %s [v]\n", onOff(data.Vibrate)))
	if data.Next != "" {
		b.WriteString(fmt.Sprintf("next: %s\n", data.Next))
	}
	if data.RRule != "" {
		b.WriteString(fmt.Sprintf("rrule: %s\n", data.RRule))
	}
	if len(data.Upcoming) > 0 {
		b.WriteString("upcoming:\n")
		for _, u := range data.Upcoming {
			b.WriteString("- " + u + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderDayChips draws the weekday toggles with their number keys, e.g.
// "1:Sun 2:Mon ...". Chips that are on are highlighted.
func RenderDayChips(chips []DayChipData) string {
	parts := make([]string, 0, len(chips))
	for _, c := range chips {
		text := fmt.Sprintf("%s:%s", c.Key, c.Name)
		if c.On {
			parts = append(parts, chipOnStyle.Render("["+text+"]"))
		} else {
			parts = append(parts, chipOffStyle.Render(" "+text+" "))
		}
	}
	return strings.Join(parts, "")
}

func RenderRinging(data *RingingData) string {
	if data == nil {
		return ""
	}
	line := fmt.Sprintf("RINGING #%d %s | tone: %s | since %s", data.AlarmID, data.Label, data.Tone, data.Since)
	if data.Vibrate {
		line += " | vibrate"
	}
	return line + "\n[d]dismiss [s]snooze"
}

func RenderEditor(data EditorData) string {
	if data.Title == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n%s:\n", data.Title))
	b.WriteString(data.InputView + "\n")
	if data.Hint != "" {
		b.WriteString(data.Hint + "\n")
	}
	b.WriteString("keys: [enter] save [esc] cancel")
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\ncommand: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp (%s):\n%s\n%s",
		strings.ToLower(data.Mode),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
