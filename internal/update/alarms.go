package update

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/clockd/internal/alarm"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/views"
)

const (
	opTimeout    = 5 * time.Second
	previewCount = 3
)

func (m Model) selected() (model.Alarm, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Alarms) {
		return model.Alarm{}, false
	}
	return m.Alarms[m.Cursor], true
}

func (m *Model) moveCursor(delta int) {
	if len(m.Alarms) == 0 {
		m.Cursor = 0
		return
	}
	m.Cursor += delta
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor >= len(m.Alarms) {
		m.Cursor = len(m.Alarms) - 1
	}
}

// setAlarms swaps in a new snapshot and keeps the cursor on the same alarm
// when it still exists.
func (m *Model) setAlarms(list []model.Alarm) {
	var keep int64
	if cur, ok := m.selected(); ok {
		keep = cur.ID
	}
	m.Alarms = list
	m.Loaded = true
	for i, a := range list {
		if a.ID == keep {
			m.Cursor = i
			return
		}
	}
	m.moveCursor(0)
}

func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Alarms))
	for i, a := range m.Alarms {
		marker := " "
		if i == m.Cursor {
			marker = ">"
		}
		label := a.DisplayLabel()
		if a.Label == nil {
			label = ""
		}
		rows = append(rows, table.Row{
			marker,
			strconv.FormatInt(a.ID, 10),
			a.Clock(),
			onOff(a.IsActive),
			a.Days.Summary(),
			label,
		})
	}
	m.alarmTable.SetRows(rows)
	if len(rows) > 0 && m.Cursor < len(rows) {
		m.alarmTable.SetCursor(m.Cursor)
	}
	m.commandInput.SetValue(m.Palette.Input)
}

func (m Model) activeCount() int {
	n := 0
	for _, a := range m.Alarms {
		if a.IsActive {
			n++
		}
	}
	return n
}

func (m Model) renderAlarmList() string {
	return views.RenderAlarmList(views.AlarmListData{
		TableView: m.alarmTable.View(),
		Total:     len(m.Alarms),
		Active:    m.activeCount(),
	})
}

func (m Model) detailData() *views.AlarmDetailData {
	a, ok := m.selected()
	if !ok {
		return nil
	}
	now := m.now()
	data := &views.AlarmDetailData{
		ID:      a.ID,
		Clock:   a.Clock(),
		Label:   "add label",
		Summary: a.Days.Summary(),
		Tone:    toneName(a.ToneURI),
		Active:  a.IsActive,
		Vibrate: a.Vibrate,
		RRule:   model.RRule(a),
	}
	if a.Label != nil {
		data.Label = *a.Label
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		data.Chips = append(data.Chips, views.DayChipData{
			Key:  strconv.Itoa(int(d) + 1),
			Name: model.ShortDayName(d),
			On:   a.Days.Has(d),
		})
	}
	if !a.IsActive {
		return data
	}
	upcoming, err := model.Preview(a, now, previewCount)
	if err != nil || len(upcoming) == 0 {
		return data
	}
	data.Next = fmt.Sprintf("%s %s (%s)", model.ShortDayName(upcoming[0].Weekday()), upcoming[0].Format("15:04"), alarm.FormatLead(upcoming[0], now))
	if len(upcoming) > 1 {
		for _, at := range upcoming {
			data.Upcoming = append(data.Upcoming, at.Format("Mon 02 Jan 15:04"))
		}
	}
	return data
}

func (m Model) renderDetail() string {
	return views.RenderAlarmDetail(m.detailData())
}

func toneName(uri *string) string {
	if uri == nil {
		return "default"
	}
	return filepath.Base(strings.TrimPrefix(*uri, "file://"))
}

// runOp runs fn off the update loop and reports back with an OpDoneMsg.
func (m Model) runOp(fn func(ctx context.Context) (string, error)) tea.Cmd {
	if m.service == nil {
		return func() tea.Msg { return OpDoneMsg{Err: ErrNotConfigured} }
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		text, err := fn(ctx)
		return OpDoneMsg{Text: text, Err: err}
	}
}

func (m Model) modifyCmd(id int64, verb string, fn func(*model.Alarm)) tea.Cmd {
	svc := m.service
	return m.runOp(func(ctx context.Context) (string, error) {
		a, err := svc.Modify(ctx, id, fn)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("alarm #%d %s", a.ID, verb), nil
	})
}

func (m Model) toggleActiveCmd(a model.Alarm) tea.Cmd {
	svc := m.service
	return m.runOp(func(ctx context.Context) (string, error) {
		updated, err := svc.SetActive(ctx, a.ID, !a.IsActive)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("alarm #%d turned %s", updated.ID, onOff(updated.IsActive)), nil
	})
}

func (m Model) toggleDayCmd(a model.Alarm, d time.Weekday) tea.Cmd {
	return m.modifyCmd(a.ID, "days updated", func(x *model.Alarm) {
		x.Days = x.Days.Toggle(d)
	})
}

func (m Model) deleteCmd(a model.Alarm) tea.Cmd {
	svc := m.service
	return m.runOp(func(ctx context.Context) (string, error) {
		if err := svc.Delete(ctx, a.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("alarm #%d deleted", a.ID), nil
	})
}

// createCmd adds an active one-time alarm at hour:minute.
func (m Model) createCmd(hour, minute int, label string) tea.Cmd {
	svc := m.service
	return m.runOp(func(ctx context.Context) (string, error) {
		a, err := svc.Create(ctx, model.Alarm{
			Hour:     hour,
			Minute:   minute,
			Label:    model.StringPtr(label),
			IsActive: true,
			Days:     model.NoDays,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("alarm #%d added for %s", a.ID, a.Clock()), nil
	})
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
