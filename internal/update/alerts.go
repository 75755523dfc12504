package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/trigger"
	"github.com/sandeepkv93/clockd/internal/views"
)

func (m *Model) syncRinging() {
	if m.alerts == nil {
		m.Ringing = nil
		return
	}
	s, ok := m.alerts.Current()
	if !ok || s == nil {
		m.Ringing = nil
		return
	}
	m.Ringing = &Ringing{
		SessionID: s.ID,
		AlarmID:   s.AlarmID,
		Label:     s.Label,
		Tone:      s.Tone().Name,
		Vibrate:   s.Vibrate,
		StartedAt: s.StartedAt,
	}
}

func (m Model) alertCmd(kind notify.ActionKind, id int64) tea.Cmd {
	alerts := m.alerts
	if alerts == nil {
		return func() tea.Msg { return OpDoneMsg{Err: ErrNotConfigured} }
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		res, err := alerts.Dispatch(ctx, trigger.Action{Kind: kind, AlarmID: id})
		if err != nil {
			return OpDoneMsg{Err: err}
		}
		return OpDoneMsg{Text: describeAlertResult(kind, id, res)}
	}
}

func describeAlertResult(kind notify.ActionKind, id int64, res trigger.Result) string {
	if !res.Applied {
		return fmt.Sprintf("alarm #%d is not ringing", id)
	}
	if kind == notify.ActionSnooze {
		return fmt.Sprintf("alarm #%d snoozed until %s", id, res.SnoozeAt.Format("15:04"))
	}
	return fmt.Sprintf("alarm #%d dismissed", id)
}

func (m Model) renderRinging() string {
	if m.Ringing == nil {
		return ""
	}
	return views.RenderRinging(&views.RingingData{
		AlarmID: m.Ringing.AlarmID,
		Label:   m.Ringing.Label,
		Tone:    m.Ringing.Tone,
		Since:   m.Ringing.StartedAt.Format("15:04:05"),
		Vibrate: m.Ringing.Vibrate,
	})
}

func waitForAlarmsCmd(ch <-chan []model.Alarm) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		list, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmsMsg{Alarms: list}
	}
}

func waitForSurfaceCmd(b *notify.Board) tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		<-b.Changed()
		return SurfaceChangedMsg{}
	}
}

func clockTickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg { return ClockTickMsg{At: t} })
}
