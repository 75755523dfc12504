package update

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForAlarmsCmd(m.alarmsCh),
		waitForSurfaceCmd(m.board),
		clockTickCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.Mode != ModeList {
			return m.handleEditorKey(typed)
		}
		return m.handleListKey(typed)
	case AlarmsMsg:
		m.setAlarms(typed.Alarms)
		return m, waitForAlarmsCmd(m.alarmsCh)
	case SurfaceChangedMsg:
		if m.board != nil {
			if toast, ok := m.board.TakeToast(); ok {
				m.Status = StatusBar{Text: toast}
			}
		}
		m.syncRinging()
		return m, waitForSurfaceCmd(m.board)
	case RecordMsg:
		return m.handleRecord(typed)
	case ClockTickMsg:
		m.Clock = typed.At
		m.syncRinging()
		return m, clockTickCmd()
	case OpDoneMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: typed.Text}
		m.syncRinging()
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	switch keyStr {
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "esc":
		m.HelpVisible = false
		m.AboutVisible = false
		return m, nil
	case m.Keys.Palette:
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.Focus()
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.About:
		m.AboutVisible = !m.AboutVisible
		if m.AboutVisible && m.aboutView == "" {
			m.aboutView = views.RenderMarkdown(aboutText(m.snooze))
		}
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Add:
		return m.openEditor(ModeAdd)
	case m.Keys.EditTime:
		return m.openEditor(ModeEditTime)
	case m.Keys.Label:
		return m.openEditor(ModeEditLabel)
	case m.Keys.Tone:
		return m.openEditor(ModeEditTone)
	case m.Keys.Dismiss, m.Keys.Snooze:
		if m.Ringing == nil {
			m.Status = StatusBar{Text: "nothing is ringing"}
			return m, nil
		}
		kind := notify.ActionDismiss
		if keyStr == m.Keys.Snooze {
			kind = notify.ActionSnooze
		}
		return m, m.alertCmd(kind, m.Ringing.AlarmID)
	}

	a, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch keyStr {
	case m.Keys.Toggle:
		return m, m.toggleActiveCmd(a)
	case m.Keys.Vibrate:
		return m, m.modifyCmd(a.ID, "vibrate "+onOff(!a.Vibrate), func(x *model.Alarm) {
			x.Vibrate = !x.Vibrate
		})
	case m.Keys.Delete:
		return m, m.deleteCmd(a)
	case "1", "2", "3", "4", "5", "6", "7":
		n, _ := strconv.Atoi(keyStr)
		return m, m.toggleDayCmd(a, time.Weekday(n-1))
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	right := m.renderDetail() + m.renderEditor() + m.renderCommandPalette() + m.renderHelpIfVisible()
	if m.AboutVisible {
		right = m.aboutView
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("clockd | %s | alarms: %d (%d on)", m.Clock.Format("Mon 15:04:05"), len(m.Alarms), m.activeCount()),
		LeftPane:   m.renderAlarmList(),
		RightPane:  right,
		StatusLine: status,
		Banner:     m.renderRinging(),
		Footer: fmt.Sprintf("keys: %s add | %s time | %s label | space on/off | 1-7 days | %s delete | %s/%s dismiss/snooze | / cmd | %s help | %s quit",
			m.Keys.Add, m.Keys.EditTime, m.Keys.Label, m.Keys.Delete, m.Keys.Dismiss, m.Keys.Snooze, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}
