package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/storage"
	"github.com/sandeepkv93/clockd/internal/views"
)

func (m Model) openEditor(mode Mode) (Model, tea.Cmd) {
	var value string
	var cmd tea.Cmd
	if mode != ModeAdd {
		a, ok := m.selected()
		if !ok {
			m.Status = StatusBar{Text: "no alarm selected", IsError: true}
			return m, nil
		}
		m.editID = a.ID
		m.editing = &a
		cmd = m.watchRecord(a.ID)
		switch mode {
		case ModeEditTime:
			value = a.Clock()
		case ModeEditLabel:
			if a.Label != nil {
				value = *a.Label
			}
		case ModeEditTone:
			if a.ToneURI != nil {
				value = *a.ToneURI
			}
		}
	}
	m.Mode = mode
	m.editInput.SetValue(value)
	m.editInput.CursorEnd()
	m.editInput.Focus()
	return m, cmd
}

// watchRecord follows id while its editor is open, so a concurrent delete or
// change shows up before the edit is saved.
func (m *Model) watchRecord(id int64) tea.Cmd {
	if m.records == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, stop := m.records.WatchAlarm(ctx, id)
	m.stopWatch = func() {
		stop()
		cancel()
	}
	return waitForRecordCmd(id, ch)
}

func waitForRecordCmd(id int64, ch <-chan storage.AlarmSnapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return RecordMsg{ID: id, Snapshot: snap, ch: ch}
	}
}

func (m Model) handleRecord(msg RecordMsg) (Model, tea.Cmd) {
	if m.Mode == ModeList || m.Mode == ModeAdd || msg.ID != m.editID {
		return m, nil
	}
	if !msg.Snapshot.Found {
		m = m.closeEditor()
		m.Status = StatusBar{Text: fmt.Sprintf("alarm #%d was deleted", msg.ID), IsError: true}
		return m, nil
	}
	a := msg.Snapshot.Alarm
	m.editing = &a
	return m, waitForRecordCmd(msg.ID, msg.ch)
}

func (m Model) closeEditor() Model {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
	m.Mode = ModeList
	m.editID = 0
	m.editing = nil
	m.editInput.SetValue("")
	m.editInput.Blur()
	return m
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closeEditor()
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	case "enter":
		return m.submitEditor()
	}
	if text, ok := typedText(msg); ok {
		m.editInput.SetValue(m.editInput.Value() + text)
		return m, nil
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m Model) submitEditor() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.editInput.Value())
	mode, id := m.Mode, m.editID

	switch mode {
	case ModeAdd:
		clock, label, _ := strings.Cut(raw, " ")
		hour, minute, err := model.ParseClock(clock)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		return m.closeEditor(), m.createCmd(hour, minute, label)
	case ModeEditTime:
		hour, minute, err := model.ParseClock(raw)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		return m.closeEditor(), m.modifyCmd(id, fmt.Sprintf("moved to %02d:%02d", hour, minute), func(a *model.Alarm) {
			a.Hour, a.Minute = hour, minute
		})
	case ModeEditLabel:
		return m.closeEditor(), m.modifyCmd(id, "relabelled", func(a *model.Alarm) {
			a.Label = model.StringPtr(raw)
		})
	case ModeEditTone:
		if strings.EqualFold(raw, "default") {
			raw = ""
		}
		return m.closeEditor(), m.modifyCmd(id, "tone updated", func(a *model.Alarm) {
			a.ToneURI = model.StringPtr(raw)
		})
	}
	return m.closeEditor(), nil
}

func (m Model) renderEditor() string {
	data := views.EditorData{InputView: m.editInput.View()}
	switch m.Mode {
	case ModeAdd:
		data.Title = "new alarm"
		data.Hint = "format: HH:MM [label]"
	case ModeEditTime:
		data.Title = "time for " + m.editSubject()
		data.Hint = "format: HH:MM (24h)"
	case ModeEditLabel:
		data.Title = "label for " + m.editSubject()
		data.Hint = "empty clears the label"
	case ModeEditTone:
		data.Title = "tone for " + m.editSubject()
		data.Hint = "path to a WAV file, or 'default'"
	default:
		return ""
	}
	return views.RenderEditor(data)
}

func (m Model) editSubject() string {
	if m.editing == nil {
		return fmt.Sprintf("alarm #%d", m.editID)
	}
	return fmt.Sprintf("alarm #%d (%s %s)", m.editID, m.editing.Clock(), m.editing.DisplayLabel())
}

// typedText returns the characters a key press inserts into a text field.
func typedText(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeySpace:
		return " ", true
	case tea.KeyRunes:
		return string(msg.Runes), true
	}
	return "", false
}
