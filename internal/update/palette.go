package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/clockd/internal/commands"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/trigger"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	if text, ok := typedText(msg); ok {
		m.commandInput.SetValue(m.commandInput.Value() + text)
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

// executePaletteCommand parses synchronously so syntax errors show at once;
// the command itself runs as a tea.Cmd.
func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	svc, alerts := m.service, m.alerts
	return m, m.runOp(func(ctx context.Context) (string, error) {
		res, err := commands.Execute(cmd, PaletteHandlers(ctx, svc, alerts))
		return res.Message, err
	})
}

// PaletteHandlers binds palette commands to the alarm service and the alert
// controller. A nil alerts leaves snooze and dismiss unconfigured.
func PaletteHandlers(ctx context.Context, svc AlarmService, alerts Alerts) commands.Handlers {
	modify := func(id int64, verb string, fn func(*model.Alarm)) (commands.Result, error) {
		a, err := svc.Modify(ctx, id, fn)
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("alarm #%d %s", a.ID, verb)}, nil
	}
	setActive := func(id int64, on bool) (commands.Result, error) {
		a, err := svc.SetActive(ctx, id, on)
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("alarm #%d turned %s", a.ID, onOff(a.IsActive))}, nil
	}

	h := commands.Handlers{
		Add: func(args commands.AddArgs) (commands.Result, error) {
			a, err := svc.Create(ctx, model.Alarm{
				Hour:     args.Hour,
				Minute:   args.Minute,
				Label:    model.StringPtr(args.Label),
				IsActive: true,
				Days:     model.NoDays,
			})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("alarm #%d added for %s", a.ID, a.Clock())}, nil
		},
		Remove: func(args commands.TargetArgs) (commands.Result, error) {
			if err := svc.Delete(ctx, args.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("alarm #%d deleted", args.ID)}, nil
		},
		On:  func(args commands.TargetArgs) (commands.Result, error) { return setActive(args.ID, true) },
		Off: func(args commands.TargetArgs) (commands.Result, error) { return setActive(args.ID, false) },
		Days: func(args commands.DaysArgs) (commands.Result, error) {
			return modify(args.ID, "repeats "+args.Days.Summary(), func(a *model.Alarm) { a.Days = args.Days })
		},
		Label: func(args commands.LabelArgs) (commands.Result, error) {
			return modify(args.ID, "relabelled", func(a *model.Alarm) { a.Label = model.StringPtr(args.Text) })
		},
		Tone: func(args commands.ToneArgs) (commands.Result, error) {
			return modify(args.ID, "tone updated", func(a *model.Alarm) { a.ToneURI = model.StringPtr(args.Path) })
		},
		Vibrate: func(args commands.VibrateArgs) (commands.Result, error) {
			return modify(args.ID, "vibrate "+onOff(args.On), func(a *model.Alarm) { a.Vibrate = args.On })
		},
	}
	if alerts != nil {
		dispatch := func(kind notify.ActionKind, id int64) (commands.Result, error) {
			res, err := alerts.Dispatch(ctx, trigger.Action{Kind: kind, AlarmID: id})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: describeAlertResult(kind, id, res)}, nil
		}
		h.Snooze = func(args commands.TargetArgs) (commands.Result, error) { return dispatch(notify.ActionSnooze, args.ID) }
		h.Dismiss = func(args commands.TargetArgs) (commands.Result, error) { return dispatch(notify.ActionDismiss, args.ID) }
	}
	return h
}
