package update

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/ringer"
	"github.com/sandeepkv93/clockd/internal/storage"
	"github.com/sandeepkv93/clockd/internal/trigger"
)

var ErrNotConfigured = errors.New("update: alarm service not configured")

type Mode string

const (
	ModeList      Mode = "list"
	ModeAdd       Mode = "add"
	ModeEditTime  Mode = "time"
	ModeEditLabel Mode = "label"
	ModeEditTone  Mode = "tone"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Add      string
	EditTime string
	Label    string
	Tone     string
	Vibrate  string
	Toggle   string
	Delete   string
	Dismiss  string
	Snooze   string
	Palette  string
	Help     string
	About    string
	Quit     string
}

// AlarmService is the edit surface the UI drives. *alarm.Service satisfies it.
type AlarmService interface {
	Create(ctx context.Context, a model.Alarm) (model.Alarm, error)
	Modify(ctx context.Context, id int64, fn func(*model.Alarm)) (model.Alarm, error)
	SetActive(ctx context.Context, id int64, active bool) (model.Alarm, error)
	Delete(ctx context.Context, id int64) error
}

// Alerts reaches the ringing alert. *trigger.Controller satisfies it.
type Alerts interface {
	Dispatch(ctx context.Context, a trigger.Action) (trigger.Result, error)
	Current() (*ringer.Session, bool)
}

// RecordWatcher follows one stored alarm. *storage.Feed satisfies it.
type RecordWatcher interface {
	WatchAlarm(ctx context.Context, id int64) (<-chan storage.AlarmSnapshot, func())
}

type Deps struct {
	Service AlarmService
	Alerts  Alerts
	// Alarms is a live list subscription, usually from storage.Feed.
	Alarms <-chan []model.Alarm
	// Records lets an open editor follow the alarm it edits.
	Records        RecordWatcher
	Board          *notify.Board
	SnoozeDuration time.Duration
	Now            func() time.Time
}

// Ringing is the banner snapshot of the current alert session.
type Ringing struct {
	SessionID string
	AlarmID   int64
	Label     string
	Tone      string
	Vibrate   bool
	StartedAt time.Time
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	Alarms       []model.Alarm
	Cursor       int
	Loaded       bool
	Mode         Mode
	Ringing      *Ringing
	Palette      CommandPaletteState
	HelpVisible  bool
	AboutVisible bool
	Status       StatusBar
	Keys         GlobalKeyMap
	Quitting     bool
	LastError    error
	Clock        time.Time

	service   AlarmService
	alerts    Alerts
	alarmsCh  <-chan []model.Alarm
	board     *notify.Board
	records   RecordWatcher
	snooze    time.Duration
	now       func() time.Time
	editID    int64
	editing   *model.Alarm
	stopWatch func()
	aboutView string

	alarmTable   table.Model
	editInput    textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// AlarmsMsg carries a fresh snapshot of every stored alarm.
type AlarmsMsg struct {
	Alarms []model.Alarm
}

// SurfaceChangedMsg is sent when the alert surface posted, cancelled or toasted.
type SurfaceChangedMsg struct{}

// RecordMsg carries the latest state of the alarm an editor is following.
type RecordMsg struct {
	ID       int64
	Snapshot storage.AlarmSnapshot

	ch <-chan storage.AlarmSnapshot
}

type ClockTickMsg struct {
	At time.Time
}

// OpDoneMsg reports the outcome of an edit run in the background.
type OpDoneMsg struct {
	Text string
	Err  error
}

func NewModel() Model {
	m := Model{
		Mode: ModeList,
		Keys: GlobalKeyMap{
			Add:      "a",
			EditTime: "e",
			Label:    "l",
			Tone:     "t",
			Vibrate:  "v",
			Toggle:   " ",
			Delete:   "x",
			Dismiss:  "d",
			Snooze:   "s",
			Palette:  "/",
			Help:     "?",
			About:    "i",
			Quit:     "q",
		},
		snooze: 10 * time.Minute,
		now:    time.Now,
	}
	m.Clock = m.now()
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func NewModelWithDeps(d Deps) Model {
	m := NewModel()
	m.service = d.Service
	m.alerts = d.Alerts
	m.alarmsCh = d.Alarms
	m.board = d.Board
	m.records = d.Records
	if d.SnoozeDuration > 0 {
		m.snooze = d.SnoozeDuration
	}
	if d.Now != nil {
		m.now = d.Now
		m.Clock = m.now()
	}
	m.syncRinging()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: " ", Width: 1},
		{Title: "#", Width: 4},
		{Title: "Time", Width: 5},
		{Title: "On", Width: 3},
		{Title: "Days", Width: 14},
		{Title: "Label", Width: 16},
	}
	m.alarmTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.editInput = textinput.New()
	m.editInput.Prompt = "> "
	m.editInput.CharLimit = 256
	m.editInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
}
