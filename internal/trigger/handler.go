package trigger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sandeepkv93/clockd/internal/alarm"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/ringer"
	"github.com/sandeepkv93/clockd/internal/scheduler"
	"github.com/sandeepkv93/clockd/internal/storage"
	"go.uber.org/zap"
)

// ErrForegroundUnavailable aborts a wake: no alert may ring without the
// foreground surface.
var ErrForegroundUnavailable = errors.New("trigger: foreground alert unavailable")

type State int

const (
	Idle State = iota
	Starting
	Ringing
	Dismissed
	Snoozed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Ringing:
		return "ringing"
	case Dismissed:
		return "dismissed"
	case Snoozed:
		return "snoozed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Store interface {
	GetAlarm(ctx context.Context, id int64) (model.Alarm, error)
	UpdateAlarm(ctx context.Context, in model.Alarm) error
}

type Scheduler interface {
	ScheduleAlarm(ctx context.Context, a model.Alarm) (time.Time, error)
	Snooze(ctx context.Context, id int64, label string, now time.Time) (time.Time, error)
	ClaimSnooze(id int64) bool
}

type ToneResolver interface {
	Resolve(uri *string) (ringer.Tone, error)
}

type Deps struct {
	Store    Store
	Sched    Scheduler
	Surface  notify.Surface
	Slot     *ringer.Slot
	Resolver ToneResolver
	Player   ringer.Player
	Locks    *alarm.KeyedMutex
	Logger   *zap.Logger
}

// Handler runs the per-alarm alert state machine.
type Handler struct {
	store    Store
	sched    Scheduler
	surface  notify.Surface
	slot     *ringer.Slot
	resolver ToneResolver
	player   ringer.Player
	locks    *alarm.KeyedMutex
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	states map[int64]State
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		store:    d.Store,
		sched:    d.Sched,
		surface:  d.Surface,
		slot:     d.Slot,
		resolver: d.Resolver,
		player:   d.Player,
		locks:    d.Locks,
		logger:   d.Logger,
		now:      time.Now,
		states:   make(map[int64]State),
	}
	if h.slot == nil {
		h.slot = ringer.NewSlot(d.Logger)
	}
	if h.player == nil {
		h.player = ringer.NopPlayer{}
	}
	if h.locks == nil {
		h.locks = alarm.NewKeyedMutex()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

func (h *Handler) State(id int64) State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.states[id]
}

// Current returns the alert that is ringing right now, if any.
func (h *Handler) Current() (*ringer.Session, bool) {
	return h.slot.Current()
}

// HandleWake reacts to a fired wake for one alarm id.
func (h *Handler) HandleWake(ctx context.Context, ev scheduler.WakeEvent) error {
	id := ev.Key.AlarmID
	log := h.logger.With(zap.Int64("alarm_id", id), zap.Bool("snooze", ev.Key.Snooze))

	// A wake for the alarm that is already ringing reuses its surface.
	live := h.ringing(id)
	if !live {
		h.setState(id, Starting)
		placeholder := notify.Content{Title: ev.Payload.Label, Text: "Alarm starting", Ongoing: true, Placeholder: true}
		if err := h.surface.StartForeground(id, placeholder); err != nil {
			log.Error("critical: cannot acquire foreground alert, wake dropped", zap.Error(err))
			h.setState(id, Idle)
			return fmt.Errorf("%w: %v", ErrForegroundUnavailable, err)
		}
	}

	unlock := h.locks.Lock(id)
	defer unlock()

	a, err := h.store.GetAlarm(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Info("wake for missing alarm ignored")
		h.release(id, live)
		return nil
	case err != nil:
		log.Error("load alarm failed, wake dropped", zap.Error(err))
		h.release(id, live)
		return fmt.Errorf("load alarm %d: %w", id, err)
	case ev.Key.Snooze && !h.sched.ClaimSnooze(id):
		log.Info("snooze no longer pending, wake ignored")
		h.release(id, live)
		return nil
	case !a.IsActive && !ev.Key.Snooze:
		log.Info("wake for inactive alarm ignored")
		h.release(id, live)
		return nil
	}

	h.ring(a, log)

	if ev.Key.Snooze {
		return nil
	}
	if a.IsRepeating() {
		if _, err := h.sched.ScheduleAlarm(ctx, a); err != nil {
			log.Error("reschedule repeating alarm failed", zap.Error(err))
		}
		return nil
	}
	a.IsActive = false
	if err := h.store.UpdateAlarm(ctx, a); err != nil {
		log.Error("deactivate one-time alarm failed", zap.Error(err))
	}
	return nil
}

func (h *Handler) ring(a model.Alarm, log *zap.Logger) {
	if prev, ok := h.slot.Current(); ok && prev.AlarmID != a.ID {
		h.surface.Cancel(prev.AlarmID)
		h.setState(prev.AlarmID, Idle)
	}
	session := ringer.NewSession(a.ID, a.DisplayLabel(), a.Vibrate)
	h.slot.Start(session)

	tone, err := h.resolver.Resolve(a.ToneURI)
	if err != nil {
		log.Error("no tone available, ringing silently", zap.Error(err))
	} else if pb, playErr := h.player.Play(tone); playErr != nil {
		log.Error("tone playback failed, ringing silently", zap.String("tone", tone.Name), zap.Error(playErr))
	} else {
		session.Attach(tone, pb)
	}

	if err := h.surface.Update(a.ID, ringingContent(a)); err != nil {
		log.Error("alert surface update failed", zap.Error(err))
	}
	h.setState(a.ID, Ringing)
	log.Info("alarm ringing", zap.String("session_id", session.ID), zap.String("label", a.DisplayLabel()))
}

// Dismiss ends the alert for id. It reports false when nothing was ringing.
func (h *Handler) Dismiss(id int64) bool {
	if !h.slot.StopIf(id) {
		return false
	}
	h.surface.Cancel(id)
	h.setState(id, Dismissed)
	h.logger.Info("alarm dismissed", zap.Int64("alarm_id", id))
	h.setState(id, Idle)
	return true
}

// Snooze ends the alert for id and arms a re-ring of the same id. The alarm
// record is not touched. Nothing happens when id is not ringing.
func (h *Handler) Snooze(ctx context.Context, id int64) (time.Time, bool, error) {
	sess, ok := h.slot.Current()
	if !ok || sess.AlarmID != id || !h.slot.StopIf(id) {
		return time.Time{}, false, nil
	}
	h.surface.Cancel(id)
	h.setState(id, Snoozed)

	at, err := h.sched.Snooze(ctx, id, sess.Label, h.now())
	if err != nil {
		h.logger.Error("snooze failed", zap.Int64("alarm_id", id), zap.Error(err))
		return time.Time{}, true, err
	}
	return at, true, nil
}

func (h *Handler) ringing(id int64) bool {
	s, ok := h.slot.Current()
	return ok && s.AlarmID == id
}

// release undoes what an ignored wake acquired. An alert that was already
// ringing when the wake arrived is left as it is.
func (h *Handler) release(id int64, live bool) {
	if live {
		return
	}
	h.abort(id)
}

func (h *Handler) abort(id int64) {
	h.surface.Cancel(id)
	h.setState(id, Idle)
}

func (h *Handler) setState(id int64, s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s == Idle {
		delete(h.states, id)
		return
	}
	h.states[id] = s
}

func ringingContent(a model.Alarm) notify.Content {
	return notify.Content{
		Title:   a.DisplayLabel(),
		Text:    fmt.Sprintf("%s alarm is ringing", a.Clock()),
		Ongoing: true,
		Actions: []notify.Action{
			{Kind: notify.ActionDismiss, Label: "Dismiss"},
			{Kind: notify.ActionSnooze, Label: "Snooze"},
		},
	}
}
