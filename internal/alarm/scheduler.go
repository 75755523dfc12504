package alarm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/scheduler"
	"go.uber.org/zap"
)

// ErrPermissionMissing means exact wakes are not allowed right now. Nothing
// was registered; the caller may retry once permission is granted.
var ErrPermissionMissing = errors.New("alarm: exact alarm permission missing")

const DefaultSnoozeDuration = 10 * time.Minute

// Timer is the wake service the scheduler registers with.
type Timer interface {
	RegisterOneShot(key scheduler.Key, at time.Time, payload scheduler.Payload) error
	Cancel(key scheduler.Key)
	CanScheduleExact() bool
}

type Scheduler struct {
	timer   Timer
	toaster notify.Toaster
	logger  *zap.Logger

	SnoozeDuration time.Duration
	Now            func() time.Time

	mu      sync.Mutex
	snoozed map[int64]time.Time
}

func NewScheduler(timer Timer, toaster notify.Toaster, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if toaster == nil {
		toaster = notify.LogToaster{Logger: logger}
	}
	return &Scheduler{
		timer:          timer,
		toaster:        toaster,
		logger:         logger,
		SnoozeDuration: DefaultSnoozeDuration,
		Now:            time.Now,
		snoozed:        make(map[int64]time.Time),
	}
}

func RegularKey(id int64) scheduler.Key { return scheduler.Key{AlarmID: id} }

func SnoozeKey(id int64) scheduler.Key { return scheduler.Key{AlarmID: id, Snooze: true} }

// ScheduleAlarm arms the next occurrence of a. Inactive alarms are ignored
// and yield the zero time.
func (s *Scheduler) ScheduleAlarm(ctx context.Context, a model.Alarm) (time.Time, error) {
	return s.schedule(ctx, a, true)
}

func (s *Scheduler) schedule(ctx context.Context, a model.Alarm, toast bool) (time.Time, error) {
	if !a.IsActive {
		return time.Time{}, nil
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if err := s.checkPermission(a.ID); err != nil {
		return time.Time{}, err
	}

	now := s.Now()
	at, err := model.NextTrigger(a, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("alarm %d: %w", a.ID, err)
	}
	payload := scheduler.Payload{AlarmID: a.ID, Label: a.DisplayLabel()}
	if err := s.timer.RegisterOneShot(RegularKey(a.ID), at, payload); err != nil {
		return time.Time{}, fmt.Errorf("register alarm %d: %w", a.ID, err)
	}

	s.logger.Info("alarm scheduled",
		zap.Int64("alarm_id", a.ID),
		zap.Time("fire_at", at),
		zap.Duration("in", at.Sub(now)),
	)
	if toast {
		s.toaster.Toast(FormatScheduled(at, now))
	}
	return at, nil
}

// CancelAlarm removes the regular wake for a. It never fails.
func (s *Scheduler) CancelAlarm(a model.Alarm) {
	s.timer.Cancel(RegularKey(a.ID))
	s.logger.Debug("alarm cancelled", zap.Int64("alarm_id", a.ID))
}

// CancelSnooze removes the pending re-ring of id. A snooze wake the engine
// already delivered is disarmed too: ClaimSnooze reports false for it.
func (s *Scheduler) CancelSnooze(id int64) {
	s.timer.Cancel(SnoozeKey(id))
	s.mu.Lock()
	delete(s.snoozed, id)
	s.mu.Unlock()
}

// ClaimSnooze consumes the pending snooze of id. It reports false when no
// snooze is armed, e.g. because the alarm was switched off after the wake
// fired.
func (s *Scheduler) ClaimSnooze(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snoozed[id]; !ok {
		return false
	}
	delete(s.snoozed, id)
	return true
}

// Snooze arms a one-shot re-ring of id SnoozeDuration after now. The regular
// schedule of the alarm is left alone.
func (s *Scheduler) Snooze(ctx context.Context, id int64, label string, now time.Time) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if err := s.checkPermission(id); err != nil {
		return time.Time{}, err
	}
	at := now.Add(s.SnoozeDuration)
	if err := s.timer.RegisterOneShot(SnoozeKey(id), at, scheduler.Payload{AlarmID: id, Label: label}); err != nil {
		return time.Time{}, fmt.Errorf("register snooze %d: %w", id, err)
	}
	s.mu.Lock()
	s.snoozed[id] = at
	s.mu.Unlock()
	s.logger.Info("alarm snoozed", zap.Int64("alarm_id", id), zap.Time("fire_at", at))
	return at, nil
}

// Restore re-arms every active alarm, e.g. after the process starts.
func (s *Scheduler) Restore(ctx context.Context, alarms []model.Alarm) error {
	var errs []error
	armed := 0
	for _, a := range alarms {
		if !a.IsActive {
			continue
		}
		if _, err := s.schedule(ctx, a, false); err != nil {
			if errors.Is(err, ErrPermissionMissing) || ctx.Err() != nil {
				return err
			}
			errs = append(errs, err)
			continue
		}
		armed++
	}
	s.logger.Info("alarms restored", zap.Int("armed", armed), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

func (s *Scheduler) checkPermission(id int64) error {
	if s.timer.CanScheduleExact() {
		return nil
	}
	s.logger.Warn("exact alarm permission missing, alarm not scheduled", zap.Int64("alarm_id", id))
	s.toaster.Toast("Exact alarms are not allowed; alarm not scheduled")
	return ErrPermissionMissing
}

// FormatScheduled renders the confirmation shown after scheduling, e.g.
// "Alarm set for Tue 07:00 (in 23h 0m)".
func FormatScheduled(at, now time.Time) string {
	return fmt.Sprintf("Alarm set for %s %s (%s)",
		model.ShortDayName(at.Weekday()), at.Format("15:04"), FormatLead(at, now))
}

// FormatLead renders the time left until at as "in 23h 0m", rounded up to
// whole minutes.
func FormatLead(at, now time.Time) string {
	lead := at.Sub(now)
	if lead < 0 {
		lead = 0
	}
	if rem := lead % time.Minute; rem > 0 {
		lead += time.Minute - rem
	}
	hours := int(lead / time.Hour)
	minutes := int((lead % time.Hour) / time.Minute)
	return fmt.Sprintf("in %dh %dm", hours, minutes)
}
