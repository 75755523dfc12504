package alarm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/storage"
	"go.uber.org/zap"
)

// Service applies user edits: every change is persisted first and the wake
// schedule is then brought in line with the stored record. All work on one
// alarm id is serialized through the shared KeyedMutex.
type Service struct {
	repo   storage.Repository
	sched  *Scheduler
	locks  *KeyedMutex
	logger *zap.Logger
}

func NewService(repo storage.Repository, sched *Scheduler, locks *KeyedMutex, logger *zap.Logger) *Service {
	if locks == nil {
		locks = NewKeyedMutex()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, sched: sched, locks: locks, logger: logger}
}

func (s *Service) Locks() *KeyedMutex { return s.locks }

func (s *Service) Get(ctx context.Context, id int64) (model.Alarm, error) {
	return s.repo.GetAlarm(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]model.Alarm, error) {
	return s.repo.ListAlarms(ctx, storage.AlarmListFilter{})
}

// Create stores a new alarm and schedules it when active.
func (s *Service) Create(ctx context.Context, a model.Alarm) (model.Alarm, error) {
	if a.Days == "" {
		a.Days = model.NoDays
	}
	if err := a.Validate(); err != nil {
		return model.Alarm{}, err
	}
	id, err := s.repo.InsertAlarm(ctx, a)
	if err != nil {
		return model.Alarm{}, fmt.Errorf("create alarm: %w", err)
	}
	a.ID = id

	unlock := s.locks.Lock(id)
	defer unlock()
	if err := s.reschedule(ctx, a); err != nil {
		return a, err
	}
	return a, nil
}

// Update replaces the stored record and re-arms its wake: the old wake is
// cancelled, and a new one is registered if the alarm is active.
func (s *Service) Update(ctx context.Context, a model.Alarm) error {
	unlock := s.locks.Lock(a.ID)
	defer unlock()
	return s.update(ctx, a)
}

// Modify loads id, applies fn and saves the result as Update does.
func (s *Service) Modify(ctx context.Context, id int64, fn func(*model.Alarm)) (model.Alarm, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	a, err := s.repo.GetAlarm(ctx, id)
	if err != nil {
		return model.Alarm{}, err
	}
	fn(&a)
	a.ID = id
	if err := s.update(ctx, a); err != nil {
		return a, err
	}
	return a, nil
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (model.Alarm, error) {
	return s.Modify(ctx, id, func(a *model.Alarm) { a.IsActive = active })
}

// Delete removes the record and every wake registered for it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.repo.DeleteAlarm(ctx, id); err != nil {
		return fmt.Errorf("delete alarm %d: %w", id, err)
	}
	s.sched.CancelAlarm(model.Alarm{ID: id})
	s.sched.CancelSnooze(id)
	s.logger.Info("alarm deleted", zap.Int64("alarm_id", id))
	return nil
}

func (s *Service) update(ctx context.Context, a model.Alarm) error {
	if err := s.repo.UpdateAlarm(ctx, a); err != nil {
		return fmt.Errorf("update alarm %d: %w", a.ID, err)
	}
	s.sched.CancelAlarm(a)
	if !a.IsActive {
		s.sched.CancelSnooze(a.ID)
	}
	return s.reschedule(ctx, a)
}

// reschedule arms a. A missing permission is reported by the scheduler and
// does not fail the edit.
func (s *Service) reschedule(ctx context.Context, a model.Alarm) error {
	if _, err := s.sched.ScheduleAlarm(ctx, a); err != nil {
		if errors.Is(err, ErrPermissionMissing) {
			return nil
		}
		return err
	}
	return nil
}
