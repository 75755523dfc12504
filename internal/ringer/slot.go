package ringer

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one ringing alert.
type Session struct {
	ID        string
	AlarmID   int64
	Label     string
	Vibrate   bool
	StartedAt time.Time

	mu       sync.Mutex
	tone     Tone
	playback Playback
	stopped  bool
}

func NewSession(alarmID int64, label string, vibrate bool) *Session {
	return &Session{
		ID:        uuid.New().String(),
		AlarmID:   alarmID,
		Label:     label,
		Vibrate:   vibrate,
		StartedAt: time.Now(),
	}
}

// Attach hands the running playback to the session. If the session was
// already stopped the playback is stopped right away.
func (s *Session) Attach(t Tone, pb Playback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tone = t
	if s.stopped {
		if pb != nil {
			pb.Stop()
		}
		return
	}
	s.playback = pb
}

func (s *Session) Tone() Tone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tone
}

func (s *Session) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.playback != nil {
		s.playback.Stop()
		s.playback = nil
	}
}

// Slot holds the single alert that may ring at a time.
type Slot struct {
	mu      sync.Mutex
	current *Session
	logger  *zap.Logger
}

func NewSlot(logger *zap.Logger) *Slot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slot{logger: logger}
}

// Start makes s the current alert, stopping whatever was ringing before.
func (sl *Slot) Start(s *Session) {
	sl.mu.Lock()
	prev := sl.current
	sl.current = s
	sl.mu.Unlock()

	if prev != nil && prev != s {
		prev.stop()
		sl.logger.Info("alert replaced", zap.Int64("previous_alarm_id", prev.AlarmID), zap.Int64("alarm_id", s.AlarmID))
	}
	if s.Vibrate {
		sl.logger.Info("vibration requested", zap.Int64("alarm_id", s.AlarmID))
	}
}

func (sl *Slot) StopCurrent() (int64, bool) {
	sl.mu.Lock()
	cur := sl.current
	sl.current = nil
	sl.mu.Unlock()
	if cur == nil {
		return 0, false
	}
	cur.stop()
	return cur.AlarmID, true
}

// StopIf stops the current alert only when it belongs to alarmID.
func (sl *Slot) StopIf(alarmID int64) bool {
	sl.mu.Lock()
	cur := sl.current
	if cur == nil || cur.AlarmID != alarmID {
		sl.mu.Unlock()
		return false
	}
	sl.current = nil
	sl.mu.Unlock()
	cur.stop()
	return true
}

func (sl *Slot) Current() (*Session, bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.current, sl.current != nil
}
