package storage

import (
	"context"
	"sync"
	"time"

	"github.com/sandeepkv93/clockd/internal/model"
	"go.uber.org/zap"
)

const DefaultFeedIdleTimeout = 5 * time.Second

// Feed decorates a Repository with live reads: every successful write pushes
// a fresh snapshot of all alarms to the current subscribers. The latest
// snapshot is kept for IdleTimeout after the last subscriber leaves.
type Feed struct {
	repo        Repository
	idleTimeout time.Duration
	logger      *zap.Logger

	mu        sync.Mutex
	subs      map[int]chan []model.Alarm
	nextSub   int
	snapshot  []model.Alarm
	hasSnap   bool
	idleTimer *time.Timer
	// refreshes are numbered when they start; a result older than the last
	// published one is discarded.
	refreshSeq   uint64
	publishedSeq uint64
}

// AlarmSnapshot is one observation of a single record.
type AlarmSnapshot struct {
	Alarm model.Alarm
	Found bool
}

func NewFeed(repo Repository, idleTimeout time.Duration, logger *zap.Logger) *Feed {
	if idleTimeout <= 0 {
		idleTimeout = DefaultFeedIdleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		repo:        repo,
		idleTimeout: idleTimeout,
		logger:      logger,
		subs:        make(map[int]chan []model.Alarm),
	}
}

func (f *Feed) GetAlarm(ctx context.Context, id int64) (model.Alarm, error) {
	return f.repo.GetAlarm(ctx, id)
}

func (f *Feed) ListAlarms(ctx context.Context, filter AlarmListFilter) ([]model.Alarm, error) {
	return f.repo.ListAlarms(ctx, filter)
}

func (f *Feed) InsertAlarm(ctx context.Context, in model.Alarm) (int64, error) {
	id, err := f.repo.InsertAlarm(ctx, in)
	if err != nil {
		return 0, err
	}
	f.publish(ctx)
	return id, nil
}

func (f *Feed) UpdateAlarm(ctx context.Context, in model.Alarm) error {
	if err := f.repo.UpdateAlarm(ctx, in); err != nil {
		return err
	}
	f.publish(ctx)
	return nil
}

func (f *Feed) DeleteAlarm(ctx context.Context, id int64) error {
	if err := f.repo.DeleteAlarm(ctx, id); err != nil {
		return err
	}
	f.publish(ctx)
	return nil
}

// Subscribe returns a channel that receives the current alarm list right
// away and again after every write. Slow readers only see the latest list.
func (f *Feed) Subscribe(ctx context.Context) (<-chan []model.Alarm, func()) {
	ch := make(chan []model.Alarm, 1)

	f.mu.Lock()
	if f.idleTimer != nil {
		f.idleTimer.Stop()
		f.idleTimer = nil
	}
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	snap, ok := f.snapshot, f.hasSnap
	f.mu.Unlock()

	if ok {
		offer(ch, snap)
	} else {
		f.publish(ctx)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() { f.unsubscribe(id) })
	}
	return ch, cancel
}

// WatchAlarm narrows the feed to a single record. The returned channel is
// closed once cancel is called.
func (f *Feed) WatchAlarm(ctx context.Context, id int64) (<-chan AlarmSnapshot, func()) {
	all, cancelAll := f.Subscribe(ctx)
	out := make(chan AlarmSnapshot, 1)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case list, ok := <-all:
				if !ok {
					return
				}
				snap := AlarmSnapshot{}
				for _, a := range list {
					if a.ID == id {
						snap = AlarmSnapshot{Alarm: a, Found: true}
						break
					}
				}
				select {
				case <-out:
				default:
				}
				out <- snap
			}
		}
	}()
	var once sync.Once
	return out, func() {
		once.Do(func() {
			cancelAll()
			close(done)
		})
	}
}

func (f *Feed) unsubscribe(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, id)
	if len(f.subs) > 0 || !f.hasSnap {
		return
	}
	f.idleTimer = time.AfterFunc(f.idleTimeout, f.dropIdleSnapshot)
}

func (f *Feed) dropIdleSnapshot() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) > 0 {
		return
	}
	f.snapshot = nil
	f.hasSnap = false
	f.idleTimer = nil
	f.logger.Debug("alarm feed idle, snapshot released")
}

func (f *Feed) publish(ctx context.Context) {
	f.mu.Lock()
	watched := len(f.subs) > 0 || f.hasSnap
	f.refreshSeq++
	seq := f.refreshSeq
	f.mu.Unlock()
	if !watched {
		return
	}

	list, err := f.repo.ListAlarms(ctx, AlarmListFilter{})
	if err != nil {
		f.logger.Warn("alarm feed refresh failed", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq < f.publishedSeq {
		f.logger.Debug("stale alarm feed refresh dropped", zap.Uint64("seq", seq), zap.Uint64("published", f.publishedSeq))
		return
	}
	f.publishedSeq = seq
	f.snapshot = list
	f.hasSnap = true
	for _, ch := range f.subs {
		offer(ch, list)
	}
}

func (f *Feed) cached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasSnap
}

func offer(ch chan []model.Alarm, list []model.Alarm) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- list:
	default:
	}
}
