package trigger

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/clockd/internal/alarm"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/ringer"
	"github.com/sandeepkv93/clockd/internal/scheduler"
	"github.com/sandeepkv93/clockd/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("test", 2*60*60)

// monday is 2026-02-09 08:00 local.
var monday = time.Date(2026, 2, 9, 8, 0, 0, 0, testZone)

type fakePlayback struct {
	mu      sync.Mutex
	stopped bool
}

func (p *fakePlayback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

func (p *fakePlayback) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

type fakePlayer struct {
	mu    sync.Mutex
	err   error
	plays []*fakePlayback
}

func (p *fakePlayer) Play(ringer.Tone) (ringer.Playback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	pb := &fakePlayback{}
	p.plays = append(p.plays, pb)
	return pb, nil
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.plays)
}

func (p *fakePlayer) last() *fakePlayback {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays[len(p.plays)-1]
}

type fixture struct {
	repo    *storage.SQLiteRepository
	engine  *scheduler.Engine
	sched   *alarm.Scheduler
	svc     *alarm.Service
	board   *notify.Board
	player  *fakePlayer
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "trigger-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.MigrateUp(db))
	repo, err := storage.NewSQLiteRepository(db)
	require.NoError(t, err)

	engine := scheduler.NewEngine(8)
	board := notify.NewBoard()
	sched := alarm.NewScheduler(engine, board, nil)
	sched.Now = func() time.Time { return monday }
	locks := alarm.NewKeyedMutex()
	player := &fakePlayer{}

	h := NewHandler(Deps{
		Store:    repo,
		Sched:    sched,
		Surface:  board,
		Slot:     ringer.NewSlot(nil),
		Resolver: ringer.NewResolver(nil),
		Player:   player,
		Locks:    locks,
	})
	h.now = func() time.Time { return monday }

	return &fixture{
		repo:    repo,
		engine:  engine,
		sched:   sched,
		svc:     alarm.NewService(repo, sched, locks, nil),
		board:   board,
		player:  player,
		handler: h,
	}
}

func (f *fixture) create(t *testing.T, a model.Alarm) model.Alarm {
	t.Helper()
	created, err := f.svc.Create(context.Background(), a)
	require.NoError(t, err)
	return created
}

func (f *fixture) fire(t *testing.T, id int64, snooze bool) error {
	t.Helper()
	key := scheduler.Key{AlarmID: id, Snooze: snooze}
	return f.handler.HandleWake(context.Background(), scheduler.WakeEvent{
		Key:     key,
		Payload: scheduler.Payload{AlarmID: id, Label: "Alarm"},
		FireAt:  monday,
	})
}

func (f *fixture) stored(t *testing.T, id int64) model.Alarm {
	t.Helper()
	a, err := f.repo.GetAlarm(context.Background(), id)
	require.NoError(t, err)
	return a
}

func TestOneTimeAlarmRingsThenDeactivates(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.NoDays})
	f.engine.Cancel(alarm.RegularKey(a.ID))

	require.NoError(t, f.fire(t, a.ID, false))

	assert.Equal(t, Ringing, f.handler.State(a.ID))
	post, ok := f.board.Get(a.ID)
	require.True(t, ok)
	assert.False(t, post.Content.Placeholder)
	assert.True(t, post.Content.Ongoing)
	require.Len(t, post.Content.Actions, 2)
	assert.Equal(t, notify.ActionDismiss, post.Content.Actions[0].Kind)
	assert.Equal(t, notify.ActionSnooze, post.Content.Actions[1].Kind)
	assert.Equal(t, 1, f.player.count())

	assert.False(t, f.stored(t, a.ID).IsActive)
	assert.Zero(t, f.engine.Len(), "one-time alarm must not register a new wake")
}

func TestStrayWakeForDeactivatedAlarmIsIgnored(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.NoDays})
	require.NoError(t, f.fire(t, a.ID, false))
	require.True(t, f.handler.Dismiss(a.ID))
	before := f.stored(t, a.ID)

	require.NoError(t, f.fire(t, a.ID, false))

	assert.Equal(t, Idle, f.handler.State(a.ID))
	_, posted := f.board.Get(a.ID)
	assert.False(t, posted)
	assert.Equal(t, 1, f.player.count())
	assert.Equal(t, before, f.stored(t, a.ID))
}

func TestRepeatedWakeLeavesRingingOneTimeAlarmAlone(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.NoDays})
	require.NoError(t, f.fire(t, a.ID, false))
	ringing, ok := f.board.Get(a.ID)
	require.True(t, ok)
	pb := f.player.last()
	before := f.stored(t, a.ID)

	require.NoError(t, f.fire(t, a.ID, false))

	assert.Equal(t, Ringing, f.handler.State(a.ID))
	post, ok := f.board.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, ringing.Content, post.Content)
	assert.False(t, post.Content.Placeholder)
	assert.False(t, pb.isStopped())
	assert.Equal(t, 1, f.player.count())
	assert.Equal(t, before, f.stored(t, a.ID))
	cur, ok := f.handler.Current()
	require.True(t, ok)
	assert.Equal(t, a.ID, cur.AlarmID)

	require.True(t, f.handler.Dismiss(a.ID))
	assert.True(t, pb.isStopped())
}

func TestSnoozeWakeAfterSwitchOffIsIgnored(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.Weekdays})
	require.NoError(t, f.fire(t, a.ID, false))
	_, applied, err := f.handler.Snooze(context.Background(), a.ID)
	require.NoError(t, err)
	require.True(t, applied)

	// The engine has already handed the snooze wake to the dispatcher.
	f.engine.Cancel(alarm.SnoozeKey(a.ID))
	_, err = f.svc.SetActive(context.Background(), a.ID, false)
	require.NoError(t, err)

	require.NoError(t, f.fire(t, a.ID, true))
	assert.Equal(t, Idle, f.handler.State(a.ID))
	_, posted := f.board.Get(a.ID)
	assert.False(t, posted)
	assert.Equal(t, 1, f.player.count())
	assert.False(t, f.stored(t, a.ID).IsActive)
}

func TestInactiveAlarmWakeProducesNoAlert(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 6, IsActive: false, Days: model.Weekdays, Label: model.StringPtr("Off")})

	require.NoError(t, f.fire(t, a.ID, false))

	assert.Equal(t, Idle, f.handler.State(a.ID))
	assert.Empty(t, f.board.Posts())
	assert.Zero(t, f.player.count())
	assert.Equal(t, a, f.stored(t, a.ID))
}

func TestWakeForDeletedAlarmIsIgnored(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fire(t, 999, false))
	require.NoError(t, f.fire(t, 999, true))
	assert.Empty(t, f.board.Posts())
	assert.Zero(t, f.player.count())
}

func TestRepeatingAlarmRegistersExactlyOneLaterWake(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.EveryDay})

	require.NoError(t, f.fire(t, a.ID, false))

	assert.True(t, f.stored(t, a.ID).IsActive)
	assert.Equal(t, 1, f.engine.Len())
	ev, ok := f.engine.Pending(alarm.RegularKey(a.ID))
	require.True(t, ok)
	assert.True(t, ev.FireAt.After(monday))
	assert.Equal(t, time.Date(2026, 2, 10, 7, 0, 0, 0, testZone), ev.FireAt)
}

func TestSnoozeRearmsSameIDWithoutTouchingRecord(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.Weekdays, Label: model.StringPtr("Work")})
	require.NoError(t, f.fire(t, a.ID, false))
	afterRing := f.stored(t, a.ID)
	pb := f.player.last()

	at, applied, err := f.handler.Snooze(context.Background(), a.ID)
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, monday.Add(10*time.Minute), at)
	assert.True(t, pb.isStopped())
	assert.Equal(t, Snoozed, f.handler.State(a.ID))
	_, posted := f.board.Get(a.ID)
	assert.False(t, posted)

	ev, ok := f.engine.Pending(alarm.SnoozeKey(a.ID))
	require.True(t, ok)
	assert.Equal(t, a.ID, ev.Payload.AlarmID)
	assert.Equal(t, "Work", ev.Payload.Label)
	assert.Equal(t, afterRing, f.stored(t, a.ID))

	require.NoError(t, f.fire(t, a.ID, true))
	assert.Equal(t, Ringing, f.handler.State(a.ID))
	assert.Equal(t, 2, f.player.count())
	assert.Equal(t, afterRing, f.stored(t, a.ID))
}

func TestSnoozedOneTimeAlarmRingsAgain(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.NoDays})
	f.engine.Cancel(alarm.RegularKey(a.ID))
	require.NoError(t, f.fire(t, a.ID, false))
	_, applied, err := f.handler.Snooze(context.Background(), a.ID)
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, f.fire(t, a.ID, true))
	assert.Equal(t, Ringing, f.handler.State(a.ID))
	assert.False(t, f.stored(t, a.ID).IsActive)
	_, regular := f.engine.Pending(alarm.RegularKey(a.ID))
	assert.False(t, regular)
}

func TestDismissAndSnoozeAreIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.EveryDay})
	require.NoError(t, f.fire(t, a.ID, false))
	pb := f.player.last()

	assert.True(t, f.handler.Dismiss(a.ID))
	assert.True(t, pb.isStopped())
	assert.Equal(t, Idle, f.handler.State(a.ID))
	assert.False(t, f.handler.Dismiss(a.ID))

	_, applied, err := f.handler.Snooze(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, applied)
	_, snoozed := f.engine.Pending(alarm.SnoozeKey(a.ID))
	assert.False(t, snoozed)
}

func TestForegroundFailureAbortsWake(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.NoDays})
	f.board.Close()

	err := f.fire(t, a.ID, false)
	require.ErrorIs(t, err, ErrForegroundUnavailable)
	assert.Equal(t, Idle, f.handler.State(a.ID))
	assert.Zero(t, f.player.count())
	assert.True(t, f.stored(t, a.ID).IsActive)
}

func TestPlaybackFailureStillShowsAlert(t *testing.T) {
	f := newFixture(t)
	f.player.err = errors.New("no audio device")
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.NoDays})

	require.NoError(t, f.fire(t, a.ID, false))
	assert.Equal(t, Ringing, f.handler.State(a.ID))
	_, posted := f.board.Get(a.ID)
	assert.True(t, posted)
	assert.True(t, f.handler.Dismiss(a.ID))
}

func TestNewAlertStopsPreviousOne(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.EveryDay})
	second := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.EveryDay})

	require.NoError(t, f.fire(t, first.ID, false))
	firstPB := f.player.last()
	require.NoError(t, f.fire(t, second.ID, false))

	assert.True(t, firstPB.isStopped())
	assert.Equal(t, Idle, f.handler.State(first.ID))
	assert.Equal(t, Ringing, f.handler.State(second.ID))
	_, firstPosted := f.board.Get(first.ID)
	assert.False(t, firstPosted)
	cur, ok := f.handler.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, cur.AlarmID)
}

func TestWakeWaitsForConcurrentEdit(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.Alarm{Hour: 7, IsActive: true, Days: model.NoDays})
	unlock := f.svc.Locks().Lock(a.ID)

	done := make(chan error, 1)
	go func() { done <- f.fire(t, a.ID, false) }()

	assert.Eventually(t, func() bool { return f.handler.State(a.ID) == Starting }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Starting, f.handler.State(a.ID))
	assert.Zero(t, f.player.count())

	unlock()
	require.NoError(t, <-done)
	assert.Equal(t, Ringing, f.handler.State(a.ID))
}
