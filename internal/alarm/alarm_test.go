package alarm

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/clockd/internal/scheduler"
	"github.com/sandeepkv93/clockd/internal/storage"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("test", 2*60*60)

// monday is 2026-02-09 08:00 local.
var monday = time.Date(2026, 2, 9, 8, 0, 0, 0, testZone)

type recordingToaster struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingToaster) Toast(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingToaster) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func newTestScheduler(t *testing.T) (*Scheduler, *scheduler.Engine, *recordingToaster) {
	t.Helper()
	engine := scheduler.NewEngine(8)
	toaster := &recordingToaster{}
	sched := NewScheduler(engine, toaster, nil)
	sched.Now = func() time.Time { return monday }
	return sched, engine, toaster
}

func newTestRepo(t *testing.T) storage.Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "alarm-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.MigrateUp(db))
	repo, err := storage.NewSQLiteRepository(db)
	require.NoError(t, err)
	return repo
}

func newTestService(t *testing.T) (*Service, *scheduler.Engine, *recordingToaster) {
	t.Helper()
	sched, engine, toaster := newTestScheduler(t)
	return NewService(newTestRepo(t), sched, NewKeyedMutex(), nil), engine, toaster
}

func ctx() context.Context { return context.Background() }
