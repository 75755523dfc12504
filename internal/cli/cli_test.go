package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/clockd/internal/config"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("CLOCKD_DB_PATH", filepath.Join(dir, "clockd.db"))
	t.Setenv("CLOCKD_LOG_FILE", filepath.Join(dir, "clockd.log"))
	t.Setenv("CLOCKD_DESKTOP_NOTIFICATIONS", "false")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := New()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAddListRemove(t *testing.T) {
	isolate(t)

	out, err := run(t, "add", "7:30", "--label", "gym", "--days", "mon,wed,fri")
	require.NoError(t, err)
	assert.Contains(t, out, "Alarm set for")
	assert.Contains(t, out, "added alarm #1 at 07:30 (Mon, Wed, Fri)")

	out, err = run(t, "add", "22:00", "--inactive")
	require.NoError(t, err)
	assert.NotContains(t, out, "Alarm set for")
	assert.Contains(t, out, "added alarm #2 at 22:00 (Once)")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "gym")
	assert.Contains(t, out, "Mon, Wed, Fri")
	assert.Contains(t, out, "22:00")

	out, err = run(t, "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted alarm #1")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "gym")
}

func TestAddRejectsBadInput(t *testing.T) {
	isolate(t)

	_, err := run(t, "add", "25:00")
	assert.ErrorIs(t, err, model.ErrInvalidClock)

	_, err = run(t, "add", "07:00", "--days", "funday")
	assert.ErrorIs(t, err, model.ErrInvalidDays)

	_, err = run(t, "rm", "abc")
	assert.Error(t, err)
}

func TestListEmpty(t *testing.T) {
	isolate(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "no alarms\n", out)

	out, err = run(t, "next")
	require.NoError(t, err)
	assert.Equal(t, "no active alarms\n", out)
}

func TestNextSkipsInactive(t *testing.T) {
	isolate(t)

	_, err := run(t, "add", "06:00", "--label", "early", "--days", "daily")
	require.NoError(t, err)
	_, err = run(t, "add", "08:00", "--label", "sleepy", "--inactive")
	require.NoError(t, err)

	out, err := run(t, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "early")
	assert.NotContains(t, out, "sleepy")
}

func TestExportToFile(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, "add", "07:00", "--label", "work", "--days", "weekdays")
	require.NoError(t, err)

	path := filepath.Join(dir, "alarms.ics")
	_, err = run(t, "export", "--out", path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	ics := string(raw)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:work")
	assert.Contains(t, ics, "FREQ=WEEKLY")
}

func TestVersionAndEnvSkipConfig(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))

	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")

	out, err = run(t, "env")
	require.NoError(t, err)
	assert.Contains(t, out, "CLOCKD_DB_PATH")
}

func TestOpenAppSchedulesIntoEngine(t *testing.T) {
	isolate(t)
	cfg, err := config.Load("")
	require.NoError(t, err)

	var toasts bytes.Buffer
	app, err := OpenApp(cfg, zap.NewNop(), AppOptions{Toaster: notify.WriterToaster{W: &toasts}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := app.Service.Create(ctx, model.Alarm{Hour: 5, Minute: 15, IsActive: true, Days: model.EveryDay})
	require.NoError(t, err)
	assert.Equal(t, 1, app.Engine.Len())
	assert.True(t, strings.HasPrefix(toasts.String(), "Alarm set for"))

	_, err = app.Service.SetActive(ctx, a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, app.Engine.Len())
}
