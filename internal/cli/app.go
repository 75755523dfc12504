package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/clockd/internal/alarm"
	"github.com/sandeepkv93/clockd/internal/config"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/ringer"
	"github.com/sandeepkv93/clockd/internal/scheduler"
	"github.com/sandeepkv93/clockd/internal/storage"
	"github.com/sandeepkv93/clockd/internal/trigger"
	"github.com/sandeepkv93/clockd/internal/update"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App is the wired alarm stack shared by the TUI and the one-shot commands.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Repo       *storage.SQLiteRepository
	Feed       *storage.Feed
	Engine     *scheduler.Engine
	Board      *notify.Board
	Scheduler  *alarm.Scheduler
	Service    *alarm.Service
	Handler    *trigger.Handler
	Controller *trigger.Controller
}

type AppOptions struct {
	// Toaster receives scheduling confirmations in addition to the board
	// and the log.
	Toaster notify.Toaster
	Player  ringer.Player
}

func OpenApp(cfg config.Config, logger *zap.Logger, opts AppOptions) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	feed := storage.NewFeed(repo, cfg.FeedIdleTimeout, logger)

	engine := scheduler.NewEngine(cfg.Buffer)
	engine.SetExactAllowed(cfg.ExactAlarms)

	board := notify.NewBoard()
	var surface notify.Surface = board
	if cfg.DesktopNotifications {
		surface = notify.NewDesktop(board, notify.ExecSender{}, logger)
	}

	toasters := notify.Toasters{board, notify.LogToaster{Logger: logger}}
	if opts.Toaster != nil {
		toasters = append(toasters, opts.Toaster)
	}
	sched := alarm.NewScheduler(engine, toasters, logger)
	sched.SnoozeDuration = cfg.SnoozeDuration()

	locks := alarm.NewKeyedMutex()
	player := opts.Player
	if player == nil {
		player = ringer.NopPlayer{}
	}
	handler := trigger.NewHandler(trigger.Deps{
		Store:    feed,
		Sched:    sched,
		Surface:  surface,
		Slot:     ringer.NewSlot(logger),
		Resolver: ringer.NewResolver(logger),
		Player:   player,
		Locks:    locks,
		Logger:   logger,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Repo:       repo,
		Feed:       feed,
		Engine:     engine,
		Board:      board,
		Scheduler:  sched,
		Service:    alarm.NewService(feed, sched, locks, logger),
		Handler:    handler,
		Controller: trigger.NewController(handler),
	}, nil
}

func (a *App) Close() error {
	a.Engine.Stop()
	if n := a.Engine.Dropped(); n > 0 {
		a.Logger.Warn("due alarm wakes were not delivered before shutdown", zap.Uint64("dropped", n))
	}
	a.Board.Close()
	return a.Repo.Close()
}

// RunTUI re-arms every active alarm, starts the wake engine and its
// dispatcher, and runs the terminal UI until it quits or ctx ends.
func (a *App) RunTUI(ctx context.Context, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	alarms, err := a.Service.List(ctx)
	if err != nil {
		return err
	}
	if err := a.Scheduler.Restore(ctx, alarms); err != nil {
		a.Logger.Warn("restoring alarms incomplete", zap.Error(err))
	}
	a.Engine.Start()
	defer a.Engine.Stop()

	live, unsubscribe := a.Feed.Subscribe(ctx)
	defer unsubscribe()

	m := update.NewModelWithDeps(update.Deps{
		Service:        a.Service,
		Alerts:         a.Controller,
		Alarms:         live,
		Records:        a.Feed,
		Board:          a.Board,
		SnoozeDuration: a.Config.SnoozeDuration(),
	})
	program := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return trigger.NewDispatcher(a.Handler, a.Config.WakeTimeout, a.Logger).Run(gctx, a.Engine.C())
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if s, ok := a.Handler.Current(); ok {
		a.Logger.Info("silencing ringing alarm on exit", zap.Int64("alarm_id", s.AlarmID))
		a.Handler.Dismiss(s.AlarmID)
	}
	return nil
}
