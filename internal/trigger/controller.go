package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/ringer"
	"github.com/sandeepkv93/clockd/internal/scheduler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownAction = errors.New("trigger: unknown action")

type Action struct {
	Kind    notify.ActionKind
	AlarmID int64
}

type Result struct {
	Applied  bool
	SnoozeAt time.Time
}

// Controller turns taps on alert actions into handler transitions.
// Repeated or late taps are no-ops.
type Controller struct {
	handler *Handler
}

func NewController(h *Handler) *Controller {
	return &Controller{handler: h}
}

func (c *Controller) Dispatch(ctx context.Context, a Action) (Result, error) {
	switch a.Kind {
	case notify.ActionDismiss:
		return Result{Applied: c.handler.Dismiss(a.AlarmID)}, nil
	case notify.ActionSnooze:
		at, applied, err := c.handler.Snooze(ctx, a.AlarmID)
		return Result{Applied: applied, SnoozeAt: at}, err
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
}

// Current reports the alert that is ringing right now, if any.
func (c *Controller) Current() (*ringer.Session, bool) {
	return c.handler.Current()
}

const (
	DefaultWakeTimeout = 30 * time.Second
	maxConcurrentWakes = 4
)

// Dispatcher drains fired wakes into the handler. Each wake runs as its own
// task with a bounded lifetime.
type Dispatcher struct {
	handler     *Handler
	wakeTimeout time.Duration
	logger      *zap.Logger
}

func NewDispatcher(h *Handler, wakeTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if wakeTimeout <= 0 {
		wakeTimeout = DefaultWakeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{handler: h, wakeTimeout: wakeTimeout, logger: logger}
}

// Run returns when ctx is done or wakes is closed, after in-flight wakes
// have finished.
func (d *Dispatcher) Run(ctx context.Context, wakes <-chan scheduler.WakeEvent) error {
	var g errgroup.Group
	g.SetLimit(maxConcurrentWakes)
	defer func() { _ = g.Wait() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-wakes:
			if !ok {
				return nil
			}
			d.logger.Debug("wake received", zap.Stringer("key", ev.Key), zap.Time("fire_at", ev.FireAt))
			g.Go(func() error {
				wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.wakeTimeout)
				defer cancel()
				if err := d.handler.HandleWake(wctx, ev); err != nil {
					d.logger.Warn("wake handling failed", zap.Stringer("key", ev.Key), zap.Error(err))
				}
				return nil
			})
		}
	}
}
