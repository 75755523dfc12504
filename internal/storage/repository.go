package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/clockd/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the alarm record store.
type Repository interface {
	GetAlarm(ctx context.Context, id int64) (model.Alarm, error)
	ListAlarms(ctx context.Context, filter AlarmListFilter) ([]model.Alarm, error)
	InsertAlarm(ctx context.Context, in model.Alarm) (int64, error)
	UpdateAlarm(ctx context.Context, in model.Alarm) error
	DeleteAlarm(ctx context.Context, id int64) error
}
