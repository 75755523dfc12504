package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/clockd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens the database at path and brings its schema up to date.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetAlarm(ctx context.Context, id int64) (model.Alarm, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, hour, minute, label, is_active, days, tone_uri, vibrate
		FROM alarms WHERE id = ?`, id)
	item, err := scanAlarm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Alarm{}, ErrNotFound
		}
		return model.Alarm{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) ListAlarms(ctx context.Context, filter AlarmListFilter) ([]model.Alarm, error) {
	query := `SELECT id, hour, minute, label, is_active, days, tone_uri, vibrate FROM alarms`
	args := make([]any, 0, 3)
	if filter.Active != nil {
		query += ` WHERE is_active = ?`
		args = append(args, boolInt(*filter.Active))
	}
	query += ` ORDER BY hour ASC, minute ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Alarm, 0)
	for rows.Next() {
		item, scanErr := scanAlarm(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertAlarm(ctx context.Context, in model.Alarm) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	stamp := mustTime(r.now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO alarms (hour, minute, label, is_active, days, tone_uri, vibrate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Hour, in.Minute, nullString(in.Label), boolInt(in.IsActive), string(in.Days), nullString(in.ToneURI), boolInt(in.Vibrate),
		stamp, stamp,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) UpdateAlarm(ctx context.Context, in model.Alarm) error {
	if err := in.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE alarms
		SET hour = ?, minute = ?, label = ?, is_active = ?, days = ?, tone_uri = ?, vibrate = ?, updated_at = ?
		WHERE id = ?`,
		in.Hour, in.Minute, nullString(in.Label), boolInt(in.IsActive), string(in.Days), nullString(in.ToneURI), boolInt(in.Vibrate),
		mustTime(r.now()), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteAlarm(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alarms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlarm(s scanner) (model.Alarm, error) {
	var out model.Alarm
	var label sql.NullString
	var tone sql.NullString
	var active int
	var vibrate int
	var days string
	if err := s.Scan(&out.ID, &out.Hour, &out.Minute, &label, &active, &days, &tone, &vibrate); err != nil {
		return model.Alarm{}, err
	}
	mask, err := model.ParseDayMask(days)
	if err != nil {
		return model.Alarm{}, fmt.Errorf("alarm %d: %w", out.ID, err)
	}
	out.Days = mask
	if label.Valid {
		v := label.String
		out.Label = &v
	}
	if tone.Valid {
		v := tone.String
		out.ToneURI = &v
	}
	out.IsActive = active == 1
	out.Vibrate = vibrate == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
