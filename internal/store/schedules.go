package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/antojitos/comanda/internal/model"
)

// ListSchedules returns all configured weekday schedules ordered by ID.
func (s *Store) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	var schedules []model.Schedule
	if err := s.db.SelectContext(ctx, &schedules, `SELECT * FROM schedules ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// GetScheduleByDay returns the schedule for one weekday.
func (s *Store) GetScheduleByDay(ctx context.Context, day string) (*model.Schedule, error) {
	var sched model.Schedule
	q := s.rebind(`SELECT * FROM schedules WHERE day = ?`)
	if err := s.db.GetContext(ctx, &sched, q, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &sched, nil
}

// UpsertSchedule creates or replaces the schedule row for sched.Day and
// returns the stored row. Disabled days persist NULL start and end times.
func (s *Store) UpsertSchedule(ctx context.Context, sched *model.Schedule) (*model.Schedule, error) {
	if !sched.Enabled {
		sched.StartTime = nil
		sched.EndTime = nil
	}

	existing, err := s.GetScheduleByDay(ctx, sched.Day)
	switch {
	case err == nil:
		q := s.rebind(`UPDATE schedules SET enabled = ?, start_time = ?, end_time = ? WHERE day = ?`)
		if _, err := s.db.ExecContext(ctx, q, sched.Enabled, sched.StartTime, sched.EndTime, sched.Day); err != nil {
			return nil, fmt.Errorf("update schedule: %w", err)
		}
		sched.ID = existing.ID
	case errors.Is(err, ErrNotFound):
		q := s.rebind(`INSERT INTO schedules (day, enabled, start_time, end_time) VALUES (?, ?, ?, ?)`)
		if s.driver == "postgres" {
			row := s.db.QueryRowContext(ctx, q+` RETURNING id`, sched.Day, sched.Enabled, sched.StartTime, sched.EndTime)
			if err := row.Scan(&sched.ID); err != nil {
				return nil, fmt.Errorf("insert schedule: %w", err)
			}
		} else {
			res, err := s.db.ExecContext(ctx, q, sched.Day, sched.Enabled, sched.StartTime, sched.EndTime)
			if err != nil {
				return nil, fmt.Errorf("insert schedule: %w", err)
			}
			if id, err := res.LastInsertId(); err == nil {
				sched.ID = id
			}
		}
	default:
		return nil, err
	}
	return sched, nil
}

// DeleteScheduleByDay removes the schedule for one weekday.
func (s *Store) DeleteScheduleByDay(ctx context.Context, day string) error {
	q := s.rebind(`DELETE FROM schedules WHERE day = ?`)
	res, err := s.db.ExecContext(ctx, q, day)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
