package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
)

const scheduleColumns = `
	id, doctor_id, day_of_week, start_time, end_time,
	slot_duration_minutes, active, created_at, updated_at
`

func (r *scheduleRepository) Create(ctx context.Context, rule *model.ScheduleRule) error {
	query := `
		INSERT INTO schedule_rules (
			id, doctor_id, day_of_week, start_time, end_time,
			slot_duration_minutes, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.DoctorID,
		rule.DayOfWeek,
		rule.StartTime,
		rule.EndTime,
		rule.SlotDurationMinutes,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule rule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) Get(ctx context.Context, id uuid.UUID) (*model.ScheduleRule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_rules WHERE id = $1`

	var rule model.ScheduleRule
	err := r.db.GetContext(ctx, &rule, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule rule: %w", err)
	}
	return &rule, nil
}

func (r *scheduleRepository) Update(ctx context.Context, rule *model.ScheduleRule) error {
	query := `
		UPDATE schedule_rules
		SET day_of_week = $1, start_time = $2, end_time = $3,
			slot_duration_minutes = $4, active = $5, updated_at = $6
		WHERE id = $7
	`
	rule.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		rule.DayOfWeek,
		rule.StartTime,
		rule.EndTime,
		rule.SlotDurationMinutes,
		rule.Active,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule rule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM schedule_rules WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule rule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *scheduleRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.ScheduleRule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedule_rules
		WHERE doctor_id = $1
		ORDER BY day_of_week ASC, start_time ASC
	`
	var rules []*model.ScheduleRule
	err := r.db.SelectContext(ctx, &rules, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule rules: %w", err)
	}
	return rules, nil
}

func (r *scheduleRepository) ListActiveForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.ScheduleRule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedule_rules
		WHERE doctor_id = $1
		AND day_of_week = $2
		AND active = true
		ORDER BY start_time ASC, created_at ASC
	`
	var rules []*model.ScheduleRule
	err := r.db.SelectContext(ctx, &rules, query, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to list active schedule rules: %w", err)
	}
	return rules, nil
}
