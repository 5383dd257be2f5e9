package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
)

const appointmentColumns = `
	id, patient_id, doctor_id, date, start_time, duration_minutes, status,
	reason, fee, confirmed_at, cancelled_at, completed_at, cancellation_reason,
	reminder_sent, is_follow_up, original_appointment_id, created_at, updated_at
`

// uniqueViolation is the postgres error code raised by the partial unique
// index on (doctor_id, date, start_time) for pending/confirmed rows.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateIfSlotFree inserts the appointment only if no pending or confirmed
// appointment already occupies the same doctor, date and start time. The
// existence check and the insert run as one statement, backed by the partial
// unique index, so two concurrent bookings cannot both pass it. The outbox
// event commits in the same transaction.
func (r *appointmentRepository) CreateIfSlotFree(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, date, start_time, duration_minutes,
			status, reason, fee, confirmed_at, reminder_sent, is_follow_up,
			original_appointment_id, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, $11, $12, $13, $14
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $3
			AND date = $4
			AND start_time = $5
			AND status IN ('pending', 'confirmed')
		)
	`
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			apt.ID,
			apt.PatientID,
			apt.DoctorID,
			apt.Date,
			apt.StartTime,
			apt.DurationMinutes,
			apt.Status,
			apt.Reason,
			apt.Fee,
			apt.ConfirmedAt,
			apt.IsFollowUp,
			apt.OriginalAppointmentID,
			apt.CreatedAt,
			apt.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrSlotTaken
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrSlotTaken
		}

		return insertOutboxEventTx(ctx, tx, evt)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

// UpdateStatusWithEvent persists a status transition and its outbox event in
// one transaction.
func (r *appointmentRepository) UpdateStatusWithEvent(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error {
	query := `
		UPDATE appointments
		SET status = $1, confirmed_at = $2, cancelled_at = $3, completed_at = $4,
			cancellation_reason = $5, updated_at = $6
		WHERE id = $7
	`
	apt.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			apt.Status,
			apt.ConfirmedAt,
			apt.CancelledAt,
			apt.CompletedAt,
			apt.CancellationReason,
			apt.UpdatedAt,
			apt.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment status: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		return insertOutboxEventTx(ctx, tx, evt)
	})
}

// RescheduleIfSlotFree moves the appointment to a new date and time only if
// no other pending or confirmed appointment occupies the target slot. The
// status is forced to confirmed and the reminder flag reset, per the
// reschedule contract. Zero rows updated means the target slot was taken.
func (r *appointmentRepository) RescheduleIfSlotFree(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error {
	query := `
		UPDATE appointments
		SET date = $1, start_time = $2, status = 'confirmed',
			reminder_sent = false, updated_at = $3
		WHERE id = $4
		AND NOT EXISTS (
			SELECT 1 FROM appointments other
			WHERE other.doctor_id = $5
			AND other.date = $1
			AND other.start_time = $2
			AND other.status IN ('pending', 'confirmed')
			AND other.id <> $4
		)
	`
	apt.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			apt.Date,
			apt.StartTime,
			apt.UpdatedAt,
			apt.ID,
			apt.DoctorID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrSlotTaken
			}
			return fmt.Errorf("failed to reschedule appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrSlotTaken
		}

		return insertOutboxEventTx(ctx, tx, evt)
	})
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.FromDate.IsZero() {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, filters.FromDate)
		argCount++
	}

	if !filters.ToDate.IsZero() {
		query += fmt.Sprintf(" AND date <= $%d", argCount)
		args = append(args, filters.ToDate)
		argCount++
	}

	query += " ORDER BY date ASC, start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBookedForDoctorOnDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		AND date = $2
		AND status IN ('pending', 'confirmed')
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) HasFutureBookings(ctx context.Context, doctorID uuid.UUID, from time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			AND status IN ('pending', 'confirmed')
			AND (date > $2 OR (date = $2 AND start_time >= $3))
		)
	`
	date := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	clock := from.Format(model.ClockLayout)

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, doctorID, date, clock)
	if err != nil {
		return false, fmt.Errorf("failed to check future bookings: %w", err)
	}
	return exists, nil
}
