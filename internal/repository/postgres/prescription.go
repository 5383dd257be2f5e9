package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
)

// CreateWithItems inserts the prescription and all of its items in one
// transaction. A failure on any item rolls back the prescription row.
func (r *prescriptionRepository) CreateWithItems(ctx context.Context, prescription *model.Prescription) error {
	prescription.ID = uuid.New()
	prescription.CreatedAt = time.Now()
	prescription.UpdatedAt = prescription.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO prescriptions (
				id, appointment_id, patient_id, doctor_id, notes,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, query,
			prescription.ID,
			prescription.AppointmentID,
			prescription.PatientID,
			prescription.DoctorID,
			prescription.Notes,
			prescription.CreatedAt,
			prescription.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create prescription: %w", err)
		}

		itemQuery := `
			INSERT INTO prescription_items (
				id, prescription_id, medication, dosage, frequency,
				duration_days, instructions
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, item := range prescription.Items {
			item.ID = uuid.New()
			item.PrescriptionID = prescription.ID

			_, err := tx.ExecContext(ctx, itemQuery,
				item.ID,
				item.PrescriptionID,
				item.Medication,
				item.Dosage,
				item.Frequency,
				item.DurationDays,
				item.Instructions,
			)
			if err != nil {
				return fmt.Errorf("failed to create prescription item: %w", err)
			}
		}
		return nil
	})
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, notes,
			   created_at, updated_at
		FROM prescriptions
		WHERE id = $1
	`
	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	if err := r.loadItems(ctx, &prescription); err != nil {
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, notes,
			   created_at, updated_at
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var prescriptions []*model.Prescription
	err := r.db.SelectContext(ctx, &prescriptions, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}

	for _, p := range prescriptions {
		if err := r.loadItems(ctx, p); err != nil {
			return nil, err
		}
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, notes,
			   created_at, updated_at
		FROM prescriptions
		WHERE appointment_id = $1
		ORDER BY created_at DESC
	`
	var prescriptions []*model.Prescription
	err := r.db.SelectContext(ctx, &prescriptions, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}

	for _, p := range prescriptions {
		if err := r.loadItems(ctx, p); err != nil {
			return nil, err
		}
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) loadItems(ctx context.Context, prescription *model.Prescription) error {
	query := `
		SELECT id, prescription_id, medication, dosage, frequency,
			   duration_days, instructions
		FROM prescription_items
		WHERE prescription_id = $1
	`
	err := r.db.SelectContext(ctx, &prescription.Items, query, prescription.ID)
	if err != nil {
		return fmt.Errorf("failed to load prescription items: %w", err)
	}
	return nil
}
