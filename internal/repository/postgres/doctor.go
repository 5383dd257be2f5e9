package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
)

const doctorColumns = `
	id, full_name, email, phone, specialty, bio, consultation_fee,
	active, created_at, updated_at
`

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`

	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Specialty != "" {
			query += fmt.Sprintf(" AND specialty = $%d", argCount)
			args = append(args, filters.Specialty)
			argCount++
		}
		if filters.Active != nil {
			query += fmt.Sprintf(" AND active = $%d", argCount)
			args = append(args, *filters.Active)
			argCount++
		}
	}

	query += " ORDER BY full_name ASC"

	var doctors []*model.Doctor
	err := r.db.SelectContext(ctx, &doctors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
