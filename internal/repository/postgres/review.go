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

// Create inserts a review. The unique index on appointment_id enforces one
// review per appointment; a violation surfaces as ErrDuplicate.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, appointment_id, patient_id, doctor_id, rating, comment,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.AppointmentID,
		review.PatientID,
		review.DoctorID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Review, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, rating, comment,
			   created_at, updated_at
		FROM reviews
		WHERE doctor_id = $1
		ORDER BY created_at DESC
	`
	var reviews []*model.Review
	err := r.db.SelectContext(ctx, &reviews, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) GetDoctorRating(ctx context.Context, doctorID uuid.UUID) (*model.DoctorRating, error) {
	query := `
		SELECT doctor_id, AVG(rating) AS average_rating, COUNT(*) AS review_count
		FROM reviews
		WHERE doctor_id = $1
		GROUP BY doctor_id
	`
	var rating model.DoctorRating
	err := r.db.GetContext(ctx, &rating, query, doctorID)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.DoctorRating{DoctorID: doctorID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor rating: %w", err)
	}
	return &rating, nil
}
