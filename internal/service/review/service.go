package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

type Service struct {
	repo    repository.ReviewRepository
	aptRepo repository.AppointmentRepository
}

func NewService(repo repository.ReviewRepository, aptRepo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, aptRepo: aptRepo}
}

// Create records a patient's review of a completed appointment. One review
// per appointment, and only by the patient who attended it.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateReviewRequest) (*model.Review, error) {
	if !actor.IsPatient() {
		return nil, errors.AuthorizationDenied("only patients may leave reviews")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return nil, errors.Validation("rating must be between 1 and 5")
	}

	apt, err := s.aptRepo.Get(ctx, req.AppointmentID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("appointment")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}

	if apt.PatientID != actor.ID {
		return nil, errors.AuthorizationDenied("reviews may only be left on the caller's own appointments")
	}
	if apt.Status != model.AppointmentStatusCompleted {
		return nil, errors.Validation("only completed appointments can be reviewed")
	}

	review := &model.Review{
		AppointmentID: apt.ID,
		PatientID:     actor.ID,
		DoctorID:      apt.DoctorID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.Validation("this appointment has already been reviewed")
		}
		return nil, errors.DataAccess(err)
	}
	return review, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Review, error) {
	reviews, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	return reviews, nil
}

func (s *Service) GetDoctorRating(ctx context.Context, doctorID uuid.UUID) (*model.DoctorRating, error) {
	rating, err := s.repo.GetDoctorRating(ctx, doctorID)
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	return rating, nil
}
