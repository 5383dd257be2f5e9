package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("doctor")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	return doctor, nil
}

func (s *Service) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	return doctors, nil
}
