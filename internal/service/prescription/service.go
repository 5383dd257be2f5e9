package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

type Service struct {
	repo    repository.PrescriptionRepository
	aptRepo repository.AppointmentRepository
}

func NewService(repo repository.PrescriptionRepository, aptRepo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, aptRepo: aptRepo}
}

// Create issues a prescription against a completed appointment. The
// prescription and its items commit together; an item failure rolls back
// the prescription row.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if !actor.IsDoctor() {
		return nil, errors.AuthorizationDenied("only doctors may issue prescriptions")
	}

	if len(req.Items) == 0 {
		return nil, errors.Validation("a prescription requires at least one item")
	}

	apt, err := s.aptRepo.Get(ctx, req.AppointmentID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("appointment")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}

	if apt.DoctorID != actor.ID {
		return nil, errors.AuthorizationDenied("prescriptions may only be issued for the caller's own appointments")
	}
	if apt.Status != model.AppointmentStatusCompleted {
		return nil, errors.Validation("prescriptions require a completed appointment")
	}

	prescription := &model.Prescription{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		DoctorID:      actor.ID,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		prescription.Items = append(prescription.Items, &model.PrescriptionItem{
			Medication:   item.Medication,
			Dosage:       item.Dosage,
			Frequency:    item.Frequency,
			DurationDays: item.DurationDays,
			Instructions: item.Instructions,
		})
	}

	if err := s.repo.CreateWithItems(ctx, prescription); err != nil {
		return nil, errors.DataAccess(err)
	}
	return prescription, nil
}

// Get returns a prescription to its patient or issuing doctor.
func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("prescription")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}

	if actor.ID != prescription.PatientID && actor.ID != prescription.DoctorID {
		return nil, errors.AuthorizationDenied("caller may not view this prescription")
	}
	return prescription, nil
}

// ListForPatient returns a patient's prescriptions to the patient.
func (s *Service) ListForPatient(ctx context.Context, actor model.Actor) ([]*model.Prescription, error) {
	if !actor.IsPatient() {
		return nil, errors.AuthorizationDenied("only patients may list their prescriptions")
	}

	prescriptions, err := s.repo.ListForPatient(ctx, actor.ID)
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	return prescriptions, nil
}
