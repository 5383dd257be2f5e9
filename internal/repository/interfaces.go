package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
)

// Sentinel errors returned by repositories. Services translate these into
// the user-facing error taxonomy.
var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSlotTaken means a conditional insert or update found a conflicting
	// pending/confirmed appointment for the same doctor, date and time.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrDuplicate means a uniqueness constraint other than the slot guard
	// was violated.
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	}

	ScheduleRepository interface {
		Create(ctx context.Context, rule *model.ScheduleRule) error
		Get(ctx context.Context, id uuid.UUID) (*model.ScheduleRule, error)
		Update(ctx context.Context, rule *model.ScheduleRule) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.ScheduleRule, error)
		ListActiveForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.ScheduleRule, error)
	}

	// AppointmentRepository persists bookings. The WithEvent variants write
	// the outbox event in the same transaction as the appointment mutation,
	// and the conditional methods implement the booking guard atomically in
	// the database rather than as a separate read followed by a write.
	AppointmentRepository interface {
		CreateIfSlotFree(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		UpdateStatusWithEvent(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error
		RescheduleIfSlotFree(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListBookedForDoctorOnDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		HasFutureBookings(ctx context.Context, doctorID uuid.UUID, from time.Time) (bool, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id, userID uuid.UUID) error
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Review, error)
		GetDoctorRating(ctx context.Context, doctorID uuid.UUID) (*model.DoctorRating, error)
	}

	PrescriptionRepository interface {
		CreateWithItems(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
		ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Prescription, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
