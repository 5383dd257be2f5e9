package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/scheduling"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

// Appointment duration bounds in minutes.
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 180
)

// ScheduleSource yields the active rules for a doctor and weekday. The
// schedule service satisfies it with a cached lookup; the raw repository
// satisfies it too.
type ScheduleSource interface {
	ListActiveForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.ScheduleRule, error)
}

type Service struct {
	repo        repository.AppointmentRepository
	schedules   ScheduleSource
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository

	now func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	schedules ScheduleSource,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
) *Service {
	return &Service{
		repo:        repo,
		schedules:   schedules,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		now:         time.Now,
	}
}

// GetAvailability returns the candidate slots for a doctor on a date,
// annotated with availability against existing bookings and the current
// time. It reads but never writes.
func (s *Service) GetAvailability(ctx context.Context, doctorID uuid.UUID, dateStr string) ([]model.Slot, error) {
	date, err := parseDate(dateStr, s.now().Location())
	if err != nil {
		return nil, errors.Validation("invalid date, expected YYYY-MM-DD")
	}

	rules, err := s.schedules.ListActiveForDay(ctx, doctorID, int(date.Weekday()))
	if err != nil {
		return nil, err
	}

	slots := scheduling.GenerateSlots(rules)
	if len(slots) == 0 {
		return slots, nil
	}

	booked, err := s.repo.ListBookedForDoctorOnDate(ctx, doctorID, date)
	if err != nil {
		return nil, errors.DataAccess(err)
	}

	return scheduling.MarkAvailability(slots, date, booked, s.now()), nil
}

// Book creates a pending appointment for the calling patient. The slot
// guard is enforced atomically by the repository; a conflicting pending or
// confirmed appointment surfaces as SlotUnavailable.
func (s *Service) Book(ctx context.Context, actor model.Actor, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if !actor.IsPatient() {
		return nil, errors.AuthorizationDenied("only patients may book appointments")
	}

	date, startsAt, err := s.parseWhen(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}
	if !startsAt.After(s.now()) {
		return nil, errors.SlotUnavailable("requested time is in the past")
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = model.DefaultSlotDurationMinutes
	}
	if duration < MinDurationMinutes || duration > MaxDurationMinutes {
		return nil, errors.Validation("duration must be between 15 and 180 minutes")
	}

	doctor, err := s.doctorRepo.Get(ctx, req.DoctorID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("doctor")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	if !doctor.Active {
		return nil, errors.Validation("doctor is not accepting appointments")
	}

	apt := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		PatientID:       actor.ID,
		DoctorID:        doctor.ID,
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
		Status:          model.AppointmentStatusPending,
		Reason:          req.Reason,
		Fee:             doctor.ConsultationFee,
	}

	evt := s.outboxEvent(model.EventAppointmentBooked, apt, actor, req.Reason)
	if err := s.repo.CreateIfSlotFree(ctx, apt, evt); err != nil {
		if err == repository.ErrSlotTaken {
			return nil, errors.SlotUnavailable("the requested slot is no longer available")
		}
		return nil, errors.DataAccess(err)
	}
	return apt, nil
}

// BookFollowUp creates a confirmed follow-up appointment. Only the doctor
// who completed the original appointment may schedule one.
func (s *Service) BookFollowUp(ctx context.Context, actor model.Actor, req *model.CreateFollowUpRequest) (*model.Appointment, error) {
	if !actor.IsDoctor() {
		return nil, errors.AuthorizationDenied("only doctors may schedule follow-ups")
	}

	original, err := s.repo.Get(ctx, req.OriginalAppointmentID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("appointment")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	if original.DoctorID != actor.ID {
		return nil, errors.AuthorizationDenied("follow-ups may only reference the doctor's own appointments")
	}
	if original.Status != model.AppointmentStatusCompleted {
		return nil, errors.Validation("follow-ups require a completed original appointment")
	}

	date, startsAt, err := s.parseWhen(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}
	if !startsAt.After(s.now()) {
		return nil, errors.SlotUnavailable("requested time is in the past")
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = model.DefaultSlotDurationMinutes
	}
	if duration < MinDurationMinutes || duration > MaxDurationMinutes {
		return nil, errors.Validation("duration must be between 15 and 180 minutes")
	}

	confirmedAt := s.now()
	apt := &model.Appointment{
		Base:                  model.Base{ID: uuid.New()},
		PatientID:             original.PatientID,
		DoctorID:              actor.ID,
		Date:                  date,
		StartTime:             req.StartTime,
		DurationMinutes:       duration,
		Status:                model.AppointmentStatusConfirmed,
		Reason:                req.Reason,
		Fee:                   original.Fee,
		ConfirmedAt:           &confirmedAt,
		IsFollowUp:            true,
		OriginalAppointmentID: &original.ID,
	}

	evt := s.outboxEvent(model.EventFollowUpScheduled, apt, actor, req.Reason)
	if err := s.repo.CreateIfSlotFree(ctx, apt, evt); err != nil {
		if err == repository.ErrSlotTaken {
			return nil, errors.SlotUnavailable("the requested slot is no longer available")
		}
		return nil, errors.DataAccess(err)
	}
	return apt, nil
}

func (s *Service) Confirm(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, actor, id, model.AppointmentStatusConfirmed, "", model.EventAppointmentConfirmed)
}

func (s *Service) Reject(ctx context.Context, actor model.Actor, id uuid.UUID, reason string) (*model.Appointment, error) {
	return s.transition(ctx, actor, id, model.AppointmentStatusRejected, reason, model.EventAppointmentRejected)
}

func (s *Service) Complete(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, actor, id, model.AppointmentStatusCompleted, "", model.EventAppointmentCompleted)
}

func (s *Service) Cancel(ctx context.Context, actor model.Actor, id uuid.UUID, reason string) (*model.Appointment, error) {
	return s.transition(ctx, actor, id, model.AppointmentStatusCancelled, reason, model.EventAppointmentCancelled)
}

func (s *Service) transition(ctx context.Context, actor model.Actor, id uuid.UUID, to model.AppointmentStatus, reason string, eventType model.AppointmentEventType) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("appointment")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}

	if err := scheduling.ValidateTransition(actor, apt, to, reason); err != nil {
		return nil, err
	}

	now := s.now()
	apt.Status = to
	switch to {
	case model.AppointmentStatusConfirmed:
		apt.ConfirmedAt = &now
	case model.AppointmentStatusCompleted:
		apt.CompletedAt = &now
	case model.AppointmentStatusCancelled, model.AppointmentStatusRejected:
		apt.CancelledAt = &now
		apt.CancellationReason = &reason
	}

	evt := s.outboxEvent(eventType, apt, actor, reason)
	if err := s.repo.UpdateStatusWithEvent(ctx, apt, evt); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("appointment")
		}
		return nil, errors.DataAccess(err)
	}
	return apt, nil
}

// Reschedule moves a pending or confirmed appointment to a new future slot.
// On success the appointment is forced to confirmed and its reminder flag
// reset; the slot guard excludes the appointment being moved.
func (s *Service) Reschedule(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("appointment")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}

	isOwner := actor.IsPatient() && actor.ID == apt.PatientID
	isDoctor := actor.IsDoctor() && actor.ID == apt.DoctorID
	if !isOwner && !isDoctor {
		return nil, errors.AuthorizationDenied("caller may not reschedule this appointment")
	}

	if !scheduling.CanReschedule(apt.Status) {
		return nil, errors.InvalidTransition(string(apt.Status), string(model.AppointmentStatusConfirmed))
	}

	date, startsAt, err := s.parseWhen(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}
	if !startsAt.After(s.now()) {
		return nil, errors.SlotUnavailable("requested time is in the past")
	}

	apt.Date = date
	apt.StartTime = req.StartTime
	apt.Status = model.AppointmentStatusConfirmed
	apt.ReminderSent = false

	evt := s.outboxEvent(model.EventAppointmentRescheduled, apt, actor, "")
	if err := s.repo.RescheduleIfSlotFree(ctx, apt, evt); err != nil {
		if err == repository.ErrSlotTaken {
			return nil, errors.SlotUnavailable("the requested slot is no longer available")
		}
		return nil, errors.DataAccess(err)
	}
	return apt, nil
}

// Get returns an appointment to one of its participants.
func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("appointment")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}

	if actor.ID != apt.PatientID && actor.ID != apt.DoctorID && actor.Role != model.RoleAdmin {
		return nil, errors.AuthorizationDenied("caller is not a participant of this appointment")
	}
	return apt, nil
}

// List returns appointments visible to the actor. Patients and doctors see
// their own; admins may filter freely.
func (s *Service) List(ctx context.Context, actor model.Actor, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	switch actor.Role {
	case model.RolePatient:
		filters.PatientID = actor.ID
	case model.RoleDoctor:
		filters.DoctorID = actor.ID
	case model.RoleAdmin:
	default:
		return nil, errors.AuthorizationDenied("unknown caller role")
	}

	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	return appointments, nil
}

func (s *Service) parseWhen(dateStr, clock string) (time.Time, time.Time, error) {
	loc := s.now().Location()
	date, err := parseDate(dateStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Validation("invalid date, expected YYYY-MM-DD")
	}

	minutes, err := scheduling.ParseClock(clock)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Validation("invalid time, expected HH:MM")
	}

	startsAt := date.Add(time.Duration(minutes) * time.Minute)
	return date, startsAt, nil
}

func (s *Service) outboxEvent(eventType model.AppointmentEventType, apt *model.Appointment, actor model.Actor, reason string) *model.OutboxEvent {
	return model.NewAppointmentOutboxEvent(&model.AppointmentEvent{
		Event:         eventType,
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		DoctorID:      apt.DoctorID,
		Date:          apt.Date.Format(model.DateLayout),
		StartTime:     apt.StartTime,
		Reason:        reason,
		ActorRole:     actor.Role,
	})
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, s, loc)
}
