package appointment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	events       []*model.OutboxEvent
	slotTaken    bool
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) CreateIfSlotFree(_ context.Context, apt *model.Appointment, evt *model.OutboxEvent) error {
	if f.slotTaken {
		return repository.ErrSlotTaken
	}
	cp := *apt
	f.appointments[apt.ID] = &cp
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *apt
	return &cp, nil
}

func (f *fakeAppointmentRepo) UpdateStatusWithEvent(_ context.Context, apt *model.Appointment, evt *model.OutboxEvent) error {
	if _, ok := f.appointments[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *apt
	f.appointments[apt.ID] = &cp
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeAppointmentRepo) RescheduleIfSlotFree(_ context.Context, apt *model.Appointment, evt *model.OutboxEvent) error {
	if f.slotTaken {
		return repository.ErrSlotTaken
	}
	cp := *apt
	f.appointments[apt.ID] = &cp
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
			continue
		}
		if filters.DoctorID != uuid.Nil && apt.DoctorID != filters.DoctorID {
			continue
		}
		out = append(out, apt)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListBookedForDoctorOnDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if apt.DoctorID != doctorID || !apt.Date.Equal(date) {
			continue
		}
		if apt.Status == model.AppointmentStatusPending || apt.Status == model.AppointmentStatusConfirmed {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) HasFutureBookings(context.Context, uuid.UUID, time.Time) (bool, error) {
	return false, nil
}

type fakeScheduleSource struct {
	rules []*model.ScheduleRule
}

func (f *fakeScheduleSource) ListActiveForDay(context.Context, uuid.UUID, int) ([]*model.ScheduleRule, error) {
	return f.rules, nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeDoctorRepo) List(context.Context, *model.DoctorFilters) ([]*model.Doctor, error) {
	return nil, nil
}

type fakePatientRepo struct{}

func (fakePatientRepo) Get(context.Context, uuid.UUID) (*model.Patient, error) {
	return &model.Patient{}, nil
}

type fixture struct {
	svc       *Service
	repo      *fakeAppointmentRepo
	schedules *fakeScheduleSource
	doctor    *model.Doctor
	patient   model.Actor
	doctorAct model.Actor
}

// fixedNow is a Sunday morning; tests book on the following Monday.
var fixedNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

const monday = "2026-03-02"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	doctor := &model.Doctor{
		Base:            model.Base{ID: uuid.New()},
		FullName:        "Dr. Tran",
		Specialty:       "cardiology",
		ConsultationFee: 50,
		Active:          true,
	}

	repo := newFakeAppointmentRepo()
	schedules := &fakeScheduleSource{}
	svc := NewService(repo, schedules, &fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{doctor.ID: doctor}}, fakePatientRepo{})
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		svc:       svc,
		repo:      repo,
		schedules: schedules,
		doctor:    doctor,
		patient:   model.Actor{ID: uuid.New(), Role: model.RolePatient},
		doctorAct: model.Actor{ID: doctor.ID, Role: model.RoleDoctor},
	}
}

func (f *fixture) book(t *testing.T) *model.Appointment {
	t.Helper()
	apt, err := f.svc.Book(context.Background(), f.patient, &model.CreateAppointmentRequest{
		DoctorID:  f.doctor.ID,
		Date:      monday,
		StartTime: "09:00",
	})
	require.NoError(t, err)
	return apt
}

func TestBook(t *testing.T) {
	t.Run("creates pending appointment with outbox event", func(t *testing.T) {
		f := newFixture(t)

		apt := f.book(t)

		assert.Equal(t, model.AppointmentStatusPending, apt.Status)
		assert.Equal(t, f.patient.ID, apt.PatientID)
		assert.Equal(t, model.DefaultSlotDurationMinutes, apt.DurationMinutes)
		assert.Equal(t, f.doctor.ConsultationFee, apt.Fee)

		require.Len(t, f.repo.events, 1)
		assert.Equal(t, string(model.EventAppointmentBooked), f.repo.events[0].EventType)

		var payload model.AppointmentEvent
		require.NoError(t, json.Unmarshal(f.repo.events[0].Payload, &payload))
		assert.Equal(t, apt.ID, payload.AppointmentID)
		assert.Equal(t, monday, payload.Date)
	})

	t.Run("doctor may not book", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.doctorAct, &model.CreateAppointmentRequest{
			DoctorID: f.doctor.ID, Date: monday, StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))
	})

	t.Run("past slot is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.patient, &model.CreateAppointmentRequest{
			DoctorID: f.doctor.ID, Date: "2026-02-28", StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrSlotUnavailable, errors.CodeOf(err))
	})

	t.Run("slot start equal to now is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.patient, &model.CreateAppointmentRequest{
			DoctorID: f.doctor.ID, Date: "2026-03-01", StartTime: "08:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrSlotUnavailable, errors.CodeOf(err))
	})

	t.Run("duration bounds enforced", func(t *testing.T) {
		f := newFixture(t)

		for _, duration := range []int{5, 14, 181, 300} {
			_, err := f.svc.Book(context.Background(), f.patient, &model.CreateAppointmentRequest{
				DoctorID: f.doctor.ID, Date: monday, StartTime: "09:00", DurationMinutes: duration,
			})
			require.Error(t, err, "duration %d", duration)
			assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
		}
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.patient, &model.CreateAppointmentRequest{
			DoctorID: uuid.New(), Date: monday, StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
	})

	t.Run("inactive doctor", func(t *testing.T) {
		f := newFixture(t)
		f.doctor.Active = false

		_, err := f.svc.Book(context.Background(), f.patient, &model.CreateAppointmentRequest{
			DoctorID: f.doctor.ID, Date: monday, StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
	})

	t.Run("taken slot surfaces as unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.repo.slotTaken = true

		_, err := f.svc.Book(context.Background(), f.patient, &model.CreateAppointmentRequest{
			DoctorID: f.doctor.ID, Date: monday, StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrSlotUnavailable, errors.CodeOf(err))
	})

	t.Run("malformed date", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.patient, &model.CreateAppointmentRequest{
			DoctorID: f.doctor.ID, Date: "03/02/2026", StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
	})
}

func TestGetAvailability(t *testing.T) {
	f := newFixture(t)
	f.schedules.rules = []*model.ScheduleRule{{
		DoctorID:            f.doctor.ID,
		DayOfWeek:           1,
		StartTime:           "09:00",
		EndTime:             "10:00",
		SlotDurationMinutes: 30,
		Active:              true,
	}}

	t.Run("all slots free", func(t *testing.T) {
		slots, err := f.svc.GetAvailability(context.Background(), f.doctor.ID, monday)

		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.True(t, slots[0].Available)
		assert.True(t, slots[1].Available)
	})

	t.Run("booked slot marked unavailable", func(t *testing.T) {
		f.book(t)

		slots, err := f.svc.GetAvailability(context.Background(), f.doctor.ID, monday)

		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.False(t, slots[0].Available)
		assert.True(t, slots[1].Available)
	})

	t.Run("no rules gives empty slice", func(t *testing.T) {
		empty := newFixture(t)

		slots, err := empty.svc.GetAvailability(context.Background(), empty.doctor.ID, monday)

		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := f.svc.GetAvailability(context.Background(), f.doctor.ID, "yesterday")

		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
	})
}

func TestTransitions(t *testing.T) {
	t.Run("doctor confirms then completes", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		confirmed, err := f.svc.Confirm(context.Background(), f.doctorAct, apt.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)
		require.NotNil(t, confirmed.ConfirmedAt)
		assert.Equal(t, fixedNow, *confirmed.ConfirmedAt)

		completed, err := f.svc.Complete(context.Background(), f.doctorAct, apt.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)
		require.NotNil(t, completed.CompletedAt)
	})

	t.Run("patient cancels with reason", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		cancelled, err := f.svc.Cancel(context.Background(), f.patient, apt.ID, "schedule conflict")
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.CancellationReason)
		assert.Equal(t, "schedule conflict", *cancelled.CancellationReason)
		require.NotNil(t, cancelled.CancelledAt)
	})

	t.Run("reject requires reason", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		_, err := f.svc.Reject(context.Background(), f.doctorAct, apt.ID, "")
		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
	})

	t.Run("transition on missing appointment", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Confirm(context.Background(), f.doctorAct, uuid.New())
		require.Error(t, err)
		assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
	})

	t.Run("each transition writes an event", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		_, err := f.svc.Confirm(context.Background(), f.doctorAct, apt.ID)
		require.NoError(t, err)

		require.Len(t, f.repo.events, 2)
		assert.Equal(t, string(model.EventAppointmentConfirmed), f.repo.events[1].EventType)
	})
}

func TestReschedule(t *testing.T) {
	req := &model.RescheduleAppointmentRequest{Date: "2026-03-03", StartTime: "10:00"}

	t.Run("moves and forces confirmed", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		moved, err := f.svc.Reschedule(context.Background(), f.patient, apt.ID, req)

		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusConfirmed, moved.Status)
		assert.Equal(t, "10:00", moved.StartTime)
		assert.False(t, moved.ReminderSent)
	})

	t.Run("resets reminder flag", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)
		stored := f.repo.appointments[apt.ID]
		stored.ReminderSent = true

		moved, err := f.svc.Reschedule(context.Background(), f.patient, apt.ID, req)

		require.NoError(t, err)
		assert.False(t, moved.ReminderSent)
	})

	t.Run("stranger may not reschedule", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		_, err := f.svc.Reschedule(context.Background(), model.Actor{ID: uuid.New(), Role: model.RolePatient}, apt.ID, req)

		require.Error(t, err)
		assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))
	})

	t.Run("completed appointment cannot move", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)
		f.repo.appointments[apt.ID].Status = model.AppointmentStatusCompleted

		_, err := f.svc.Reschedule(context.Background(), f.patient, apt.ID, req)

		require.Error(t, err)
		assert.Equal(t, errors.ErrInvalidTransition, errors.CodeOf(err))
	})

	t.Run("past target rejected", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		_, err := f.svc.Reschedule(context.Background(), f.patient, apt.ID, &model.RescheduleAppointmentRequest{
			Date: "2026-02-20", StartTime: "10:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrSlotUnavailable, errors.CodeOf(err))
	})

	t.Run("target slot taken", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)
		f.repo.slotTaken = true

		_, err := f.svc.Reschedule(context.Background(), f.patient, apt.ID, req)

		require.Error(t, err)
		assert.Equal(t, errors.ErrSlotUnavailable, errors.CodeOf(err))
	})
}

func TestBookFollowUp(t *testing.T) {
	completedOriginal := func(t *testing.T, f *fixture) *model.Appointment {
		t.Helper()
		apt := f.book(t)
		stored := f.repo.appointments[apt.ID]
		stored.Status = model.AppointmentStatusCompleted
		return stored
	}

	t.Run("creates confirmed follow-up", func(t *testing.T) {
		f := newFixture(t)
		original := completedOriginal(t, f)

		followUp, err := f.svc.BookFollowUp(context.Background(), f.doctorAct, &model.CreateFollowUpRequest{
			OriginalAppointmentID: original.ID,
			Date:                  "2026-03-09",
			StartTime:             "09:00",
		})

		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusConfirmed, followUp.Status)
		assert.True(t, followUp.IsFollowUp)
		require.NotNil(t, followUp.OriginalAppointmentID)
		assert.Equal(t, original.ID, *followUp.OriginalAppointmentID)
		assert.Equal(t, original.PatientID, followUp.PatientID)
		assert.Equal(t, original.Fee, followUp.Fee)
		require.NotNil(t, followUp.ConfirmedAt)
	})

	t.Run("patient may not schedule follow-up", func(t *testing.T) {
		f := newFixture(t)
		original := completedOriginal(t, f)

		_, err := f.svc.BookFollowUp(context.Background(), f.patient, &model.CreateFollowUpRequest{
			OriginalAppointmentID: original.ID, Date: "2026-03-09", StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))
	})

	t.Run("requires completed original", func(t *testing.T) {
		f := newFixture(t)
		original := f.book(t)

		_, err := f.svc.BookFollowUp(context.Background(), f.doctorAct, &model.CreateFollowUpRequest{
			OriginalAppointmentID: original.ID, Date: "2026-03-09", StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
	})

	t.Run("other doctor denied", func(t *testing.T) {
		f := newFixture(t)
		original := completedOriginal(t, f)

		_, err := f.svc.BookFollowUp(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleDoctor}, &model.CreateFollowUpRequest{
			OriginalAppointmentID: original.ID, Date: "2026-03-09", StartTime: "09:00",
		})

		require.Error(t, err)
		assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))
	})
}

func TestGetAndList(t *testing.T) {
	t.Run("participants and admin may read", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		for _, actor := range []model.Actor{
			f.patient,
			f.doctorAct,
			{ID: uuid.New(), Role: model.RoleAdmin},
		} {
			got, err := f.svc.Get(context.Background(), actor, apt.ID)
			require.NoError(t, err, actor.Role)
			assert.Equal(t, apt.ID, got.ID)
		}
	})

	t.Run("stranger may not read", func(t *testing.T) {
		f := newFixture(t)
		apt := f.book(t)

		_, err := f.svc.Get(context.Background(), model.Actor{ID: uuid.New(), Role: model.RolePatient}, apt.ID)

		require.Error(t, err)
		assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))
	})

	t.Run("patient list is scoped to own bookings", func(t *testing.T) {
		f := newFixture(t)
		f.book(t)

		other := model.Actor{ID: uuid.New(), Role: model.RolePatient}
		list, err := f.svc.List(context.Background(), other, &model.AppointmentFilters{})

		require.NoError(t, err)
		assert.Empty(t, list)

		list, err = f.svc.List(context.Background(), f.patient, &model.AppointmentFilters{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}
