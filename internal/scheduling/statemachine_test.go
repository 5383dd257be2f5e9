package scheduling

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

func TestValidateTransition(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()

	doctor := model.Actor{ID: doctorID, Role: model.RoleDoctor}
	patient := model.Actor{ID: patientID, Role: model.RolePatient}
	otherDoctor := model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
	otherPatient := model.Actor{ID: uuid.New(), Role: model.RolePatient}

	appointment := func(status model.AppointmentStatus) *model.Appointment {
		return &model.Appointment{
			Base:      model.Base{ID: uuid.New()},
			DoctorID:  doctorID,
			PatientID: patientID,
			Status:    status,
		}
	}

	t.Run("doctor confirms pending", func(t *testing.T) {
		err := ValidateTransition(doctor, appointment(model.AppointmentStatusPending), model.AppointmentStatusConfirmed, "")
		assert.NoError(t, err)
	})

	t.Run("patient may not confirm", func(t *testing.T) {
		err := ValidateTransition(patient, appointment(model.AppointmentStatusPending), model.AppointmentStatusConfirmed, "")
		require.Error(t, err)
		assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))
	})

	t.Run("doctor rejects pending with reason", func(t *testing.T) {
		err := ValidateTransition(doctor, appointment(model.AppointmentStatusPending), model.AppointmentStatusRejected, "fully booked elsewhere")
		assert.NoError(t, err)
	})

	t.Run("reject without reason fails", func(t *testing.T) {
		err := ValidateTransition(doctor, appointment(model.AppointmentStatusPending), model.AppointmentStatusRejected, "")
		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
	})

	t.Run("patient cancels pending with reason", func(t *testing.T) {
		err := ValidateTransition(patient, appointment(model.AppointmentStatusPending), model.AppointmentStatusCancelled, "cannot make it")
		assert.NoError(t, err)
	})

	t.Run("doctor cancels confirmed with reason", func(t *testing.T) {
		err := ValidateTransition(doctor, appointment(model.AppointmentStatusConfirmed), model.AppointmentStatusCancelled, "emergency")
		assert.NoError(t, err)
	})

	t.Run("cancel without reason fails", func(t *testing.T) {
		err := ValidateTransition(patient, appointment(model.AppointmentStatusConfirmed), model.AppointmentStatusCancelled, "")
		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
	})

	t.Run("doctor completes confirmed", func(t *testing.T) {
		err := ValidateTransition(doctor, appointment(model.AppointmentStatusConfirmed), model.AppointmentStatusCompleted, "")
		assert.NoError(t, err)
	})

	t.Run("pending cannot be completed directly", func(t *testing.T) {
		err := ValidateTransition(doctor, appointment(model.AppointmentStatusPending), model.AppointmentStatusCompleted, "")
		require.Error(t, err)
		assert.Equal(t, errors.ErrInvalidTransition, errors.CodeOf(err))
	})

	t.Run("terminal states allow nothing", func(t *testing.T) {
		targets := []model.AppointmentStatus{
			model.AppointmentStatusPending,
			model.AppointmentStatusConfirmed,
			model.AppointmentStatusCompleted,
			model.AppointmentStatusCancelled,
			model.AppointmentStatusRejected,
		}

		for _, from := range []model.AppointmentStatus{
			model.AppointmentStatusCompleted,
			model.AppointmentStatusCancelled,
			model.AppointmentStatusRejected,
		} {
			for _, to := range targets {
				err := ValidateTransition(doctor, appointment(from), to, "some reason")
				require.Error(t, err, "%s -> %s", from, to)
				assert.Equal(t, errors.ErrInvalidTransition, errors.CodeOf(err), "%s -> %s", from, to)
			}
		}
	})

	t.Run("unrelated doctor is denied", func(t *testing.T) {
		err := ValidateTransition(otherDoctor, appointment(model.AppointmentStatusPending), model.AppointmentStatusConfirmed, "")
		require.Error(t, err)
		assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))
	})

	t.Run("unrelated patient is denied", func(t *testing.T) {
		err := ValidateTransition(otherPatient, appointment(model.AppointmentStatusPending), model.AppointmentStatusCancelled, "reason")
		require.Error(t, err)
		assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))
	})
}

func TestCanReschedule(t *testing.T) {
	assert.True(t, CanReschedule(model.AppointmentStatusPending))
	assert.True(t, CanReschedule(model.AppointmentStatusConfirmed))
	assert.False(t, CanReschedule(model.AppointmentStatusCompleted))
	assert.False(t, CanReschedule(model.AppointmentStatusCancelled))
	assert.False(t, CanReschedule(model.AppointmentStatusRejected))
}
