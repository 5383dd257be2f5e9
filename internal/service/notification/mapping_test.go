package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
)

func event(eventType model.AppointmentEventType, actorRole model.Role) *model.AppointmentEvent {
	return &model.AppointmentEvent{
		Event:         eventType,
		AppointmentID: uuid.New(),
		PatientID:     uuid.New(),
		DoctorID:      uuid.New(),
		Date:          "2026-03-02",
		StartTime:     "09:00",
		Reason:        "test reason",
		ActorRole:     actorRole,
	}
}

func TestForEvent(t *testing.T) {
	t.Run("booked notifies the doctor", func(t *testing.T) {
		evt := event(model.EventAppointmentBooked, model.RolePatient)

		recipients, err := ForEvent(evt)

		require.NoError(t, err)
		require.Len(t, recipients, 1)
		assert.Equal(t, evt.DoctorID, recipients[0].UserID)
		assert.Equal(t, model.NotificationAppointmentBooked, recipients[0].Type)
	})

	t.Run("confirmed notifies the patient", func(t *testing.T) {
		evt := event(model.EventAppointmentConfirmed, model.RoleDoctor)

		recipients, err := ForEvent(evt)

		require.NoError(t, err)
		require.Len(t, recipients, 1)
		assert.Equal(t, evt.PatientID, recipients[0].UserID)
	})

	t.Run("rejection carries the reason", func(t *testing.T) {
		evt := event(model.EventAppointmentRejected, model.RoleDoctor)

		recipients, err := ForEvent(evt)

		require.NoError(t, err)
		require.Len(t, recipients, 1)
		assert.Equal(t, evt.PatientID, recipients[0].UserID)
		assert.Contains(t, recipients[0].Body, "test reason")
	})

	t.Run("cancellation notifies the counterparty", func(t *testing.T) {
		byPatient := event(model.EventAppointmentCancelled, model.RolePatient)
		recipients, err := ForEvent(byPatient)
		require.NoError(t, err)
		require.Len(t, recipients, 1)
		assert.Equal(t, byPatient.DoctorID, recipients[0].UserID)

		byDoctor := event(model.EventAppointmentCancelled, model.RoleDoctor)
		recipients, err = ForEvent(byDoctor)
		require.NoError(t, err)
		require.Len(t, recipients, 1)
		assert.Equal(t, byDoctor.PatientID, recipients[0].UserID)
	})

	t.Run("reschedule notifies both sides", func(t *testing.T) {
		evt := event(model.EventAppointmentRescheduled, model.RolePatient)

		recipients, err := ForEvent(evt)

		require.NoError(t, err)
		require.Len(t, recipients, 2)
		assert.Equal(t, evt.PatientID, recipients[0].UserID)
		assert.Equal(t, evt.DoctorID, recipients[1].UserID)
	})

	t.Run("every event type maps without error", func(t *testing.T) {
		for _, eventType := range []model.AppointmentEventType{
			model.EventAppointmentBooked,
			model.EventAppointmentConfirmed,
			model.EventAppointmentRejected,
			model.EventAppointmentCancelled,
			model.EventAppointmentCompleted,
			model.EventAppointmentRescheduled,
			model.EventFollowUpScheduled,
		} {
			recipients, err := ForEvent(event(eventType, model.RoleDoctor))
			require.NoError(t, err, eventType)
			assert.NotEmpty(t, recipients, eventType)
		}
	})

	t.Run("unknown event errors", func(t *testing.T) {
		_, err := ForEvent(event("appointment.teleported", model.RoleDoctor))
		assert.Error(t, err)
	})
}

func TestBuild(t *testing.T) {
	evt := event(model.EventAppointmentRescheduled, model.RoleDoctor)

	notifications, err := Build(evt)

	require.NoError(t, err)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		assert.NotEmpty(t, n.Title)
		assert.NotEmpty(t, n.Message)
		assert.NotEmpty(t, n.Payload)
		assert.False(t, n.Read)
	}
}
