package notification

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
)

// Recipient pairs a notification with who should receive it.
type Recipient struct {
	UserID uuid.UUID
	Type   model.NotificationType
	Title  string
	Body   string
}

// ForEvent maps an appointment event to the notifications it produces.
// It is a total function over the event types: an unknown event yields an
// error rather than silent nothing, so new events cannot be forgotten here.
func ForEvent(evt *model.AppointmentEvent) ([]Recipient, error) {
	when := fmt.Sprintf("%s at %s", evt.Date, evt.StartTime)

	switch evt.Event {
	case model.EventAppointmentBooked:
		return []Recipient{{
			UserID: evt.DoctorID,
			Type:   model.NotificationAppointmentBooked,
			Title:  "New appointment request",
			Body:   fmt.Sprintf("A patient requested an appointment on %s.", when),
		}}, nil

	case model.EventAppointmentConfirmed:
		return []Recipient{{
			UserID: evt.PatientID,
			Type:   model.NotificationAppointmentConfirmed,
			Title:  "Appointment confirmed",
			Body:   fmt.Sprintf("Your appointment on %s has been confirmed.", when),
		}}, nil

	case model.EventAppointmentRejected:
		return []Recipient{{
			UserID: evt.PatientID,
			Type:   model.NotificationAppointmentRejected,
			Title:  "Appointment declined",
			Body:   fmt.Sprintf("Your appointment request for %s was declined: %s", when, evt.Reason),
		}}, nil

	case model.EventAppointmentCancelled:
		// Notify the counterparty of whoever cancelled.
		recipient := evt.DoctorID
		if evt.ActorRole == model.RoleDoctor {
			recipient = evt.PatientID
		}
		return []Recipient{{
			UserID: recipient,
			Type:   model.NotificationAppointmentCancelled,
			Title:  "Appointment cancelled",
			Body:   fmt.Sprintf("The appointment on %s was cancelled: %s", when, evt.Reason),
		}}, nil

	case model.EventAppointmentCompleted:
		return []Recipient{{
			UserID: evt.PatientID,
			Type:   model.NotificationAppointmentCompleted,
			Title:  "Appointment completed",
			Body:   fmt.Sprintf("Your appointment on %s has been marked completed.", when),
		}}, nil

	case model.EventAppointmentRescheduled:
		// Both sides should hear about a move.
		return []Recipient{
			{
				UserID: evt.PatientID,
				Type:   model.NotificationAppointmentRescheduled,
				Title:  "Appointment rescheduled",
				Body:   fmt.Sprintf("Your appointment was moved to %s.", when),
			},
			{
				UserID: evt.DoctorID,
				Type:   model.NotificationAppointmentRescheduled,
				Title:  "Appointment rescheduled",
				Body:   fmt.Sprintf("An appointment was moved to %s.", when),
			},
		}, nil

	case model.EventFollowUpScheduled:
		return []Recipient{{
			UserID: evt.PatientID,
			Type:   model.NotificationFollowUpScheduled,
			Title:  "Follow-up scheduled",
			Body:   fmt.Sprintf("Your doctor scheduled a follow-up visit on %s.", when),
		}}, nil

	default:
		return nil, fmt.Errorf("unknown appointment event %q", evt.Event)
	}
}

// Build materializes notification rows for an appointment event.
func Build(evt *model.AppointmentEvent) ([]*model.Notification, error) {
	recipients, err := ForEvent(evt)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(evt)
	notifications := make([]*model.Notification, 0, len(recipients))
	for _, rec := range recipients {
		notifications = append(notifications, &model.Notification{
			UserID:  rec.UserID,
			Type:    rec.Type,
			Title:   rec.Title,
			Message: rec.Body,
			Payload: payload,
		})
	}
	return notifications, nil
}
