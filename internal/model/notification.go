package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationAppointmentBooked      NotificationType = "appointment_booked"
	NotificationAppointmentConfirmed   NotificationType = "appointment_confirmed"
	NotificationAppointmentRejected    NotificationType = "appointment_rejected"
	NotificationAppointmentCancelled   NotificationType = "appointment_cancelled"
	NotificationAppointmentCompleted   NotificationType = "appointment_completed"
	NotificationAppointmentRescheduled NotificationType = "appointment_rescheduled"
	NotificationFollowUpScheduled      NotificationType = "follow_up_scheduled"
)

type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Payload   json.RawMessage  `db:"payload" json:"payload,omitempty"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
