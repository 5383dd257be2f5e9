package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
	OutboxStatusRetrying  OutboxStatus = "retrying"
)

// AppointmentEventType identifies what happened to an appointment. Outbox
// payloads and notification mapping both key off it.
type AppointmentEventType string

const (
	EventAppointmentBooked      AppointmentEventType = "appointment.booked"
	EventAppointmentConfirmed   AppointmentEventType = "appointment.confirmed"
	EventAppointmentRejected    AppointmentEventType = "appointment.rejected"
	EventAppointmentCancelled   AppointmentEventType = "appointment.cancelled"
	EventAppointmentCompleted   AppointmentEventType = "appointment.completed"
	EventAppointmentRescheduled AppointmentEventType = "appointment.rescheduled"
	EventFollowUpScheduled      AppointmentEventType = "appointment.follow_up"
)

// AppointmentEvent is the outbox payload for every appointment mutation.
type AppointmentEvent struct {
	Event         AppointmentEventType `json:"event"`
	AppointmentID uuid.UUID            `json:"appointment_id"`
	PatientID     uuid.UUID            `json:"patient_id"`
	DoctorID      uuid.UUID            `json:"doctor_id"`
	Date          string               `json:"date"`
	StartTime     string               `json:"start_time"`
	Reason        string               `json:"reason,omitempty"`
	ActorRole     Role                 `json:"actor_role"`
}

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// NewAppointmentOutboxEvent packs an appointment event for the outbox table.
// Marshalling a plain struct cannot fail, so the error is ignored.
func NewAppointmentOutboxEvent(evt *AppointmentEvent) *OutboxEvent {
	payload, _ := json.Marshal(evt)
	return &OutboxEvent{
		ID:        uuid.New(),
		EventType: string(evt.Event),
		Payload:   payload,
		Status:    OutboxStatusPending,
	}
}
