package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
)

// BookableStatuses are the statuses that occupy a slot.
var BookableStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusRejected:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID             uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID              uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date                  time.Time         `db:"date" json:"date"`
	StartTime             string            `db:"start_time" json:"start_time"`
	DurationMinutes       int               `db:"duration_minutes" json:"duration_minutes"`
	Status                AppointmentStatus `db:"status" json:"status"`
	Reason                string            `db:"reason" json:"reason,omitempty"`
	Fee                   float64           `db:"fee" json:"fee"`
	ConfirmedAt           *time.Time        `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CancelledAt           *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CompletedAt           *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
	CancellationReason    *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	ReminderSent          bool              `db:"reminder_sent" json:"reminder_sent"`
	IsFollowUp            bool              `db:"is_follow_up" json:"is_follow_up"`
	OriginalAppointmentID *uuid.UUID        `db:"original_appointment_id" json:"original_appointment_id,omitempty"`
}

// StartsAt resolves the appointment's start as a point in time.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	clock, err := time.ParseInLocation(ClockLayout, a.StartTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	Date            string    `json:"date" binding:"required"`
	StartTime       string    `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason" binding:"max=1000"`
}

type CreateFollowUpRequest struct {
	OriginalAppointmentID uuid.UUID `json:"original_appointment_id" binding:"required"`
	Date                  string    `json:"date" binding:"required"`
	StartTime             string    `json:"start_time" binding:"required"`
	DurationMinutes       int       `json:"duration_minutes"`
	Reason                string    `json:"reason" binding:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
}

type TransitionRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    AppointmentStatus
	FromDate  time.Time
	ToDate    time.Time
}
