package model

import "github.com/google/uuid"

// DefaultSlotDurationMinutes applies when a schedule rule does not set one.
const DefaultSlotDurationMinutes = 30

// ScheduleRule is a doctor's recurring weekly availability window.
// DayOfWeek follows time.Weekday numbering: 0 = Sunday.
type ScheduleRule struct {
	Base
	DoctorID            uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DayOfWeek           int       `db:"day_of_week" json:"day_of_week"`
	StartTime           string    `db:"start_time" json:"start_time"`
	EndTime             string    `db:"end_time" json:"end_time"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	Active              bool      `db:"active" json:"active"`
}

// Slot is a candidate bookable time derived from a schedule rule for one
// date. It is computed on demand and never persisted.
type Slot struct {
	Time            string `json:"time"`
	Available       bool   `json:"available"`
	DurationMinutes int    `json:"-"`
}

type CreateScheduleRuleRequest struct {
	DayOfWeek           int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime           string `json:"start_time" binding:"required"`
	EndTime             string `json:"end_time" binding:"required"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
}

type UpdateScheduleRuleRequest struct {
	DayOfWeek           *int    `json:"day_of_week"`
	StartTime           *string `json:"start_time"`
	EndTime             *string `json:"end_time"`
	SlotDurationMinutes *int    `json:"slot_duration_minutes"`
	Active              *bool   `json:"active"`
}
