package model

import "github.com/google/uuid"

type Prescription struct {
	Base
	AppointmentID uuid.UUID           `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID           `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID           `db:"doctor_id" json:"doctor_id"`
	Notes         string              `db:"notes" json:"notes,omitempty"`
	Items         []*PrescriptionItem `json:"items"`
}

type PrescriptionItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	Medication     string    `db:"medication" json:"medication"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	DurationDays   int       `db:"duration_days" json:"duration_days"`
	Instructions   string    `db:"instructions" json:"instructions,omitempty"`
}

type CreatePrescriptionRequest struct {
	AppointmentID uuid.UUID                       `json:"appointment_id" binding:"required"`
	Notes         string                          `json:"notes" binding:"max=2000"`
	Items         []CreatePrescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreatePrescriptionItemRequest struct {
	Medication   string `json:"medication" binding:"required,max=255"`
	Dosage       string `json:"dosage" binding:"required,max=255"`
	Frequency    string `json:"frequency" binding:"required,max=255"`
	DurationDays int    `json:"duration_days" binding:"min=0"`
	Instructions string `json:"instructions" binding:"max=1000"`
}
