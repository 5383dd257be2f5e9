package scheduling

import (
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

type transition struct {
	from model.AppointmentStatus
	to   model.AppointmentStatus
}

type transitionRule struct {
	doctorOnly    bool
	patientMay    bool
	requireReason bool
}

// Transition table. Anything absent is an invalid transition, which covers
// every edge out of the terminal states completed, cancelled and rejected.
var transitions = map[transition]transitionRule{
	{model.AppointmentStatusPending, model.AppointmentStatusConfirmed}:   {doctorOnly: true},
	{model.AppointmentStatusPending, model.AppointmentStatusRejected}:    {doctorOnly: true, requireReason: true},
	{model.AppointmentStatusPending, model.AppointmentStatusCancelled}:   {patientMay: true, requireReason: true},
	{model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted}: {doctorOnly: true},
	{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled}: {patientMay: true, requireReason: true},
}

// ValidateTransition checks that actor may move apt from its current status
// to the requested one. Doctors act on their own appointments only; a
// patient may only cancel an appointment they own.
func ValidateTransition(actor model.Actor, apt *model.Appointment, to model.AppointmentStatus, reason string) error {
	rule, ok := transitions[transition{apt.Status, to}]
	if !ok {
		return errors.InvalidTransition(string(apt.Status), string(to))
	}

	if rule.requireReason && reason == "" {
		return errors.Validation("a reason is required for this status change")
	}

	switch {
	case actor.IsDoctor() && actor.ID == apt.DoctorID:
		return nil
	case rule.patientMay && actor.IsPatient() && actor.ID == apt.PatientID:
		return nil
	case rule.doctorOnly:
		return errors.AuthorizationDenied("only the appointment's doctor may perform this status change")
	default:
		return errors.AuthorizationDenied("caller may not modify this appointment")
	}
}

// CanReschedule reports whether an appointment in its current status may be
// moved to a new date and time. Rescheduling is a compound operation, not a
// state machine edge: the appointment ends up confirmed regardless of
// whether it was pending or confirmed before.
func CanReschedule(status model.AppointmentStatus) bool {
	return status == model.AppointmentStatusPending || status == model.AppointmentStatusConfirmed
}
