// Package scheduling holds the pure parts of the booking core: expanding
// weekly schedule rules into candidate slots, marking slot availability
// against existing bookings, and the appointment status state machine.
// Nothing in here touches storage.
package scheduling

import (
	"fmt"
	"time"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
)

// ParseClock converts an HH:MM string to minutes from midnight.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse(model.ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes from midnight back to HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GenerateSlots expands schedule rules into candidate slots, in rule order.
// Each rule emits a slot every SlotDurationMinutes starting at StartTime,
// strictly while the slot start is before EndTime, so a trailing partial
// window produces no slot. Rules that overlap in time are emitted as-is,
// duplicates included; callers see exactly what the rules say.
//
// Rules are expected to be pre-filtered to one doctor and one day-of-week.
// Inactive rules and rules that fail to parse are skipped.
func GenerateSlots(rules []*model.ScheduleRule) []model.Slot {
	slots := make([]model.Slot, 0)
	for _, rule := range rules {
		if !rule.Active {
			continue
		}

		start, err := ParseClock(rule.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(rule.EndTime)
		if err != nil {
			continue
		}

		duration := rule.SlotDurationMinutes
		if duration <= 0 {
			duration = model.DefaultSlotDurationMinutes
		}

		for cur := start; cur < end; cur += duration {
			slots = append(slots, model.Slot{
				Time:            FormatClock(cur),
				Available:       true,
				DurationMinutes: duration,
			})
		}
	}
	return slots
}

// overlaps reports whether two half-open minute intervals intersect.
// Touching boundaries do not conflict: a slot ending exactly when an
// appointment starts, or starting exactly when one ends, stays available.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// MarkAvailability annotates candidate slots for one date against the
// doctor's existing appointments on that date. A slot becomes unavailable
// if its start is not after now, or if it overlaps any appointment's
// interval. Appointments with a non-positive duration count as the default
// 30 minutes. The input slice is not mutated.
func MarkAvailability(slots []model.Slot, date time.Time, appointments []*model.Appointment, now time.Time) []model.Slot {
	type interval struct{ start, end int }
	booked := make([]interval, 0, len(appointments))
	for _, apt := range appointments {
		start, err := ParseClock(apt.StartTime)
		if err != nil {
			continue
		}
		duration := apt.DurationMinutes
		if duration <= 0 {
			duration = model.DefaultSlotDurationMinutes
		}
		booked = append(booked, interval{start: start, end: start + duration})
	}

	loc := now.Location()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	out := make([]model.Slot, len(slots))
	for i, slot := range slots {
		out[i] = slot

		start, err := ParseClock(slot.Time)
		if err != nil {
			out[i].Available = false
			continue
		}

		startsAt := dayStart.Add(time.Duration(start) * time.Minute)
		if !startsAt.After(now) {
			out[i].Available = false
			continue
		}

		end := start + slot.DurationMinutes
		for _, iv := range booked {
			if overlaps(start, end, iv.start, iv.end) {
				out[i].Available = false
				break
			}
		}
	}
	return out
}
