package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
)

func rule(start, end string, duration int) *model.ScheduleRule {
	return &model.ScheduleRule{
		DayOfWeek:           1,
		StartTime:           start,
		EndTime:             end,
		SlotDurationMinutes: duration,
		Active:              true,
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"23:59", 1439, false},
		{"9am", 0, true},
		{"25:00", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.minutes, got, tt.input)
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, clock := range []string{"00:00", "08:05", "13:30", "23:45"} {
		minutes, err := ParseClock(clock)
		require.NoError(t, err)
		assert.Equal(t, clock, FormatClock(minutes))
	}
}

func TestGenerateSlots(t *testing.T) {
	t.Run("hour window with half hour slots", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "10:00", 30)})

		require.Len(t, slots, 2)
		assert.Equal(t, "09:00", slots[0].Time)
		assert.Equal(t, "09:30", slots[1].Time)
		for _, s := range slots {
			assert.True(t, s.Available)
			assert.Equal(t, 30, s.DurationMinutes)
		}
	})

	t.Run("no rules means no slots", func(t *testing.T) {
		assert.Empty(t, GenerateSlots(nil))
		assert.Empty(t, GenerateSlots([]*model.ScheduleRule{}))
	})

	t.Run("partial trailing window emits no slot", func(t *testing.T) {
		// 09:00-09:50 with 30-minute slots: 09:30 starts before the end
		// but a slot starting at 09:50 would not, and 09:30 itself is
		// within the window so it is emitted.
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "09:50", 30)})

		require.Len(t, slots, 2)
		assert.Equal(t, "09:00", slots[0].Time)
		assert.Equal(t, "09:30", slots[1].Time)
	})

	t.Run("slot starting exactly at end is excluded", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "09:30", 30)})

		require.Len(t, slots, 1)
		assert.Equal(t, "09:00", slots[0].Time)
	})

	t.Run("inactive rules are skipped", func(t *testing.T) {
		inactive := rule("09:00", "10:00", 30)
		inactive.Active = false

		assert.Empty(t, GenerateSlots([]*model.ScheduleRule{inactive}))
	})

	t.Run("zero duration falls back to default", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "10:00", 0)})

		require.Len(t, slots, 2)
		assert.Equal(t, model.DefaultSlotDurationMinutes, slots[0].DurationMinutes)
	})

	t.Run("unparseable rule is skipped", func(t *testing.T) {
		assert.Empty(t, GenerateSlots([]*model.ScheduleRule{rule("late", "10:00", 30)}))
	})

	t.Run("multiple rules emit in order", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{
			rule("09:00", "10:00", 30),
			rule("14:00", "15:00", 60),
		})

		require.Len(t, slots, 3)
		assert.Equal(t, "09:00", slots[0].Time)
		assert.Equal(t, "09:30", slots[1].Time)
		assert.Equal(t, "14:00", slots[2].Time)
		assert.Equal(t, 60, slots[2].DurationMinutes)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		rules := []*model.ScheduleRule{rule("09:00", "12:00", 45)}
		first := GenerateSlots(rules)
		second := GenerateSlots(rules)

		assert.Equal(t, first, second)
	})
}

func TestMarkAvailability(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	earlyMorning := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

	apt := func(start string, duration int) *model.Appointment {
		return &model.Appointment{StartTime: start, DurationMinutes: duration}
	}

	t.Run("booked slot becomes unavailable", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "10:00", 30)})

		marked := MarkAvailability(slots, date, []*model.Appointment{apt("09:00", 30)}, earlyMorning)

		require.Len(t, marked, 2)
		assert.False(t, marked[0].Available)
		assert.True(t, marked[1].Available)
	})

	t.Run("adjacent booking does not conflict", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "10:00", 30)})

		// Appointment 08:30-09:00 touches the 09:00 slot boundary only.
		marked := MarkAvailability(slots, date, []*model.Appointment{apt("08:30", 30)}, earlyMorning)

		assert.True(t, marked[0].Available)
		assert.True(t, marked[1].Available)
	})

	t.Run("partial overlap conflicts", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "10:00", 30)})

		// 08:45-09:15 clips the first slot only.
		marked := MarkAvailability(slots, date, []*model.Appointment{apt("08:45", 30)}, earlyMorning)

		assert.False(t, marked[0].Available)
		assert.True(t, marked[1].Available)
	})

	t.Run("long appointment blocks several slots", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "11:00", 30)})

		marked := MarkAvailability(slots, date, []*model.Appointment{apt("09:00", 90)}, earlyMorning)

		require.Len(t, marked, 4)
		assert.False(t, marked[0].Available)
		assert.False(t, marked[1].Available)
		assert.False(t, marked[2].Available)
		assert.True(t, marked[3].Available)
	})

	t.Run("past slots are unavailable", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "10:00", 30)})

		// Now is 09:00 on the day itself: the 09:00 slot start is not
		// strictly in the future, the 09:30 slot is.
		now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		marked := MarkAvailability(slots, date, nil, now)

		assert.False(t, marked[0].Available)
		assert.True(t, marked[1].Available)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "10:00", 30)})

		MarkAvailability(slots, date, []*model.Appointment{apt("09:00", 30)}, earlyMorning)

		assert.True(t, slots[0].Available)
	})

	t.Run("cancelled appointments are callers responsibility", func(t *testing.T) {
		// The function considers every appointment it is handed; the
		// repository only feeds it pending and confirmed rows.
		slots := GenerateSlots([]*model.ScheduleRule{rule("09:00", "09:30", 30)})

		marked := MarkAvailability(slots, date, nil, earlyMorning)
		assert.True(t, marked[0].Available)
	})
}
