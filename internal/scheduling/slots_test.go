package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

func window(day time.Weekday, start, end string) models.AvailabilityWindow {
	s, err := models.ParseTimeOfDay(start)
	if err != nil {
		panic(err)
	}
	e, err := models.ParseTimeOfDay(end)
	if err != nil {
		panic(err)
	}
	return models.AvailabilityWindow{CoachID: 7, DayOfWeek: day, StartTime: s, EndTime: e}
}

func tod(value string) models.TimeOfDay {
	t, err := models.ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return t
}

// 2026-11-02 is a Monday.
var monday = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

func TestOpenSlots_NoWindowOnWeekdayReturnsEmpty(t *testing.T) {
	windows := []models.AvailabilityWindow{window(time.Tuesday, "09:00", "12:00")}

	slots := OpenSlots(monday, windows, nil)

	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestOpenSlots_DropsRemainderShorterThanSlot(t *testing.T) {
	windows := []models.AvailabilityWindow{window(time.Monday, "10:00", "11:30")}

	slots := OpenSlots(monday, windows, nil)

	assert.Equal(t, []models.TimeOfDay{tod("10:00")}, slots)
}

func TestOpenSlots_WindowShorterThanSlotYieldsNothing(t *testing.T) {
	windows := []models.AvailabilityWindow{window(time.Monday, "10:00", "10:45")}

	assert.Empty(t, OpenSlots(monday, windows, nil))
}

func TestOpenSlots_AlignsToWindowStart(t *testing.T) {
	windows := []models.AvailabilityWindow{window(time.Monday, "09:30", "12:30")}

	slots := OpenSlots(monday, windows, nil)

	assert.Equal(t, []models.TimeOfDay{tod("09:30"), tod("10:30"), tod("11:30")}, slots)
}

func TestOpenSlots_ExcludesOverlappingBookingsButKeepsBackToBack(t *testing.T) {
	windows := []models.AvailabilityWindow{window(time.Monday, "09:00", "13:00")}
	booked := []Interval{
		{Start: tod("10:30").On(monday), End: tod("11:30").On(monday)},
		{Start: tod("08:00").On(monday), End: tod("09:00").On(monday)},
	}

	slots := OpenSlots(monday, windows, booked)

	// 10:00 and 11:00 overlap the 10:30 booking; 09:00 starts exactly when the early booking ends.
	assert.Equal(t, []models.TimeOfDay{tod("09:00"), tod("12:00")}, slots)
}

func TestOpenSlots_DeduplicatesAndSortsAcrossWindows(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(time.Monday, "14:00", "16:00"),
		window(time.Monday, "09:00", "11:00"),
		window(time.Monday, "09:00", "10:00"),
	}

	slots := OpenSlots(monday, windows, nil)

	assert.Equal(t, []models.TimeOfDay{tod("09:00"), tod("10:00"), tod("14:00"), tod("15:00")}, slots)
}

func TestMonthAvailability_MarksWeekdaysWithWindows(t *testing.T) {
	windows := []models.AvailabilityWindow{window(time.Monday, "09:00", "10:00")}

	days := MonthAvailability(time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC), windows)

	require.Len(t, days, 30)
	assert.Equal(t, "2026-11-01", days[0].Date)
	assert.Equal(t, models.DateUnavailable, days[0].Status)
	assert.Equal(t, "2026-11-02", days[1].Date)
	assert.Equal(t, models.DateAvailable, days[1].Status)
	available := 0
	for _, d := range days {
		if d.Status == models.DateAvailable {
			available++
		}
	}
	assert.Equal(t, 5, available)
}

func TestCovered(t *testing.T) {
	windows := []models.AvailabilityWindow{window(time.Monday, "09:00", "10:00")}

	assert.True(t, Covered(windows, tod("09:00").On(monday), SlotLength))
	assert.False(t, Covered(windows, tod("09:30").On(monday), SlotLength))
	assert.False(t, Covered(windows, tod("09:00").On(monday.AddDate(0, 0, 1)), SlotLength))
}

// Plan booking only rejects exact start/end matches. Partial overlaps pass this check,
// unlike the overlap rule used by slot listing and one-to-one booking.
func TestExactConflict_IgnoresPartialOverlap(t *testing.T) {
	candidate := Interval{Start: tod("09:00").On(monday), End: tod("10:00").On(monday)}
	partial := []Interval{{Start: tod("09:30").On(monday), End: tod("10:30").On(monday)}}
	exact := []Interval{{Start: tod("09:00").On(monday), End: tod("10:00").On(monday)}}

	assert.False(t, ExactConflict(candidate, partial))
	assert.True(t, OverlapConflict(candidate, partial))
	assert.True(t, ExactConflict(candidate, exact))
}
