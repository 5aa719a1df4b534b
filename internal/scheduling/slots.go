package scheduling

import (
	"slices"
	"time"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

const SlotLength = models.StandardSessionMinutes * time.Minute

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func SessionInterval(s models.Session) Interval {
	return Interval{Start: s.DateTime, End: s.End()}
}

// Overlaps uses strict bounds, so back-to-back intervals do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

func (i Interval) Equal(other Interval) bool {
	return i.Start.Equal(other.Start) && i.End.Equal(other.End)
}

// WindowSlots partitions a window into consecutive slots aligned to the window start.
// A trailing remainder shorter than SlotLength is dropped.
func WindowSlots(w models.AvailabilityWindow) []models.TimeOfDay {
	var slots []models.TimeOfDay
	for start := w.StartTime; start.Add(SlotLength) <= w.EndTime; start = start.Add(SlotLength) {
		slots = append(slots, start)
	}
	return slots
}

func WindowsOn(day time.Weekday, windows []models.AvailabilityWindow) []models.AvailabilityWindow {
	var out []models.AvailabilityWindow
	for _, w := range windows {
		if w.DayOfWeek == day {
			out = append(out, w)
		}
	}
	return out
}

// OpenSlots returns the ascending, deduplicated slot start times on date that do not
// overlap any of the booked intervals.
func OpenSlots(date time.Time, windows []models.AvailabilityWindow, booked []Interval) []models.TimeOfDay {
	seen := make(map[models.TimeOfDay]struct{})
	slots := make([]models.TimeOfDay, 0)
	for _, w := range WindowsOn(date.Weekday(), windows) {
		for _, start := range WindowSlots(w) {
			if _, ok := seen[start]; ok {
				continue
			}
			slotStart := start.On(date)
			slot := Interval{Start: slotStart, End: slotStart.Add(SlotLength)}
			if overlapsAny(slot, booked) {
				continue
			}
			seen[start] = struct{}{}
			slots = append(slots, start)
		}
	}
	slices.Sort(slots)
	return slots
}

// MonthAvailability marks every day of month's month as available when the coach has
// at least one window on that weekday. Existing bookings are not considered.
func MonthAvailability(month time.Time, windows []models.AvailabilityWindow) []models.DateAvailability {
	days := make(map[time.Weekday]bool, 7)
	for _, w := range windows {
		days[w.DayOfWeek] = true
	}

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.DateAvailability, 0, 31)
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		status := models.DateUnavailable
		if days[day.Weekday()] {
			status = models.DateAvailable
		}
		out = append(out, models.DateAvailability{
			Date:   day.Format(time.DateOnly),
			Status: status,
		})
	}
	return out
}

// Covered reports whether some window on the weekday of start contains [start, start+length].
func Covered(windows []models.AvailabilityWindow, start time.Time, length time.Duration) bool {
	from := models.TimeOfDayFrom(start)
	to := from.Add(length)
	for _, w := range WindowsOn(start.Weekday(), windows) {
		if w.Covers(from, to) {
			return true
		}
	}
	return false
}

func overlapsAny(slot Interval, booked []Interval) bool {
	for _, b := range booked {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}

// ExactConflict is the conflict rule of plan booking: a candidate only collides with
// a booked interval that has the same start and the same end.
func ExactConflict(candidate Interval, booked []Interval) bool {
	for _, b := range booked {
		if candidate.Equal(b) {
			return true
		}
	}
	return false
}

func OverlapConflict(candidate Interval, booked []Interval) bool {
	return overlapsAny(candidate, booked)
}
