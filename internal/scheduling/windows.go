package scheduling

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/teambition/rrule-go"
)

var ErrInvalidWindow = errors.New("invalid availability window")

func ValidateWindow(w models.AvailabilityWindow) error {
	if w.DayOfWeek < time.Sunday || w.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: day_of_week %d out of range", ErrInvalidWindow, w.DayOfWeek)
	}
	if !w.StartTime.Valid() || !w.EndTime.Valid() {
		return fmt.Errorf("%w: times must be between 00:00 and 24:00", ErrInvalidWindow)
	}
	if w.StartTime >= w.EndTime {
		return fmt.Errorf("%w: start_time %s must be before end_time %s", ErrInvalidWindow, w.StartTime, w.EndTime)
	}
	return nil
}

// MergeWindows collapses overlapping and adjacent windows of the same coach and weekday.
// The result is ordered by weekday, then start time.
func MergeWindows(windows []models.AvailabilityWindow) []models.AvailabilityWindow {
	sorted := slices.Clone(windows)
	slices.SortFunc(sorted, func(a, b models.AvailabilityWindow) int {
		if a.CoachID != b.CoachID {
			return cmp.Compare(a.CoachID, b.CoachID)
		}
		if a.DayOfWeek != b.DayOfWeek {
			return int(a.DayOfWeek) - int(b.DayOfWeek)
		}
		return int(a.StartTime) - int(b.StartTime)
	})

	merged := make([]models.AvailabilityWindow, 0, len(sorted))
	for _, w := range sorted {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.CoachID == w.CoachID && last.DayOfWeek == w.DayOfWeek && w.StartTime <= last.EndTime {
				if w.EndTime > last.EndTime {
					last.EndTime = w.EndTime
				}
				continue
			}
		}
		w.ID = 0
		merged = append(merged, w)
	}
	return merged
}

// WeeklyOccurrences returns count starts one week apart, beginning at start.
func WeeklyOccurrences(start time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return nil, fmt.Errorf("occurrence count must be positive, got %d", count)
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   count,
		Dtstart: start,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build weekly rule: %w", err)
	}
	return rule.All(), nil
}
