package models

import "time"

type AvailabilityWindow struct {
	ID        int64        `json:"id"`
	CoachID   int64        `json:"coach_id"`
	DayOfWeek time.Weekday `json:"day_of_week"`
	StartTime TimeOfDay    `json:"start_time"`
	EndTime   TimeOfDay    `json:"end_time"`
}

func (w AvailabilityWindow) Length() time.Duration {
	return time.Duration(w.EndTime-w.StartTime) * time.Minute
}

// Covers reports whether [start, end) lies inside the window.
func (w AvailabilityWindow) Covers(start, end TimeOfDay) bool {
	return w.StartTime <= start && end <= w.EndTime
}

type DateStatus string

const (
	DateAvailable   DateStatus = "available"
	DateUnavailable DateStatus = "unavailable"
)

type DateAvailability struct {
	Date   string     `json:"date"`
	Status DateStatus `json:"status"`
}
