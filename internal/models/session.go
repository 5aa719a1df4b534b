package models

import "time"

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// SessionKind separates shared group slots from the coach's exclusive calendar.
type SessionKind string

const (
	SessionKindStandard SessionKind = "standard"
	SessionKindGroup    SessionKind = "group"
)

const StandardSessionMinutes = 60

type Session struct {
	ID                  int64         `json:"id"`
	CoachID             int64         `json:"coach_id"`
	TraineeID           int64         `json:"trainee_id"`
	ServiceID           int64         `json:"service_id"`
	MentorshipRequestID *int64        `json:"mentorship_request_id"`
	DateTime            time.Time     `json:"date_time"`
	DurationMinutes     int           `json:"duration_minutes"`
	Status              SessionStatus `json:"status"`
	Kind                SessionKind   `json:"kind"`
	MeetingLink         *string       `json:"meeting_link"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (s Session) End() time.Time {
	return s.DateTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Holds reports whether the session occupies the coach's calendar.
func (s Session) Holds() bool {
	return s.Status == SessionStatusPending || s.Status == SessionStatusScheduled
}

type SessionDetail struct {
	Session
	Payment *Payment `json:"payment,omitempty"`
}
