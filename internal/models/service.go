package models

import "time"

type ServiceType string

const (
	ServiceTypeMentorshipSession ServiceType = "mentorship_session"
	ServiceTypeMockInterview     ServiceType = "mock_interview"
	ServiceTypeMentorshipPlan    ServiceType = "mentorship_plan"
	ServiceTypeGroupMentorship   ServiceType = "group_mentorship"
)

// Service is a bookable offering of a coach. Price covers the whole product,
// so a plan price pays for every session of the plan.
type Service struct {
	ID        int64       `json:"id"`
	CoachID   int64       `json:"coach_id"`
	Type      ServiceType `json:"type"`
	Title     string      `json:"title"`
	Price     float64     `json:"price"`
	CreatedAt time.Time   `json:"created_at"`
}

// RequestType maps the offering to the kind of mentorship request it produces.
func (s Service) RequestType() RequestType {
	switch s.Type {
	case ServiceTypeMentorshipPlan:
		return RequestTypePlan
	case ServiceTypeGroupMentorship:
		return RequestTypeGroup
	default:
		return RequestTypeOneToOne
	}
}

const DefaultPlanSessionCount = 4

type MentorshipPlan struct {
	ID           int64  `json:"id"`
	ServiceID    int64  `json:"service_id"`
	Title        string `json:"title"`
	SessionCount int    `json:"session_count"`
}
