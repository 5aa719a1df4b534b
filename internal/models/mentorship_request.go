package models

import (
	"encoding/json"
	"time"
)

type RequestType string

const (
	RequestTypeOneToOne RequestType = "one_to_one"
	RequestTypeGroup    RequestType = "group"
	RequestTypePlan     RequestType = "plan"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Column values of mentorship_requests.requestable_type.
const (
	RequestableTypePlan  = "mentorship_plan"
	RequestableTypeGroup = "group_mentorship"
)

// Requestable is the product a request targets: a plan or a group mentorship.
// One-to-one requests have no requestable.
type Requestable interface {
	RequestableType() string
	RequestableID() int64
	RequestableServiceID() int64
}

type PlanRequestable struct {
	PlanID       int64
	ServiceID    int64
	SessionCount int
}

func (p PlanRequestable) RequestableType() string     { return RequestableTypePlan }
func (p PlanRequestable) RequestableID() int64        { return p.PlanID }
func (p PlanRequestable) RequestableServiceID() int64 { return p.ServiceID }

type GroupRequestable struct {
	GroupMentorshipID int64
	ServiceID         int64
}

func (g GroupRequestable) RequestableType() string     { return RequestableTypeGroup }
func (g GroupRequestable) RequestableID() int64        { return g.GroupMentorshipID }
func (g GroupRequestable) RequestableServiceID() int64 { return g.ServiceID }

type MentorshipRequest struct {
	ID               int64         `json:"id"`
	TraineeID        int64         `json:"trainee_id"`
	CoachID          int64         `json:"coach_id"`
	ServiceID        int64         `json:"service_id"`
	Type             RequestType   `json:"type"`
	Status           RequestStatus `json:"status"`
	FirstSessionTime *time.Time    `json:"first_session_time,omitempty"`
	DurationMinutes  int           `json:"duration_minutes"`
	PlanSchedule     []time.Time   `json:"plan_schedule,omitempty"`
	Requestable      Requestable   `json:"-"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// IsActive reports whether the request still blocks the trainee from booking elsewhere.
func (r MentorshipRequest) IsActive() bool {
	if r.PaidAt != nil {
		return false
	}
	return r.Status == RequestStatusPending || r.Status == RequestStatusAccepted
}

func (r MentorshipRequest) Plan() (PlanRequestable, bool) {
	plan, ok := r.Requestable.(PlanRequestable)
	return plan, ok
}

func (r MentorshipRequest) Group() (GroupRequestable, bool) {
	group, ok := r.Requestable.(GroupRequestable)
	return group, ok
}

type requestableJSON struct {
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	ServiceID int64  `json:"service_id"`
}

func (r MentorshipRequest) MarshalJSON() ([]byte, error) {
	type plain MentorshipRequest
	out := struct {
		plain
		Requestable *requestableJSON `json:"requestable,omitempty"`
	}{plain: plain(r)}
	if r.Requestable != nil {
		out.Requestable = &requestableJSON{
			Type:      r.Requestable.RequestableType(),
			ID:        r.Requestable.RequestableID(),
			ServiceID: r.Requestable.RequestableServiceID(),
		}
	}
	return json.Marshal(out)
}
