package models

import "time"

const (
	PaymentStatusPaid   = "paid"
	PaymentStatusFailed = "failed"
)

type Payment struct {
	ID                  int64     `json:"id"`
	MentorshipRequestID int64     `json:"mentorship_request_id"`
	TraineeID           int64     `json:"trainee_id"`
	CoachID             int64     `json:"coach_id"`
	Amount              float64   `json:"amount"`
	Status              string    `json:"status"`
	ProviderRef         string    `json:"provider_ref"`
	CreatedAt           time.Time `json:"created_at"`
}

// PendingPayment marks the sessions of a request as tentatively held until PaymentDueAt.
type PendingPayment struct {
	MentorshipRequestID int64     `json:"mentorship_request_id"`
	PaymentDueAt        time.Time `json:"payment_due_at"`
	CreatedAt           time.Time `json:"created_at"`
}

func (p PendingPayment) Overdue(now time.Time) bool {
	return p.PaymentDueAt.Before(now)
}
