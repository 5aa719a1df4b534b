// Package notify delivers booking notifications to trainees and coaches.
package notify

import (
	"context"
	"errors"
)

type Template string

const (
	TemplateRequestCreated   Template = "request_created"
	TemplateRequestAccepted  Template = "request_accepted"
	TemplateRequestRejected  Template = "request_rejected"
	TemplateRequestCancelled Template = "request_cancelled"
	TemplatePlanBooked       Template = "plan_booked"
	TemplatePaymentConfirmed Template = "payment_confirmed"
)

type Recipient struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type Sender interface {
	SendMail(ctx context.Context, template Template, to Recipient, payload map[string]any) error
}

// Multi fans a notification out to every sender and joins their errors.
type Multi []Sender

func (m Multi) SendMail(ctx context.Context, template Template, to Recipient, payload map[string]any) error {
	var errs []error
	for _, sender := range m {
		if sender == nil {
			continue
		}
		if err := sender.SendMail(ctx, template, to, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
