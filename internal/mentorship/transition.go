// Package mentorship holds the mentorship request state machine. Transition decides
// which side effects a status change requires; callers apply them.
package mentorship

import (
	"errors"
	"fmt"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/notify"
)

var ErrInvalidTransition = errors.New("invalid state transition")

type Effect interface {
	effect()
}

// CancelSessions cancels every pending or scheduled session of the request.
type CancelSessions struct {
	RequestID int64
}

// ReleaseGroupSeat removes the trainee from the group's participant set.
type ReleaseGroupSeat struct {
	GroupMentorshipID int64
	TraineeID         int64
}

// HoldPayment opens the payment window for the request.
type HoldPayment struct {
	RequestID int64
}

// DropPaymentHold deletes the request's pending payment, if any.
type DropPaymentHold struct {
	RequestID int64
}

type Notify struct {
	Template    notify.Template
	RecipientID int64
	Payload     map[string]any
}

func (CancelSessions) effect()   {}
func (ReleaseGroupSeat) effect() {}
func (HoldPayment) effect()      {}
func (DropPaymentHold) effect()  {}
func (Notify) effect()           {}

// Transition returns the effects of moving req to next. Moving to the current status
// yields no effects, so repeated saves are harmless.
func Transition(req models.MentorshipRequest, next models.RequestStatus) ([]Effect, error) {
	if req.Status == next {
		return nil, nil
	}

	payload := map[string]any{
		"request_id": req.ID,
		"coach_id":   req.CoachID,
		"service_id": req.ServiceID,
		"type":       string(req.Type),
	}

	switch {
	case req.Status == models.RequestStatusPending && next == models.RequestStatusAccepted:
		effects := make([]Effect, 0, 2)
		if req.Type != models.RequestTypePlan {
			effects = append(effects, HoldPayment{RequestID: req.ID})
		}
		return append(effects, Notify{
			Template:    notify.TemplateRequestAccepted,
			RecipientID: req.TraineeID,
			Payload:     payload,
		}), nil

	case req.Status == models.RequestStatusPending && next == models.RequestStatusRejected:
		return append(release(req), Notify{
			Template:    notify.TemplateRequestRejected,
			RecipientID: req.TraineeID,
			Payload:     payload,
		}), nil

	case next == models.RequestStatusCancelled &&
		(req.Status == models.RequestStatusPending || req.Status == models.RequestStatusAccepted):
		if req.PaidAt != nil {
			return nil, fmt.Errorf("%w: request %d is already paid", ErrInvalidTransition, req.ID)
		}
		return append(release(req), DropPaymentHold{RequestID: req.ID}, Notify{
			Template:    notify.TemplateRequestCancelled,
			RecipientID: req.TraineeID,
			Payload:     payload,
		}), nil
	}

	return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, next)
}

func release(req models.MentorshipRequest) []Effect {
	effects := []Effect{CancelSessions{RequestID: req.ID}}
	if group, ok := req.Group(); ok {
		effects = append(effects, ReleaseGroupSeat{
			GroupMentorshipID: group.GroupMentorshipID,
			TraineeID:         req.TraineeID,
		})
	}
	return effects
}

// Notifications picks the notify effects out of an effect list.
func Notifications(effects []Effect) []Notify {
	var out []Notify
	for _, e := range effects {
		if n, ok := e.(Notify); ok {
			out = append(out, n)
		}
	}
	return out
}
