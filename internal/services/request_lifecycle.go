package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Ghada-Shaban/LinkUp/internal/mentorship"
	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/notify"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
)

const DefaultPaymentWindow = 24 * time.Hour

const dueAtLayout = "2006-01-02 15:04 UTC"

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Notifier resolves recipients and hands notifications to the sender after commit.
// Delivery failures are logged, never returned. A nil Notifier drops everything.
type Notifier struct {
	sender notify.Sender
	users  userReader
	logger *zap.Logger
}

func NewNotifier(sender notify.Sender, users userReader, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{sender: sender, users: users, logger: logger}
}

func (n *Notifier) Dispatch(ctx context.Context, notes []mentorship.Notify) {
	if n == nil || n.sender == nil {
		return
	}
	for _, note := range notes {
		recipient := notify.Recipient{UserID: note.RecipientID}
		if n.users != nil {
			user, err := n.users.GetByID(ctx, note.RecipientID)
			if err != nil {
				n.logger.Warn("Failed to resolve notification recipient",
					zap.Int64("recipient_id", note.RecipientID),
					zap.Error(err),
				)
			} else {
				recipient.Email = user.Email
				recipient.Name = user.FullName
			}
		}
		if err := n.sender.SendMail(ctx, note.Template, recipient, note.Payload); err != nil {
			n.logger.Error("Failed to send notification",
				zap.String("template", string(note.Template)),
				zap.Int64("recipient_id", note.RecipientID),
				zap.Error(err),
			)
		}
	}
}

// requestLifecycle is the only code path that changes a mentorship request's status.
type requestLifecycle struct {
	paymentWindow time.Duration
	now           func() time.Time
}

func newRequestLifecycle(paymentWindow time.Duration, now func() time.Time) requestLifecycle {
	if paymentWindow <= 0 {
		paymentWindow = DefaultPaymentWindow
	}
	if now == nil {
		now = time.Now
	}
	return requestLifecycle{paymentWindow: paymentWindow, now: now}
}

// applyStatus moves a locked request to next and applies the transition's effects
// inside tx. The returned notifications must be dispatched after commit.
func (l requestLifecycle) applyStatus(
	ctx context.Context,
	tx pgx.Tx,
	req *models.MentorshipRequest,
	next models.RequestStatus,
) (*models.MentorshipRequest, []mentorship.Notify, error) {
	effects, err := mentorship.Transition(*req, next)
	if err != nil {
		if errors.Is(err, mentorship.ErrInvalidTransition) {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidStateTransition, err)
		}
		return nil, nil, err
	}
	if req.Status == next {
		return req, nil, nil
	}

	requestRepo := repository.NewMentorshipRequestRepository(tx)
	sessionRepo := repository.NewSessionRepository(tx)
	groupRepo := repository.NewGroupMentorshipRepository(tx)
	holdRepo := repository.NewPendingPaymentRepository(tx)

	updated, err := requestRepo.UpdateStatusIfCurrent(ctx, req.ID, req.Status, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidStateTransition
		}
		return nil, nil, err
	}

	var (
		notes []mentorship.Notify
		dueAt *time.Time
	)
	for _, effect := range effects {
		switch e := effect.(type) {
		case mentorship.CancelSessions:
			if _, err := sessionRepo.CancelByRequest(ctx, e.RequestID); err != nil {
				return nil, nil, err
			}
		case mentorship.ReleaseGroupSeat:
			group, err := groupRepo.GetByIDForUpdate(ctx, e.GroupMentorshipID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					continue
				}
				return nil, nil, err
			}
			if group.RemoveTrainee(e.TraineeID) {
				if err := groupRepo.UpdateParticipants(ctx, group); err != nil {
					return nil, nil, err
				}
			}
		case mentorship.HoldPayment:
			hold, err := holdRepo.Create(ctx, e.RequestID, l.now().UTC().Add(l.paymentWindow))
			if err != nil {
				return nil, nil, err
			}
			dueAt = &hold.PaymentDueAt
		case mentorship.DropPaymentHold:
			if err := holdRepo.Delete(ctx, e.RequestID); err != nil {
				return nil, nil, err
			}
		case mentorship.Notify:
			notes = append(notes, e)
		}
	}

	if dueAt != nil {
		for i := range notes {
			payload := maps.Clone(notes[i].Payload)
			if payload == nil {
				payload = map[string]any{}
			}
			payload["payment_due_at"] = dueAt.Format(dueAtLayout)
			notes[i].Payload = payload
		}
	}

	return updated, notes, nil
}
