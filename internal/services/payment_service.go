package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ghada-Shaban/LinkUp/internal/mentorship"
	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/notify"
	"github.com/Ghada-Shaban/LinkUp/internal/payment"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
)

const DefaultMeetingBaseURL = "https://meet.linkup.app"

type PaymentResult struct {
	Request  *models.MentorshipRequest `json:"request"`
	Payment  *models.Payment           `json:"payment"`
	Sessions []models.Session          `json:"sessions"`
}

type PaymentService struct {
	db             *pgxpool.Pool
	gateway        payment.Gateway
	notifier       *Notifier
	meetingBaseURL string
	now            func() time.Time
}

func NewPaymentService(db *pgxpool.Pool, gateway payment.Gateway, notifier *Notifier, meetingBaseURL string) *PaymentService {
	if meetingBaseURL == "" {
		meetingBaseURL = DefaultMeetingBaseURL
	}
	return &PaymentService{
		db:             db,
		gateway:        gateway,
		notifier:       notifier,
		meetingBaseURL: strings.TrimRight(meetingBaseURL, "/"),
		now:            time.Now,
	}
}

// PayForRequest charges the trainee for an accepted request inside its payment window.
// Every attempt is recorded. An approved charge schedules the held sessions and
// releases the hold; a declined one leaves the hold in place.
func (s *PaymentService) PayForRequest(ctx context.Context, traineeID, requestID int64) (*PaymentResult, error) {
	if traineeID <= 0 || requestID <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	requestRepo := repository.NewMentorshipRequestRepository(tx)
	holdRepo := repository.NewPendingPaymentRepository(tx)
	sessionRepo := repository.NewSessionRepository(tx)
	paymentRepo := repository.NewPaymentRepository(tx)

	req, err := requestRepo.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, notFound("mentorship request", err)
	}
	if req.TraineeID != traineeID {
		return nil, ErrForbidden
	}
	if req.PaidAt != nil {
		return nil, fmt.Errorf("%w: request is already paid", ErrInvalidStateTransition)
	}
	if req.Status != models.RequestStatusAccepted {
		return nil, fmt.Errorf("%w: only accepted requests can be paid", ErrInvalidStateTransition)
	}

	now := s.now().UTC()
	hold, err := holdRepo.GetForUpdate(ctx, req.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no payment is pending for this request", ErrInvalidStateTransition)
		}
		return nil, err
	}
	if hold.Overdue(now) {
		return nil, fmt.Errorf("%w: payment window expired", ErrInvalidStateTransition)
	}

	service, err := repository.NewServiceRepository(tx).GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, notFound("service", err)
	}

	charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		MentorshipRequestID: req.ID,
		TraineeID:           req.TraineeID,
		Amount:              service.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	status := models.PaymentStatusPaid
	if !charge.Approved {
		status = models.PaymentStatusFailed
	}
	record, err := paymentRepo.Create(ctx, repository.CreatePaymentInput{
		MentorshipRequestID: req.ID,
		TraineeID:           req.TraineeID,
		CoachID:             req.CoachID,
		Amount:              service.Price,
		Status:              status,
		ProviderRef:         charge.ProviderRef,
	})
	if err != nil {
		return nil, err
	}

	if !charge.Approved {
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		reason := charge.Reason
		if reason == "" {
			reason = "declined by provider"
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, reason)
	}

	sessions, err := sessionRepo.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	for i, session := range sessions {
		if session.Status != models.SessionStatusPending {
			continue
		}
		scheduled, err := sessionRepo.Schedule(ctx, session.ID, s.meetingLink())
		if err != nil {
			return nil, err
		}
		sessions[i] = *scheduled
	}

	if err := requestRepo.MarkPaid(ctx, req.ID, now); err != nil {
		return nil, err
	}
	if err := holdRepo.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	paid, err := requestRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, []mentorship.Notify{{
		Template:    notify.TemplatePaymentConfirmed,
		RecipientID: req.TraineeID,
		Payload: map[string]any{
			"request_id": req.ID,
			"amount":     fmt.Sprintf("%.2f", service.Price),
		},
	}})

	return &PaymentResult{Request: paid, Payment: record, Sessions: sessions}, nil
}

func (s *PaymentService) meetingLink() string {
	return s.meetingBaseURL + "/" + uuid.NewString()
}
