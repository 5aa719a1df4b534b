package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
)

type MentorshipRequestDetail struct {
	Request      *models.MentorshipRequest `json:"request"`
	Sessions     []models.Session          `json:"sessions"`
	PaymentDueAt *time.Time                `json:"payment_due_at,omitempty"`
	Payment      *models.Payment           `json:"payment,omitempty"`
}

type MentorshipRequestService struct {
	db          *pgxpool.Pool
	requestRepo *repository.MentorshipRequestRepository
	sessionRepo *repository.SessionRepository
	holdRepo    *repository.PendingPaymentRepository
	paymentRepo *repository.PaymentRepository
	notifier    *Notifier
	lifecycle   requestLifecycle
}

func NewMentorshipRequestService(db *pgxpool.Pool, notifier *Notifier, paymentWindow time.Duration) *MentorshipRequestService {
	return &MentorshipRequestService{
		db:          db,
		requestRepo: repository.NewMentorshipRequestRepository(db),
		sessionRepo: repository.NewSessionRepository(db),
		holdRepo:    repository.NewPendingPaymentRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		notifier:    notifier,
		lifecycle:   newRequestLifecycle(paymentWindow, time.Now),
	}
}

func (s *MentorshipRequestService) Accept(ctx context.Context, coachID, requestID int64) (*models.MentorshipRequest, error) {
	return s.changeStatus(ctx, requestID, models.RequestStatusAccepted, func(req *models.MentorshipRequest) error {
		if req.CoachID != coachID {
			return ErrForbidden
		}
		return nil
	})
}

func (s *MentorshipRequestService) Reject(ctx context.Context, coachID, requestID int64) (*models.MentorshipRequest, error) {
	return s.changeStatus(ctx, requestID, models.RequestStatusRejected, func(req *models.MentorshipRequest) error {
		if req.CoachID != coachID {
			return ErrForbidden
		}
		return nil
	})
}

// Cancel lets the trainee withdraw a request until it is paid.
func (s *MentorshipRequestService) Cancel(ctx context.Context, traineeID, requestID int64) (*models.MentorshipRequest, error) {
	return s.changeStatus(ctx, requestID, models.RequestStatusCancelled, func(req *models.MentorshipRequest) error {
		if req.TraineeID != traineeID {
			return ErrForbidden
		}
		if req.PaidAt != nil {
			return fmt.Errorf("%w: paid requests cannot be cancelled", ErrInvalidStateTransition)
		}
		return nil
	})
}

func (s *MentorshipRequestService) changeStatus(
	ctx context.Context,
	requestID int64,
	next models.RequestStatus,
	authorize func(req *models.MentorshipRequest) error,
) (*models.MentorshipRequest, error) {
	if requestID <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	req, err := repository.NewMentorshipRequestRepository(tx).GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, notFound("mentorship request", err)
	}
	if err := authorize(req); err != nil {
		return nil, err
	}

	updated, notes, err := s.lifecycle.applyStatus(ctx, tx, req, next)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.notifier.Dispatch(ctx, notes)
	return updated, nil
}

func (s *MentorshipRequestService) Get(
	ctx context.Context,
	actorID int64,
	role string,
	requestID int64,
) (*MentorshipRequestDetail, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, notFound("mentorship request", err)
	}
	if !canAccessRequest(role, actorID, req) {
		return nil, ErrForbidden
	}

	sessions, err := s.sessionRepo.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	detail := &MentorshipRequestDetail{Request: req, Sessions: sessions}

	hold, err := s.holdRepo.GetByRequestID(ctx, req.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.PaymentDueAt = &hold.PaymentDueAt
	}

	payment, err := s.paymentRepo.GetLatestByRequestID(ctx, req.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

func canAccessRequest(role string, actorID int64, req *models.MentorshipRequest) bool {
	switch role {
	case models.RoleTrainee:
		return req.TraineeID == actorID
	case models.RoleCoach:
		return req.CoachID == actorID
	default:
		return false
	}
}
