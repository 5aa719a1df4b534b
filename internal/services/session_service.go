package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
)

var ErrInvalidStatus = errors.New("invalid status")

type SessionService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	paymentRepo *repository.PaymentRepository
	now         func() time.Time
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	paymentRepo *repository.PaymentRepository,
) *SessionService {
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		paymentRepo: paymentRepo,
		now:         time.Now,
	}
}

func (s *SessionService) ListSessions(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.SessionListFilter,
) ([]models.SessionDetail, error) {
	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
	if err != nil {
		return nil, err
	}

	requestIDs := make([]int64, 0, len(sessions))
	for _, session := range sessions {
		if session.MentorshipRequestID != nil {
			requestIDs = append(requestIDs, *session.MentorshipRequestID)
		}
	}

	paymentsByRequest, err := s.paymentRepo.ListByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		detail := models.SessionDetail{Session: session}
		if session.MentorshipRequestID != nil {
			if payment, ok := paymentsByRequest[*session.MentorshipRequestID]; ok {
				paymentCopy := payment
				detail.Payment = &paymentCopy
			}
		}
		details = append(details, detail)
	}

	return details, nil
}

func (s *SessionService) GetSession(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, notFound("session", err)
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}

	detail := &models.SessionDetail{Session: *session}
	if session.MentorshipRequestID == nil {
		return detail, nil
	}
	payment, err := s.paymentRepo.GetLatestByRequestID(ctx, *session.MentorshipRequestID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

// UpdateStatus lets the coach mark a scheduled session completed once it has ended.
// Cancellation goes through the mentorship request instead.
func (s *SessionService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
	requestedStatus string,
) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, notFound("session", err)
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}

	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(role, actorID, session, nextStatus, s.now().UTC()); err != nil {
		return nil, err
	}

	updated, err := s.sessionRepo.UpdateStatusIfCurrent(ctx, sessionID, session.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return s.GetSession(ctx, actorID, role, updated.ID)
}

func canAccessSession(role string, actorID int64, session *models.Session) bool {
	if role == models.RoleTrainee {
		return session.TraineeID == actorID
	}
	if role == models.RoleCoach {
		return session.CoachID == actorID
	}
	return false
}

func normalizeRequestedStatus(status string) (models.SessionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "complete", "completed":
		return models.SessionStatusCompleted, nil
	case "cancel", "cancelled", "canceled":
		return models.SessionStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

func validateStatusTransition(
	role string,
	actorID int64,
	session *models.Session,
	nextStatus models.SessionStatus,
	now time.Time,
) error {
	if role != models.RoleCoach || session.CoachID != actorID {
		return ErrForbidden
	}
	switch nextStatus {
	case models.SessionStatusCompleted:
		if session.Status != models.SessionStatusScheduled {
			return ErrInvalidStateTransition
		}
		if session.End().After(now) {
			return ErrInvalidStateTransition
		}
		return nil
	default:
		return ErrInvalidStateTransition
	}
}
