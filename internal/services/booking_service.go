package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ghada-Shaban/LinkUp/internal/mentorship"
	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/notify"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
	"github.com/Ghada-Shaban/LinkUp/internal/scheduling"
)

type CreateRequestInput struct {
	CoachID          int64
	ServiceID        int64
	FirstSessionTime *time.Time
}

type CreateRequestResult struct {
	Request  *models.MentorshipRequest `json:"request"`
	Sessions []models.Session          `json:"sessions"`
}

type BookPlanInput struct {
	CoachID             int64
	ServiceID           int64
	TraineeID           int64
	MentorshipRequestID int64
	StartDate           time.Time
	StartTime           models.TimeOfDay
}

type BookingService struct {
	db        *pgxpool.Pool
	services  *repository.ServiceRepository
	notifier  *Notifier
	lifecycle requestLifecycle
}

func NewBookingService(db *pgxpool.Pool, notifier *Notifier, paymentWindow time.Duration) *BookingService {
	return &BookingService{
		db:        db,
		services:  repository.NewServiceRepository(db),
		notifier:  notifier,
		lifecycle: newRequestLifecycle(paymentWindow, time.Now),
	}
}

func lockCoach(ctx context.Context, tx pgx.Tx, coachID int64) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", coachID)
	return err
}

// CreateRequest opens a mentorship request for the offering and reserves what the
// offering needs right away: a one-hour slot for one-to-one services, a seat and the
// next meeting for groups. Plan sessions are booked after the coach accepts.
func (s *BookingService) CreateRequest(
	ctx context.Context,
	traineeID int64,
	input CreateRequestInput,
) (*CreateRequestResult, error) {
	if traineeID <= 0 || traineeID == input.CoachID {
		return nil, ErrInvalidInput
	}
	service, err := coachService(ctx, s.services, input.CoachID, input.ServiceID)
	if err != nil {
		return nil, err
	}
	requestType := service.RequestType()

	var firstSession time.Time
	if requestType == models.RequestTypeOneToOne {
		if input.FirstSessionTime == nil {
			return nil, NewValidationError("first_session_time", "is required for this service")
		}
		firstSession = input.FirstSessionTime.UTC()
		if !firstSession.After(s.lifecycle.now()) {
			return nil, NewValidationError("first_session_time", "must be in the future")
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockCoach(ctx, tx, service.CoachID); err != nil {
		return nil, err
	}

	requestRepo := repository.NewMentorshipRequestRepository(tx)
	sessionRepo := repository.NewSessionRepository(tx)

	if _, err := requestRepo.FindActiveByTrainee(ctx, traineeID); err == nil {
		return nil, conflictf("existing active request")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	create := repository.CreateMentorshipRequestInput{
		TraineeID:       traineeID,
		CoachID:         service.CoachID,
		ServiceID:       service.ID,
		Type:            requestType,
		DurationMinutes: models.StandardSessionMinutes,
	}
	sessionInput := repository.CreateSessionInput{
		CoachID:         service.CoachID,
		TraineeID:       traineeID,
		ServiceID:       service.ID,
		DurationMinutes: models.StandardSessionMinutes,
		Kind:            models.SessionKindStandard,
	}
	withSession := false

	switch requestType {
	case models.RequestTypeOneToOne:
		if err := s.ensureSlotOpen(ctx, tx, service.CoachID, firstSession); err != nil {
			return nil, err
		}
		create.FirstSessionTime = &firstSession
		sessionInput.DateTime = firstSession
		withSession = true

	case models.RequestTypeGroup:
		groupRepo := repository.NewGroupMentorshipRepository(tx)
		group, err := groupRepo.GetByServiceIDForUpdate(ctx, service.ID)
		if err != nil {
			return nil, notFound("group mentorship", err)
		}
		if err := group.AddTrainee(traineeID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		if err := groupRepo.UpdateParticipants(ctx, group); err != nil {
			return nil, err
		}
		next := group.NextOccurrence(s.lifecycle.now())
		create.FirstSessionTime = &next
		create.Requestable = models.GroupRequestable{GroupMentorshipID: group.ID, ServiceID: service.ID}
		sessionInput.DateTime = next
		sessionInput.Kind = models.SessionKindGroup
		withSession = true

	case models.RequestTypePlan:
		plan, err := repository.NewServiceRepository(tx).GetPlanByServiceID(ctx, service.ID)
		if err != nil {
			return nil, notFound("mentorship plan", err)
		}
		create.Requestable = models.PlanRequestable{
			PlanID:       plan.ID,
			ServiceID:    service.ID,
			SessionCount: plan.SessionCount,
		}
	}

	req, err := requestRepo.Create(ctx, create)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("existing active request")
		}
		return nil, err
	}

	sessions := make([]models.Session, 0, 1)
	if withSession {
		sessionInput.MentorshipRequestID = &req.ID
		session, err := sessionRepo.Create(ctx, sessionInput)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, conflictf("slot already booked")
			}
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, []mentorship.Notify{{
		Template:    notify.TemplateRequestCreated,
		RecipientID: req.CoachID,
		Payload: map[string]any{
			"request_id": req.ID,
			"service_id": req.ServiceID,
			"type":       string(req.Type),
		},
	}})

	return &CreateRequestResult{Request: req, Sessions: sessions}, nil
}

// ensureSlotOpen requires start to be one of the computed open slots of its day.
func (s *BookingService) ensureSlotOpen(ctx context.Context, tx pgx.Tx, coachID int64, start time.Time) error {
	windows, err := repository.NewAvailabilityRepository(tx).ListByCoach(ctx, coachID)
	if err != nil {
		return err
	}
	day := startOfDay(start)
	booked, err := repository.NewSessionRepository(tx).ListHolding(ctx, coachID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	slot := models.TimeOfDayFrom(start)
	if start.Second() != 0 || start.Nanosecond() != 0 ||
		!slices.Contains(scheduling.OpenSlots(day, windows, sessionIntervals(booked, false)), slot) {
		return conflictf("requested slot %s is not available", start.Format(time.RFC3339))
	}
	return nil
}

// BookPlan creates every session of an accepted plan request in one transaction.
// Either all weekly sessions are created with their payment hold, or nothing is.
func (s *BookingService) BookPlan(ctx context.Context, input BookPlanInput) ([]models.Session, error) {
	if input.TraineeID <= 0 || input.MentorshipRequestID <= 0 {
		return nil, ErrInvalidInput
	}
	if !input.StartTime.Valid() || input.StartTime >= models.MinutesPerDay {
		return nil, NewValidationError("start_time", "must be a time of day")
	}

	service, err := coachService(ctx, s.services, input.CoachID, input.ServiceID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockCoach(ctx, tx, service.CoachID); err != nil {
		return nil, err
	}

	requestRepo := repository.NewMentorshipRequestRepository(tx)
	sessionRepo := repository.NewSessionRepository(tx)

	req, err := requestRepo.GetByIDForUpdate(ctx, input.MentorshipRequestID)
	if err != nil {
		return nil, notFound("mentorship request", err)
	}
	if req.TraineeID != input.TraineeID {
		return nil, ErrForbidden
	}
	if req.Status != models.RequestStatusAccepted {
		return nil, fmt.Errorf("%w: request must be accepted before booking", ErrInvalidStateTransition)
	}
	plan, ok := req.Plan()
	if !ok {
		return nil, NewValidationError("mentorship_request_id", "request is not a mentorship plan")
	}
	if plan.ServiceID != service.ID {
		return nil, NewValidationError("service_id", "plan does not belong to this service")
	}

	existing, err := sessionRepo.CountActiveByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	switch {
	case existing >= plan.SessionCount:
		return nil, conflictf("plan sessions are already booked")
	case existing > 0:
		return nil, conflictf("plan is partially booked (%d of %d sessions)", existing, plan.SessionCount)
	}

	start := input.StartTime.On(calendarDate(input.StartDate))
	if !start.After(s.lifecycle.now()) {
		return nil, NewValidationError("start_date", "must be in the future")
	}
	occurrences, err := scheduling.WeeklyOccurrences(start, plan.SessionCount)
	if err != nil {
		return nil, err
	}

	windows, err := repository.NewAvailabilityRepository(tx).ListByCoach(ctx, service.CoachID)
	if err != nil {
		return nil, err
	}
	last := occurrences[len(occurrences)-1]
	holding, err := sessionRepo.ListHolding(ctx, service.CoachID, occurrences[0], last.Add(scheduling.SlotLength))
	if err != nil {
		return nil, err
	}
	booked := sessionIntervals(holding, true)

	for week, occurrence := range occurrences {
		if !scheduling.Covered(windows, occurrence, scheduling.SlotLength) {
			return nil, conflictf("week %d (%s): coach is not available", week+1, occurrence.Format(time.DateOnly))
		}
		candidate := scheduling.Interval{Start: occurrence, End: occurrence.Add(scheduling.SlotLength)}
		if scheduling.ExactConflict(candidate, booked) {
			return nil, conflictf("week %d (%s): slot already booked", week+1, occurrence.Format(time.DateOnly))
		}
	}

	sessions := make([]models.Session, 0, len(occurrences))
	for _, occurrence := range occurrences {
		session, err := sessionRepo.Create(ctx, repository.CreateSessionInput{
			CoachID:             service.CoachID,
			TraineeID:           req.TraineeID,
			ServiceID:           service.ID,
			MentorshipRequestID: &req.ID,
			DateTime:            occurrence,
			DurationMinutes:     models.StandardSessionMinutes,
			Kind:                models.SessionKindStandard,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return nil, conflictf("slot %s already booked", occurrence.Format(time.RFC3339))
			}
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := requestRepo.SetPlanSchedule(ctx, req.ID, occurrences); err != nil {
		return nil, err
	}
	hold, err := repository.NewPendingPaymentRepository(tx).Create(
		ctx,
		req.ID,
		s.lifecycle.now().UTC().Add(s.lifecycle.paymentWindow),
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, []mentorship.Notify{{
		Template:    notify.TemplatePlanBooked,
		RecipientID: req.TraineeID,
		Payload: map[string]any{
			"request_id":     req.ID,
			"session_count":  len(sessions),
			"first_session":  occurrences[0].Format(dueAtLayout),
			"payment_due_at": hold.PaymentDueAt.Format(dueAtLayout),
		},
	}})

	return sessions, nil
}
