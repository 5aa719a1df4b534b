package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/scheduling"
)

type serviceReader interface {
	GetByID(ctx context.Context, serviceID int64) (*models.Service, error)
}

type windowReader interface {
	ListByCoach(ctx context.Context, coachID int64) ([]models.AvailabilityWindow, error)
}

type holdingSessionReader interface {
	ListHolding(ctx context.Context, coachID int64, from time.Time, to time.Time) ([]models.Session, error)
}

type activeRequestFinder interface {
	FindActiveByTrainee(ctx context.Context, traineeID int64) (*models.MentorshipRequest, error)
}

type SlotService struct {
	services     serviceReader
	availability windowReader
	sessions     holdingSessionReader
	requests     activeRequestFinder
}

func NewSlotService(
	services serviceReader,
	availability windowReader,
	sessions holdingSessionReader,
	requests activeRequestFinder,
) *SlotService {
	return &SlotService{
		services:     services,
		availability: availability,
		sessions:     sessions,
		requests:     requests,
	}
}

// AvailableDates lists every day of month with its availability for the coach.
func (s *SlotService) AvailableDates(
	ctx context.Context,
	traineeID int64,
	coachID int64,
	serviceID int64,
	month time.Time,
) ([]models.DateAvailability, error) {
	if _, err := coachService(ctx, s.services, coachID, serviceID); err != nil {
		return nil, err
	}
	if err := ensureTraineeFree(ctx, s.requests, traineeID, coachID, serviceID); err != nil {
		return nil, err
	}

	windows, err := s.availability.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	return scheduling.MonthAvailability(month, windows), nil
}

// AvailableSlots returns the open one-hour slot starts of the coach on date.
func (s *SlotService) AvailableSlots(
	ctx context.Context,
	traineeID int64,
	coachID int64,
	serviceID int64,
	date time.Time,
) ([]models.TimeOfDay, error) {
	if _, err := coachService(ctx, s.services, coachID, serviceID); err != nil {
		return nil, err
	}
	if err := ensureTraineeFree(ctx, s.requests, traineeID, coachID, serviceID); err != nil {
		return nil, err
	}

	windows, err := s.availability.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	day := startOfDay(date)
	if len(scheduling.WindowsOn(day.Weekday(), windows)) == 0 {
		return []models.TimeOfDay{}, nil
	}

	sessions, err := s.sessions.ListHolding(ctx, coachID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return scheduling.OpenSlots(day, windows, sessionIntervals(sessions, false)), nil
}

func coachService(ctx context.Context, services serviceReader, coachID, serviceID int64) (*models.Service, error) {
	if coachID <= 0 || serviceID <= 0 {
		return nil, ErrInvalidInput
	}
	service, err := services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, notFound("service", err)
	}
	if service.CoachID != coachID {
		return nil, ErrForbidden
	}
	return service, nil
}

// ensureTraineeFree blocks trainees that already hold an active request. The one
// exception is an accepted plan request for the same offering whose sessions are not
// booked yet, since booking them needs the slot queries.
func ensureTraineeFree(
	ctx context.Context,
	requests activeRequestFinder,
	traineeID int64,
	coachID int64,
	serviceID int64,
) error {
	active, err := requests.FindActiveByTrainee(ctx, traineeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if awaitingPlanBooking(active, coachID, serviceID) {
		return nil
	}
	return conflictf("existing active request")
}

func awaitingPlanBooking(req *models.MentorshipRequest, coachID, serviceID int64) bool {
	return req.Type == models.RequestTypePlan &&
		req.Status == models.RequestStatusAccepted &&
		req.CoachID == coachID &&
		req.ServiceID == serviceID &&
		len(req.PlanSchedule) == 0
}

func sessionIntervals(sessions []models.Session, standardOnly bool) []scheduling.Interval {
	intervals := make([]scheduling.Interval, 0, len(sessions))
	for _, session := range sessions {
		if !session.Holds() {
			continue
		}
		if standardOnly && session.Kind != models.SessionKindStandard {
			continue
		}
		intervals = append(intervals, scheduling.SessionInterval(session))
	}
	return intervals
}

// calendarDate keeps the calendar date of t and moves it to UTC midnight.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
