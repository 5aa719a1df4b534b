package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
)

type slotQueryService interface {
	AvailableDates(ctx context.Context, traineeID, coachID, serviceID int64, month time.Time) ([]models.DateAvailability, error)
	AvailableSlots(ctx context.Context, traineeID, coachID, serviceID int64, date time.Time) ([]models.TimeOfDay, error)
}

type planBookingService interface {
	BookPlan(ctx context.Context, input services.BookPlanInput) ([]models.Session, error)
}

type BookingHandler struct {
	slots   slotQueryService
	booking planBookingService
	logger  *zap.Logger
}

func NewBookingHandler(slots *services.SlotService, booking *services.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{slots: slots, booking: booking, logger: logger}
}

type bookPlanRequest struct {
	MentorshipRequestID flexID `json:"mentorship_request_id" validate:"gt=0"`
	StartDate           string `json:"start_date" validate:"required,datetime=2006-01-02"`
	StartTime           string `json:"start_time" validate:"required"`
}

func (h *BookingHandler) AvailableDates(c *fiber.Ctx) error {
	traineeID, _, handled, err := actorWithRole(c, models.RoleTrainee)
	if handled {
		return err
	}
	coachID, serviceID, err := coachServiceParams(c)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to load available dates")
	}

	month, err := time.Parse("2006-01", strings.TrimSpace(c.Query("month")))
	if err != nil {
		return mapServiceError(c, h.logger, services.NewValidationError("month", "must be formatted as YYYY-MM"), "")
	}

	dates, err := h.slots.AvailableDates(c.Context(), traineeID, coachID, serviceID, month)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to load available dates")
	}

	return c.JSON(fiber.Map{"dates": dates})
}

func (h *BookingHandler) AvailableSlots(c *fiber.Ctx) error {
	traineeID, _, handled, err := actorWithRole(c, models.RoleTrainee)
	if handled {
		return err
	}
	coachID, serviceID, err := coachServiceParams(c)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to load available slots")
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(c.Query("date")))
	if err != nil {
		return mapServiceError(c, h.logger, services.NewValidationError("date", "must be formatted as YYYY-MM-DD"), "")
	}

	slots, err := h.slots.AvailableSlots(c.Context(), traineeID, coachID, serviceID, date)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to load available slots")
	}

	return c.JSON(fiber.Map{"date": date.Format(time.DateOnly), "slots": slots})
}

func (h *BookingHandler) BookPlan(c *fiber.Ctx) error {
	traineeID, _, handled, err := actorWithRole(c, models.RoleTrainee)
	if handled {
		return err
	}
	coachID, serviceID, err := coachServiceParams(c)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to book plan")
	}

	var req bookPlanRequest
	if err := bindJSON(c, &req); err != nil {
		return mapServiceError(c, h.logger, err, "")
	}
	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return mapServiceError(c, h.logger, services.NewValidationError("start_date", "must be formatted as YYYY-MM-DD"), "")
	}
	startTime, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return mapServiceError(c, h.logger, services.NewValidationError("start_time", "must be formatted as HH:MM"), "")
	}

	sessions, err := h.booking.BookPlan(c.Context(), services.BookPlanInput{
		CoachID:             coachID,
		ServiceID:           serviceID,
		TraineeID:           traineeID,
		MentorshipRequestID: req.MentorshipRequestID.Int64(),
		StartDate:           startDate,
		StartTime:           startTime,
	})
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to book plan")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sessions": sessions})
}

func coachServiceParams(c *fiber.Ctx) (int64, int64, error) {
	coachID, err := parseIDParam(c, "coachId")
	if err != nil {
		return 0, 0, err
	}
	serviceID, err := parseIDParam(c, "serviceId")
	if err != nil {
		return 0, 0, err
	}
	return coachID, serviceID, nil
}
