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

type requestCreator interface {
	CreateRequest(ctx context.Context, traineeID int64, input services.CreateRequestInput) (*services.CreateRequestResult, error)
}

type requestLifecycleService interface {
	Accept(ctx context.Context, coachID, requestID int64) (*models.MentorshipRequest, error)
	Reject(ctx context.Context, coachID, requestID int64) (*models.MentorshipRequest, error)
	Cancel(ctx context.Context, traineeID, requestID int64) (*models.MentorshipRequest, error)
	Get(ctx context.Context, actorID int64, role string, requestID int64) (*services.MentorshipRequestDetail, error)
}

type requestPaymentService interface {
	PayForRequest(ctx context.Context, traineeID, requestID int64) (*services.PaymentResult, error)
}

type MentorshipRequestHandler struct {
	creator  requestCreator
	requests requestLifecycleService
	payments requestPaymentService
	logger   *zap.Logger
}

func NewMentorshipRequestHandler(
	booking *services.BookingService,
	requests *services.MentorshipRequestService,
	payments *services.PaymentService,
	logger *zap.Logger,
) *MentorshipRequestHandler {
	return &MentorshipRequestHandler{
		creator:  booking,
		requests: requests,
		payments: payments,
		logger:   logger,
	}
}

type createMentorshipRequestBody struct {
	CoachID          flexID  `json:"coach_id" validate:"gt=0"`
	ServiceID        flexID  `json:"service_id" validate:"gt=0"`
	FirstSessionTime *string `json:"first_session_time"`
}

func (h *MentorshipRequestHandler) Create(c *fiber.Ctx) error {
	traineeID, _, handled, err := actorWithRole(c, models.RoleTrainee)
	if handled {
		return err
	}

	var body createMentorshipRequestBody
	if err := bindJSON(c, &body); err != nil {
		return mapServiceError(c, h.logger, err, "")
	}

	input := services.CreateRequestInput{
		CoachID:   body.CoachID.Int64(),
		ServiceID: body.ServiceID.Int64(),
	}
	if body.FirstSessionTime != nil && strings.TrimSpace(*body.FirstSessionTime) != "" {
		first, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.FirstSessionTime))
		if err != nil {
			return mapServiceError(c, h.logger, services.NewValidationError("first_session_time", "must be a valid RFC3339 timestamp"), "")
		}
		input.FirstSessionTime = &first
	}

	result, err := h.creator.CreateRequest(c.Context(), traineeID, input)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to create mentorship request")
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *MentorshipRequestHandler) Accept(c *fiber.Ctx) error {
	return h.changeStatus(c, models.RoleCoach, h.requests.Accept)
}

func (h *MentorshipRequestHandler) Reject(c *fiber.Ctx) error {
	return h.changeStatus(c, models.RoleCoach, h.requests.Reject)
}

func (h *MentorshipRequestHandler) Cancel(c *fiber.Ctx) error {
	return h.changeStatus(c, models.RoleTrainee, h.requests.Cancel)
}

func (h *MentorshipRequestHandler) changeStatus(
	c *fiber.Ctx,
	role string,
	apply func(ctx context.Context, actorID, requestID int64) (*models.MentorshipRequest, error),
) error {
	actorID, _, handled, err := actorWithRole(c, role)
	if handled {
		return err
	}
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return mapServiceError(c, h.logger, err, "")
	}

	req, err := apply(c.Context(), actorID, requestID)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to update mentorship request")
	}

	return c.JSON(fiber.Map{"request": req})
}

func (h *MentorshipRequestHandler) Pay(c *fiber.Ctx) error {
	traineeID, _, handled, err := actorWithRole(c, models.RoleTrainee)
	if handled {
		return err
	}
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return mapServiceError(c, h.logger, err, "")
	}

	result, err := h.payments.PayForRequest(c.Context(), traineeID, requestID)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to process payment")
	}

	return c.JSON(result)
}

func (h *MentorshipRequestHandler) Get(c *fiber.Ctx) error {
	actorID, role, handled, err := actorWithRole(c, models.RoleTrainee, models.RoleCoach)
	if handled {
		return err
	}
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return mapServiceError(c, h.logger, err, "")
	}

	detail, err := h.requests.Get(c.Context(), actorID, role, requestID)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to load mentorship request")
	}

	return c.JSON(detail)
}
