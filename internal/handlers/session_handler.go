package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
)

type SessionHandler struct {
	service sessionApplicationService
	logger  *zap.Logger
}

type sessionApplicationService interface {
	ListSessions(ctx context.Context, actorID int64, role string, filter repository.SessionListFilter) ([]models.SessionDetail, error)
	GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.SessionDetail, error)
	UpdateStatus(ctx context.Context, actorID int64, role string, sessionID int64, requestedStatus string) (*models.SessionDetail, error)
}

func NewSessionHandler(service *services.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{service: service, logger: logger}
}

type updateSessionStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	userID, role, handled, err := actorWithRole(c, models.RoleTrainee, models.RoleCoach)
	if handled {
		return err
	}

	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}
	status := strings.TrimSpace(c.Query("status"))
	switch models.SessionStatus(status) {
	case "", models.SessionStatusPending, models.SessionStatusScheduled,
		models.SessionStatusCompleted, models.SessionStatusCancelled:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be pending, scheduled, completed or cancelled"})
	}

	sessions, err := h.service.ListSessions(c.Context(), userID, role, repository.SessionListFilter{
		Status:    status,
		Timeframe: timeframe,
	})
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to process session request")
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	userID, role, handled, err := actorWithRole(c, models.RoleTrainee, models.RoleCoach)
	if handled {
		return err
	}

	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), userID, role, sessionID)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to process session request")
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, role, handled, err := actorWithRole(c, models.RoleTrainee, models.RoleCoach)
	if handled {
		return err
	}

	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req updateSessionStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return mapServiceError(c, h.logger, err, "")
	}

	session, err := h.service.UpdateStatus(c.Context(), userID, role, sessionID, req.Status)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to process session request")
	}

	return c.JSON(fiber.Map{"session": session})
}
