package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
)

type groupSeatService interface {
	Seats(ctx context.Context, groupID int64) (models.GroupSeats, error)
}

type GroupHandler struct {
	service groupSeatService
	logger  *zap.Logger
}

func NewGroupHandler(service *services.GroupService, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{service: service, logger: logger}
}

// Seats reports how many places are left in the group and whether it runs.
func (h *GroupHandler) Seats(c *fiber.Ctx) error {
	if _, _, handled, err := actorWithRole(c, models.RoleTrainee, models.RoleCoach); handled {
		return err
	}
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return mapServiceError(c, h.logger, err, "")
	}

	seats, err := h.service.Seats(c.Context(), groupID)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to load group seats")
	}

	return c.JSON(seats)
}
