package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Ghada-Shaban/LinkUp/internal/config"
	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
)

type availabilityService interface {
	ListAvailability(ctx context.Context, coachID int64) ([]models.AvailabilityWindow, error)
	SetAvailability(ctx context.Context, coachID int64, windows []models.AvailabilityWindow) ([]models.AvailabilityWindow, error)
}

type AvailabilityHandler struct {
	service availabilityService
	catalog *config.Catalog
	logger  *zap.Logger
}

func NewAvailabilityHandler(service *services.AvailabilityService, catalog *config.Catalog, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, catalog: catalog, logger: logger}
}

type availabilityWindowBody struct {
	DayOfWeek json.RawMessage `json:"day_of_week" validate:"required"`
	StartTime string          `json:"start_time" validate:"required"`
	EndTime   string          `json:"end_time" validate:"required"`
}

type setAvailabilityRequest struct {
	Windows []availabilityWindowBody `json:"windows" validate:"required,dive"`
}

func (h *AvailabilityHandler) List(c *fiber.Ctx) error {
	coachID, _, handled, err := actorWithRole(c, models.RoleCoach)
	if handled {
		return err
	}

	windows, err := h.service.ListAvailability(c.Context(), coachID)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to load availability")
	}

	return c.JSON(fiber.Map{"windows": windows})
}

func (h *AvailabilityHandler) Set(c *fiber.Ctx) error {
	coachID, _, handled, err := actorWithRole(c, models.RoleCoach)
	if handled {
		return err
	}

	var req setAvailabilityRequest
	if err := bindJSON(c, &req); err != nil {
		return mapServiceError(c, h.logger, err, "")
	}

	windows := make([]models.AvailabilityWindow, 0, len(req.Windows))
	invalid := &services.ValidationError{Fields: map[string]string{}}
	for i, body := range req.Windows {
		field := fmt.Sprintf("windows[%d]", i)
		day, err := h.parseWeekday(body.DayOfWeek)
		if err != nil {
			invalid.Fields[field+".day_of_week"] = err.Error()
			continue
		}
		start, err := models.ParseTimeOfDay(body.StartTime)
		if err != nil {
			invalid.Fields[field+".start_time"] = "must be formatted as HH:MM"
			continue
		}
		end, err := models.ParseTimeOfDay(body.EndTime)
		if err != nil {
			invalid.Fields[field+".end_time"] = "must be formatted as HH:MM"
			continue
		}
		windows = append(windows, models.AvailabilityWindow{
			CoachID:   coachID,
			DayOfWeek: day,
			StartTime: start,
			EndTime:   end,
		})
	}
	if len(invalid.Fields) > 0 {
		return mapServiceError(c, h.logger, invalid, "")
	}

	saved, err := h.service.SetAvailability(c.Context(), coachID, windows)
	if err != nil {
		return mapServiceError(c, h.logger, err, "Failed to save availability")
	}

	return c.JSON(fiber.Map{"windows": saved})
}

// parseWeekday accepts 0-6 (Sunday first) or a day name.
func (h *AvailabilityHandler) parseWeekday(raw json.RawMessage) (time.Weekday, error) {
	raw = bytes.TrimSpace(raw)
	var name string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &name); err != nil {
			return 0, fmt.Errorf("must be a weekday")
		}
	} else {
		name = string(raw)
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("must be between 0 and 6")
		}
		return time.Weekday(n), nil
	}
	if h.catalog == nil {
		return 0, fmt.Errorf("must be between 0 and 6")
	}
	day, err := h.catalog.ParseWeekday(name)
	if err != nil {
		return 0, fmt.Errorf("must be a weekday")
	}
	return day, nil
}
