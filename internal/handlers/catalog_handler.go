package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Ghada-Shaban/LinkUp/internal/config"
	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
)

// catalogResponse adds the booking rules the server actually enforces to the
// enumerations loaded from the catalog file.
type catalogResponse struct {
	*config.Catalog
	SlotMinutes          int `json:"slot_minutes"`
	PlanSessionCount     int `json:"plan_session_count"`
	PaymentWindowMinutes int `json:"payment_window_minutes"`
}

type CatalogHandler struct {
	response catalogResponse
}

func NewCatalogHandler(catalog *config.Catalog, paymentWindow time.Duration) *CatalogHandler {
	if paymentWindow <= 0 {
		paymentWindow = services.DefaultPaymentWindow
	}
	return &CatalogHandler{response: catalogResponse{
		Catalog:              catalog,
		SlotMinutes:          models.StandardSessionMinutes,
		PlanSessionCount:     models.DefaultPlanSessionCount,
		PaymentWindowMinutes: int(paymentWindow / time.Minute),
	}}
}

func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.response)
}
