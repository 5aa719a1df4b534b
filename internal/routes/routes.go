package routes

import (
	"errors"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Ghada-Shaban/LinkUp/internal/config"
	"github.com/Ghada-Shaban/LinkUp/internal/handlers"
	"github.com/Ghada-Shaban/LinkUp/internal/middleware"
	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/notify"
	"github.com/Ghada-Shaban/LinkUp/internal/payment"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
	pushws "github.com/Ghada-Shaban/LinkUp/internal/websocket"
)

type Dependencies struct {
	Config  *config.Config
	Catalog *config.Catalog
	DB      *pgxpool.Pool
	Hub     *pushws.Hub
	Sender  notify.Sender
	Gateway payment.Gateway
	Logger  *zap.Logger
}

func RegisterRoutes(app *fiber.App, deps Dependencies) error {
	if deps.Config == nil || deps.Config.JWTSecret == "" {
		return errors.New("routes: config with JWT secret is required")
	}
	if deps.Catalog == nil {
		return errors.New("routes: catalog is required")
	}
	if deps.Hub == nil {
		return errors.New("routes: push hub is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = payment.NewPlaceholderGateway()
	}
	sender := deps.Sender
	if sender == nil {
		sender = notify.NewLogSender(logger)
	}
	cfg := deps.Config
	db := deps.DB

	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	requestRepo := repository.NewMentorshipRequestRepository(db)

	notifier := services.NewNotifier(sender, userRepo, logger.Named("notifier"))
	slotService := services.NewSlotService(serviceRepo, availabilityRepo, sessionRepo, requestRepo)
	bookingService := services.NewBookingService(db, notifier, cfg.PaymentWindow)
	requestService := services.NewMentorshipRequestService(db, notifier, cfg.PaymentWindow)
	paymentService := services.NewPaymentService(db, gateway, notifier, cfg.MeetingBaseURL)
	availabilityService := services.NewAvailabilityService(db)
	sessionService := services.NewSessionService(db, sessionRepo, paymentRepo)
	groupService := services.NewGroupService(db)

	bookingHandler := handlers.NewBookingHandler(slotService, bookingService, logger)
	requestHandler := handlers.NewMentorshipRequestHandler(bookingService, requestService, paymentService, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, deps.Catalog, logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, logger)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog, cfg.PaymentWindow)
	groupHandler := handlers.NewGroupHandler(groupService, logger)
	notificationHandler := handlers.NewNotificationHandler(deps.Hub, cfg.JWTSecret)

	api := app.Group("/api")

	api.Use("/v1/ws", notificationHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(notificationHandler.HandleWebSocket))

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))
	trainee := middleware.RequireRole(models.RoleTrainee)
	coach := middleware.RequireRole(models.RoleCoach)

	authProtected.Get("/catalog", catalogHandler.Get)

	coaches := authProtected.Group("/coaches/:coachId/services/:serviceId", trainee)
	coaches.Get("/available-dates", bookingHandler.AvailableDates)
	coaches.Get("/available-slots", bookingHandler.AvailableSlots)
	coaches.Post("/book", bookingHandler.BookPlan)

	availability := authProtected.Group("/availability", coach)
	availability.Get("", availabilityHandler.List)
	availability.Put("", availabilityHandler.Set)

	requests := authProtected.Group("/mentorship-requests")
	requests.Post("", trainee, requestHandler.Create)
	requests.Get("/:id", requestHandler.Get)
	requests.Put("/:id/accept", coach, requestHandler.Accept)
	requests.Put("/:id/reject", coach, requestHandler.Reject)
	requests.Post("/:id/cancel", trainee, requestHandler.Cancel)
	requests.Post("/:id/pay", trainee, requestHandler.Pay)

	authProtected.Get("/group-mentorships/:id/seats", groupHandler.Seats)

	sessions := authProtected.Group("/sessions")
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Put("/:id/status", sessionHandler.UpdateStatus)

	return nil
}
