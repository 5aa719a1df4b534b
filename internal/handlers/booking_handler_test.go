package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
)

type stubSlotService struct {
	dates       []models.DateAvailability
	slots       []models.TimeOfDay
	err         error
	lastTrainee int64
	lastCoach   int64
	lastService int64
	lastTime    time.Time
}

func (s *stubSlotService) AvailableDates(_ context.Context, traineeID, coachID, serviceID int64, month time.Time) ([]models.DateAvailability, error) {
	s.lastTrainee, s.lastCoach, s.lastService, s.lastTime = traineeID, coachID, serviceID, month
	return s.dates, s.err
}

func (s *stubSlotService) AvailableSlots(_ context.Context, traineeID, coachID, serviceID int64, date time.Time) ([]models.TimeOfDay, error) {
	s.lastTrainee, s.lastCoach, s.lastService, s.lastTime = traineeID, coachID, serviceID, date
	return s.slots, s.err
}

type stubPlanBooking struct {
	sessions  []models.Session
	err       error
	lastInput services.BookPlanInput
	calls     int
}

func (s *stubPlanBooking) BookPlan(_ context.Context, input services.BookPlanInput) ([]models.Session, error) {
	s.calls++
	s.lastInput = input
	return s.sessions, s.err
}

func TestAvailableSlotsReturnsFormattedSlots(t *testing.T) {
	slots := &stubSlotService{slots: []models.TimeOfDay{models.NewTimeOfDay(9, 0), models.NewTimeOfDay(11, 0)}}
	handler := &BookingHandler{slots: slots}

	app := newActorApp("trainee", "42")
	app.Get("/coaches/:coachId/services/:serviceId/available-slots", handler.AvailableSlots)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/coaches/7/services/3/available-slots?date=2026-11-02", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Date != "2026-11-02" || len(body.Slots) != 2 || body.Slots[0] != "09:00" || body.Slots[1] != "11:00" {
		t.Fatalf("unexpected body %+v", body)
	}
	if slots.lastTrainee != 42 || slots.lastCoach != 7 || slots.lastService != 3 {
		t.Fatalf("unexpected ids %d/%d/%d", slots.lastTrainee, slots.lastCoach, slots.lastService)
	}
}

func TestAvailableSlotsRejectsMalformedDate(t *testing.T) {
	slots := &stubSlotService{}
	handler := &BookingHandler{slots: slots}

	app := newActorApp("trainee", "42")
	app.Get("/coaches/:coachId/services/:serviceId/available-slots", handler.AvailableSlots)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/coaches/7/services/3/available-slots?date=02-11-2026", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAvailableSlotsMapsExistingActiveRequestToConflict(t *testing.T) {
	slots := &stubSlotService{err: services.ErrConflict}
	handler := &BookingHandler{slots: slots}

	app := newActorApp("trainee", "42")
	app.Get("/coaches/:coachId/services/:serviceId/available-slots", handler.AvailableSlots)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/coaches/7/services/3/available-slots?date=2026-11-02", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestAvailableDatesParsesMonth(t *testing.T) {
	slots := &stubSlotService{dates: []models.DateAvailability{{Date: "2026-11-01", Status: models.DateUnavailable}}}
	handler := &BookingHandler{slots: slots}

	app := newActorApp("trainee", "42")
	app.Get("/coaches/:coachId/services/:serviceId/available-dates", handler.AvailableDates)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/coaches/7/services/3/available-dates?month=2026-11", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !slots.lastTime.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month %v", slots.lastTime)
	}
}

func TestAvailableDatesForbidsCoaches(t *testing.T) {
	handler := &BookingHandler{slots: &stubSlotService{}}

	app := newActorApp("coach", "7")
	app.Get("/coaches/:coachId/services/:serviceId/available-dates", handler.AvailableDates)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/coaches/7/services/3/available-dates?month=2026-11", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestBookPlanAcceptsStringIDs(t *testing.T) {
	booking := &stubPlanBooking{sessions: []models.Session{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}}
	handler := &BookingHandler{booking: booking}

	app := newActorApp("trainee", "42")
	app.Post("/coaches/:coachId/services/:serviceId/book", handler.BookPlan)

	req := httptest.NewRequest(http.MethodPost, "/coaches/7/services/3/book", strings.NewReader(`{
		"mentorship_request_id": "15",
		"start_date": "2026-11-02",
		"start_time": "09:00"
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	input := booking.lastInput
	if input.MentorshipRequestID != 15 || input.CoachID != 7 || input.ServiceID != 3 || input.TraineeID != 42 {
		t.Fatalf("unexpected input %+v", input)
	}
	if input.StartTime != models.NewTimeOfDay(9, 0) || input.StartDate.Format(time.DateOnly) != "2026-11-02" {
		t.Fatalf("unexpected start %v %v", input.StartDate, input.StartTime)
	}
}

func TestBookPlanReportsMissingFields(t *testing.T) {
	booking := &stubPlanBooking{}
	handler := &BookingHandler{booking: booking}

	app := newActorApp("trainee", "42")
	app.Post("/coaches/:coachId/services/:serviceId/book", handler.BookPlan)

	req := httptest.NewRequest(http.MethodPost, "/coaches/7/services/3/book", strings.NewReader(`{"mentorship_request_id": 15}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := body.Fields["start_date"]; !ok {
		t.Fatalf("expected start_date error, got %v", body.Fields)
	}
	if booking.calls != 0 {
		t.Fatal("service must not be called")
	}
}

func TestBookPlanMapsWeekConflict(t *testing.T) {
	booking := &stubPlanBooking{err: services.NewValidationError("start_date", "must be in the future")}
	handler := &BookingHandler{booking: booking}

	app := newActorApp("trainee", "42")
	app.Post("/coaches/:coachId/services/:serviceId/book", handler.BookPlan)

	req := httptest.NewRequest(http.MethodPost, "/coaches/7/services/3/book", strings.NewReader(`{
		"mentorship_request_id": 15,
		"start_date": "2020-01-06",
		"start_time": "09:00"
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
