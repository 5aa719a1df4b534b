package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ghada-Shaban/LinkUp/internal/config"
	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

type stubAvailabilityService struct {
	windows   []models.AvailabilityWindow
	err       error
	lastCoach int64
	lastSet   []models.AvailabilityWindow
	setCalls  int
}

func (s *stubAvailabilityService) ListAvailability(_ context.Context, coachID int64) ([]models.AvailabilityWindow, error) {
	s.lastCoach = coachID
	return s.windows, s.err
}

func (s *stubAvailabilityService) SetAvailability(_ context.Context, coachID int64, windows []models.AvailabilityWindow) ([]models.AvailabilityWindow, error) {
	s.lastCoach = coachID
	s.lastSet = windows
	s.setCalls++
	return windows, s.err
}

func newAvailabilityTestHandler(t *testing.T, service *stubAvailabilityService) *AvailabilityHandler {
	t.Helper()
	catalog, err := config.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return &AvailabilityHandler{service: service, catalog: catalog}
}

func TestSetAvailabilityAcceptsNumbersAndNames(t *testing.T) {
	service := &stubAvailabilityService{}
	handler := newAvailabilityTestHandler(t, service)

	app := newActorApp("coach", "7")
	app.Put("/availability", handler.Set)

	req := httptest.NewRequest(http.MethodPut, "/availability", strings.NewReader(`{"windows": [
		{"day_of_week": 1, "start_time": "09:00", "end_time": "12:00"},
		{"day_of_week": "Wednesday", "start_time": "14:00", "end_time": "15:30"}
	]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastCoach != 7 || len(service.lastSet) != 2 {
		t.Fatalf("unexpected call %d %+v", service.lastCoach, service.lastSet)
	}
	if service.lastSet[0].DayOfWeek != time.Monday || service.lastSet[1].DayOfWeek != time.Wednesday {
		t.Fatalf("unexpected days %+v", service.lastSet)
	}
	if service.lastSet[1].EndTime != models.NewTimeOfDay(15, 30) {
		t.Fatalf("unexpected end %v", service.lastSet[1].EndTime)
	}
}

func TestSetAvailabilityReportsBadEntries(t *testing.T) {
	service := &stubAvailabilityService{}
	handler := newAvailabilityTestHandler(t, service)

	app := newActorApp("coach", "7")
	app.Put("/availability", handler.Set)

	req := httptest.NewRequest(http.MethodPut, "/availability", strings.NewReader(`{"windows": [
		{"day_of_week": 9, "start_time": "09:00", "end_time": "12:00"},
		{"day_of_week": "Monday", "start_time": "late", "end_time": "12:00"}
	]}`))
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
	if _, ok := body.Fields["windows[0].day_of_week"]; !ok {
		t.Fatalf("expected day error, got %v", body.Fields)
	}
	if _, ok := body.Fields["windows[1].start_time"]; !ok {
		t.Fatalf("expected start error, got %v", body.Fields)
	}
	if service.setCalls != 0 {
		t.Fatal("service must not be called")
	}
}

func TestListAvailabilityRequiresCoach(t *testing.T) {
	handler := newAvailabilityTestHandler(t, &stubAvailabilityService{})

	app := newActorApp("trainee", "42")
	app.Get("/availability", handler.List)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/availability", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCatalogHandlerServesCatalog(t *testing.T) {
	catalog, err := config.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	handler := NewCatalogHandler(catalog, 90*time.Minute)

	app := newActorApp("trainee", "42")
	app.Get("/catalog", handler.Get)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/catalog", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		ServiceTypes []struct {
			Value       string `json:"value"`
			RequestType string `json:"request_type"`
		} `json:"service_types"`
		SlotMinutes          int `json:"slot_minutes"`
		PlanSessionCount     int `json:"plan_session_count"`
		PaymentWindowMinutes int `json:"payment_window_minutes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.ServiceTypes) != 4 || body.ServiceTypes[2].RequestType != "plan" {
		t.Fatalf("unexpected catalog %+v", body.ServiceTypes)
	}
	if body.SlotMinutes != 60 || body.PlanSessionCount != 4 {
		t.Fatalf("unexpected booking rules %+v", body)
	}
	if body.PaymentWindowMinutes != 90 {
		t.Fatalf("expected the configured 90 minute payment window, got %d", body.PaymentWindowMinutes)
	}
}

func TestCatalogHandlerDefaultsPaymentWindow(t *testing.T) {
	handler := NewCatalogHandler(&config.Catalog{}, 0)
	if handler.response.PaymentWindowMinutes != 24*60 {
		t.Fatalf("expected 1440 minutes, got %d", handler.response.PaymentWindowMinutes)
	}
}
