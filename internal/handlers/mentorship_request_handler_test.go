package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
)

type stubRequestCreator struct {
	result      *services.CreateRequestResult
	err         error
	lastTrainee int64
	lastInput   services.CreateRequestInput
}

func (s *stubRequestCreator) CreateRequest(_ context.Context, traineeID int64, input services.CreateRequestInput) (*services.CreateRequestResult, error) {
	s.lastTrainee = traineeID
	s.lastInput = input
	return s.result, s.err
}

type stubRequestLifecycle struct {
	result     *models.MentorshipRequest
	detail     *services.MentorshipRequestDetail
	err        error
	lastAction string
	lastActor  int64
	lastID     int64
}

func (s *stubRequestLifecycle) record(action string, actorID, requestID int64) (*models.MentorshipRequest, error) {
	s.lastAction, s.lastActor, s.lastID = action, actorID, requestID
	return s.result, s.err
}

func (s *stubRequestLifecycle) Accept(_ context.Context, coachID, requestID int64) (*models.MentorshipRequest, error) {
	return s.record("accept", coachID, requestID)
}

func (s *stubRequestLifecycle) Reject(_ context.Context, coachID, requestID int64) (*models.MentorshipRequest, error) {
	return s.record("reject", coachID, requestID)
}

func (s *stubRequestLifecycle) Cancel(_ context.Context, traineeID, requestID int64) (*models.MentorshipRequest, error) {
	return s.record("cancel", traineeID, requestID)
}

func (s *stubRequestLifecycle) Get(_ context.Context, actorID int64, _ string, requestID int64) (*services.MentorshipRequestDetail, error) {
	s.lastAction, s.lastActor, s.lastID = "get", actorID, requestID
	return s.detail, s.err
}

type stubRequestPayment struct {
	result *services.PaymentResult
	err    error
}

func (s *stubRequestPayment) PayForRequest(_ context.Context, _, _ int64) (*services.PaymentResult, error) {
	return s.result, s.err
}

func TestCreateMentorshipRequestParsesBody(t *testing.T) {
	creator := &stubRequestCreator{result: &services.CreateRequestResult{
		Request: &models.MentorshipRequest{ID: 5, Status: models.RequestStatusPending},
	}}
	handler := &MentorshipRequestHandler{creator: creator}

	app := newActorApp("trainee", "42")
	app.Post("/mentorship-requests", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/mentorship-requests", strings.NewReader(`{
		"coach_id": "7",
		"service_id": 3,
		"first_session_time": "2026-11-02T09:00:00Z"
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
	if creator.lastTrainee != 42 || creator.lastInput.CoachID != 7 || creator.lastInput.ServiceID != 3 {
		t.Fatalf("unexpected input %d %+v", creator.lastTrainee, creator.lastInput)
	}
	want := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	if creator.lastInput.FirstSessionTime == nil || !creator.lastInput.FirstSessionTime.Equal(want) {
		t.Fatalf("unexpected first session time %v", creator.lastInput.FirstSessionTime)
	}
}

func TestCreateMentorshipRequestRejectsNonNumericID(t *testing.T) {
	handler := &MentorshipRequestHandler{creator: &stubRequestCreator{}}

	app := newActorApp("trainee", "42")
	app.Post("/mentorship-requests", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/mentorship-requests", strings.NewReader(`{"coach_id": "seven", "service_id": 3}`))
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

func TestCreateMentorshipRequestMapsExistingActiveRequest(t *testing.T) {
	creator := &stubRequestCreator{err: fmt.Errorf("%w: existing active request", services.ErrConflict)}
	handler := &MentorshipRequestHandler{creator: creator}

	app := newActorApp("trainee", "42")
	app.Post("/mentorship-requests", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/mentorship-requests", strings.NewReader(`{"coach_id": 7, "service_id": 3}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["error"] != "conflict: existing active request" {
		t.Fatalf("unexpected error %q", body["error"])
	}
}

func TestAcceptRequiresCoach(t *testing.T) {
	lifecycle := &stubRequestLifecycle{}
	handler := &MentorshipRequestHandler{requests: lifecycle}

	app := newActorApp("trainee", "42")
	app.Put("/mentorship-requests/:id/accept", handler.Accept)

	resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/mentorship-requests/5/accept", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if lifecycle.lastAction != "" {
		t.Fatal("service must not be called")
	}
}

func TestAcceptForwardsCoachAndRequest(t *testing.T) {
	lifecycle := &stubRequestLifecycle{result: &models.MentorshipRequest{ID: 5, Status: models.RequestStatusAccepted}}
	handler := &MentorshipRequestHandler{requests: lifecycle}

	app := newActorApp("coach", "7")
	app.Put("/mentorship-requests/:id/accept", handler.Accept)

	resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/mentorship-requests/5/accept", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if lifecycle.lastAction != "accept" || lifecycle.lastActor != 7 || lifecycle.lastID != 5 {
		t.Fatalf("unexpected call %s %d %d", lifecycle.lastAction, lifecycle.lastActor, lifecycle.lastID)
	}
}

func TestCancelMapsInvalidTransition(t *testing.T) {
	lifecycle := &stubRequestLifecycle{err: services.ErrInvalidStateTransition}
	handler := &MentorshipRequestHandler{requests: lifecycle}

	app := newActorApp("trainee", "42")
	app.Post("/mentorship-requests/:id/cancel", handler.Cancel)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/mentorship-requests/5/cancel", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if lifecycle.lastAction != "cancel" {
		t.Fatalf("expected cancel, got %q", lifecycle.lastAction)
	}
}

func TestPayMapsDeclinedPayment(t *testing.T) {
	handler := &MentorshipRequestHandler{payments: &stubRequestPayment{err: services.ErrPaymentDeclined}}

	app := newActorApp("trainee", "42")
	app.Post("/mentorship-requests/:id/pay", handler.Pay)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/mentorship-requests/5/pay", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.StatusCode)
	}
}

func TestGetMentorshipRequestRejectsInvalidID(t *testing.T) {
	lifecycle := &stubRequestLifecycle{}
	handler := &MentorshipRequestHandler{requests: lifecycle}

	app := newActorApp("coach", "7")
	app.Get("/mentorship-requests/:id", handler.Get)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/mentorship-requests/abc", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if lifecycle.lastAction != "" {
		t.Fatal("service must not be called")
	}
}
