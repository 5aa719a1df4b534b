package repository

import (
	"context"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

type ServiceRepository struct {
	db DBTX
}

func NewServiceRepository(db DBTX) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	query := `
		INSERT INTO services (coach_id, type, title, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, service.CoachID, string(service.Type), service.Title, service.Price).
		Scan(&service.ID, &service.CreatedAt)
}

func (r *ServiceRepository) GetByID(ctx context.Context, serviceID int64) (*models.Service, error) {
	query := `
		SELECT id, coach_id, type, title, price::float8, created_at
		FROM services
		WHERE id = $1
	`
	var service models.Service
	err := r.db.QueryRow(ctx, query, serviceID).Scan(
		&service.ID,
		&service.CoachID,
		&service.Type,
		&service.Title,
		&service.Price,
		&service.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepository) CreatePlan(ctx context.Context, plan *models.MentorshipPlan) error {
	query := `
		INSERT INTO mentorship_plans (service_id, title, session_count)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query, plan.ServiceID, plan.Title, plan.SessionCount).Scan(&plan.ID)
}

func (r *ServiceRepository) GetPlanByServiceID(ctx context.Context, serviceID int64) (*models.MentorshipPlan, error) {
	query := `
		SELECT id, service_id, title, session_count
		FROM mentorship_plans
		WHERE service_id = $1
	`
	var plan models.MentorshipPlan
	err := r.db.QueryRow(ctx, query, serviceID).Scan(&plan.ID, &plan.ServiceID, &plan.Title, &plan.SessionCount)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
