package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

const paymentColumns = `id, mentorship_request_id, trainee_id, coach_id, amount, status, provider_ref, created_at`

type CreatePaymentInput struct {
	MentorshipRequestID int64
	TraineeID           int64
	CoachID             int64
	Amount              float64
	Status              string
	ProviderRef         string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var payment models.Payment
	if err := row.Scan(
		&payment.ID,
		&payment.MentorshipRequestID,
		&payment.TraineeID,
		&payment.CoachID,
		&payment.Amount,
		&payment.Status,
		&payment.ProviderRef,
		&payment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	query := `
		INSERT INTO payments (mentorship_request_id, trainee_id, coach_id, amount, status, provider_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + paymentColumns

	return scanPayment(r.db.QueryRow(
		ctx,
		query,
		input.MentorshipRequestID,
		input.TraineeID,
		input.CoachID,
		input.Amount,
		input.Status,
		input.ProviderRef,
	))
}

func (r *PaymentRepository) GetLatestByRequestID(ctx context.Context, requestID int64) (*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE mentorship_request_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	return scanPayment(r.db.QueryRow(ctx, query, requestID))
}

// ListByRequestIDs returns the latest payment attempt per request.
func (r *PaymentRepository) ListByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64]models.Payment, error) {
	payments := make(map[int64]models.Payment, len(requestIDs))
	if len(requestIDs) == 0 {
		return payments, nil
	}

	query := `
		SELECT DISTINCT ON (mentorship_request_id) ` + paymentColumns + `
		FROM payments
		WHERE mentorship_request_id = ANY($1)
		ORDER BY mentorship_request_id, id DESC
	`

	rows, err := r.db.Query(ctx, query, requestIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments[payment.MentorshipRequestID] = *payment
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}
