package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

type PendingPaymentRepository struct {
	db DBTX
}

func NewPendingPaymentRepository(db DBTX) *PendingPaymentRepository {
	return &PendingPaymentRepository{db: db}
}

func scanPendingPayment(row pgx.Row) (*models.PendingPayment, error) {
	var hold models.PendingPayment
	if err := row.Scan(&hold.MentorshipRequestID, &hold.PaymentDueAt, &hold.CreatedAt); err != nil {
		return nil, err
	}
	hold.PaymentDueAt = hold.PaymentDueAt.UTC()
	return &hold, nil
}

func (r *PendingPaymentRepository) Create(
	ctx context.Context,
	requestID int64,
	dueAt time.Time,
) (*models.PendingPayment, error) {
	query := `
		INSERT INTO pending_payments (mentorship_request_id, payment_due_at)
		VALUES ($1, $2)
		RETURNING mentorship_request_id, payment_due_at, created_at
	`
	return scanPendingPayment(r.db.QueryRow(ctx, query, requestID, dueAt.UTC()))
}

func (r *PendingPaymentRepository) GetForUpdate(ctx context.Context, requestID int64) (*models.PendingPayment, error) {
	query := `
		SELECT mentorship_request_id, payment_due_at, created_at
		FROM pending_payments
		WHERE mentorship_request_id = $1
		FOR UPDATE
	`
	return scanPendingPayment(r.db.QueryRow(ctx, query, requestID))
}

// ListOverdue pages through holds due before now in request ID order, starting after
// afterRequestID.
func (r *PendingPaymentRepository) ListOverdue(
	ctx context.Context,
	now time.Time,
	afterRequestID int64,
	limit int,
) ([]models.PendingPayment, error) {
	query := `
		SELECT mentorship_request_id, payment_due_at, created_at
		FROM pending_payments
		WHERE payment_due_at < $1 AND mentorship_request_id > $2
		ORDER BY mentorship_request_id ASC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, now.UTC(), afterRequestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holds := make([]models.PendingPayment, 0)
	for rows.Next() {
		hold, err := scanPendingPayment(rows)
		if err != nil {
			return nil, err
		}
		holds = append(holds, *hold)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}

// Delete removes the request's hold. Deleting a missing hold is not an error.
func (r *PendingPaymentRepository) Delete(ctx context.Context, requestID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM pending_payments WHERE mentorship_request_id = $1", requestID)
	return err
}

func (r *PendingPaymentRepository) GetByRequestID(ctx context.Context, requestID int64) (*models.PendingPayment, error) {
	query := `
		SELECT mentorship_request_id, payment_due_at, created_at
		FROM pending_payments
		WHERE mentorship_request_id = $1
	`
	return scanPendingPayment(r.db.QueryRow(ctx, query, requestID))
}
