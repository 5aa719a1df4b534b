package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

// requestSelect resolves the requestable through whichever product table it points at.
const requestSelect = `
	SELECT r.id, r.trainee_id, r.coach_id, r.service_id, r.type, r.status, r.first_session_time,
		r.duration_minutes, r.plan_schedule, r.requestable_type, r.requestable_id,
		COALESCE(p.service_id, g.service_id), p.session_count, r.paid_at, r.created_at, r.updated_at
	FROM mentorship_requests r
	LEFT JOIN mentorship_plans p ON r.requestable_type = 'mentorship_plan' AND p.id = r.requestable_id
	LEFT JOIN group_mentorships g ON r.requestable_type = 'group_mentorship' AND g.id = r.requestable_id
`

type CreateMentorshipRequestInput struct {
	TraineeID        int64
	CoachID          int64
	ServiceID        int64
	Type             models.RequestType
	FirstSessionTime *time.Time
	DurationMinutes  int
	Requestable      models.Requestable
}

type MentorshipRequestRepository struct {
	db DBTX
}

func NewMentorshipRequestRepository(db DBTX) *MentorshipRequestRepository {
	return &MentorshipRequestRepository{db: db}
}

func scanMentorshipRequest(row pgx.Row) (*models.MentorshipRequest, error) {
	var (
		req                  models.MentorshipRequest
		requestableType      *string
		requestableID        *int64
		requestableServiceID *int64
		planSessionCount     *int
	)
	if err := row.Scan(
		&req.ID,
		&req.TraineeID,
		&req.CoachID,
		&req.ServiceID,
		&req.Type,
		&req.Status,
		&req.FirstSessionTime,
		&req.DurationMinutes,
		&req.PlanSchedule,
		&requestableType,
		&requestableID,
		&requestableServiceID,
		&planSessionCount,
		&req.PaidAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}

	requestable, err := decodeRequestable(requestableType, requestableID, requestableServiceID, planSessionCount)
	if err != nil {
		return nil, fmt.Errorf("mentorship request %d: %w", req.ID, err)
	}
	req.Requestable = requestable

	if req.FirstSessionTime != nil {
		first := req.FirstSessionTime.UTC()
		req.FirstSessionTime = &first
	}
	for i := range req.PlanSchedule {
		req.PlanSchedule[i] = req.PlanSchedule[i].UTC()
	}
	return &req, nil
}

func decodeRequestable(kind *string, id *int64, serviceID *int64, sessionCount *int) (models.Requestable, error) {
	if kind == nil || id == nil {
		return nil, nil
	}
	if serviceID == nil {
		return nil, fmt.Errorf("%s %d no longer exists", *kind, *id)
	}
	switch *kind {
	case models.RequestableTypePlan:
		count := models.DefaultPlanSessionCount
		if sessionCount != nil {
			count = *sessionCount
		}
		return models.PlanRequestable{PlanID: *id, ServiceID: *serviceID, SessionCount: count}, nil
	case models.RequestableTypeGroup:
		return models.GroupRequestable{GroupMentorshipID: *id, ServiceID: *serviceID}, nil
	default:
		return nil, fmt.Errorf("unknown requestable type %q", *kind)
	}
}

// Create inserts a pending request. A trainee who already holds an active request
// hits the partial unique index.
func (r *MentorshipRequestRepository) Create(
	ctx context.Context,
	input CreateMentorshipRequestInput,
) (*models.MentorshipRequest, error) {
	var (
		requestableType *string
		requestableID   *int64
	)
	if input.Requestable != nil {
		kind := input.Requestable.RequestableType()
		id := input.Requestable.RequestableID()
		requestableType, requestableID = &kind, &id
	}
	var firstSessionTime *time.Time
	if input.FirstSessionTime != nil {
		first := input.FirstSessionTime.UTC()
		firstSessionTime = &first
	}

	query := `
		INSERT INTO mentorship_requests (
			trainee_id, coach_id, service_id, type, status, first_session_time,
			duration_minutes, plan_schedule, requestable_type, requestable_id
		)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, '[]'::jsonb, $7, $8)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRow(
		ctx,
		query,
		input.TraineeID,
		input.CoachID,
		input.ServiceID,
		string(input.Type),
		firstSessionTime,
		input.DurationMinutes,
		requestableType,
		requestableID,
	).Scan(&id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *MentorshipRequestRepository) GetByID(ctx context.Context, requestID int64) (*models.MentorshipRequest, error) {
	return scanMentorshipRequest(r.db.QueryRow(ctx, requestSelect+` WHERE r.id = $1`, requestID))
}

func (r *MentorshipRequestRepository) GetByIDForUpdate(ctx context.Context, requestID int64) (*models.MentorshipRequest, error) {
	return scanMentorshipRequest(r.db.QueryRow(ctx, requestSelect+` WHERE r.id = $1 FOR UPDATE OF r`, requestID))
}

// FindActiveByTrainee returns pgx.ErrNoRows when the trainee has no active request.
func (r *MentorshipRequestRepository) FindActiveByTrainee(ctx context.Context, traineeID int64) (*models.MentorshipRequest, error) {
	query := requestSelect + `
		WHERE r.trainee_id = $1
		  AND r.status IN ('pending', 'accepted')
		  AND r.paid_at IS NULL
		ORDER BY r.id DESC
		LIMIT 1
	`
	return scanMentorshipRequest(r.db.QueryRow(ctx, query, traineeID))
}

func (r *MentorshipRequestRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	requestID int64,
	currentStatus models.RequestStatus,
	nextStatus models.RequestStatus,
) (*models.MentorshipRequest, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		UPDATE mentorship_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING id
	`, requestID, string(currentStatus), string(nextStatus)).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *MentorshipRequestRepository) SetPlanSchedule(
	ctx context.Context,
	requestID int64,
	schedule []time.Time,
) error {
	if len(schedule) == 0 {
		return fmt.Errorf("empty plan schedule")
	}
	utc := make([]time.Time, len(schedule))
	for i, occurrence := range schedule {
		utc[i] = occurrence.UTC()
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE mentorship_requests
		SET first_session_time = $2, plan_schedule = $3, updated_at = NOW()
		WHERE id = $1
	`, requestID, utc[0], utc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MentorshipRequestRepository) MarkPaid(ctx context.Context, requestID int64, paidAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE mentorship_requests
		SET paid_at = $2, updated_at = NOW()
		WHERE id = $1 AND paid_at IS NULL
	`, requestID, paidAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
