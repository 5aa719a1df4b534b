package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

const sessionColumns = `id, coach_id, trainee_id, service_id, mentorship_request_id, date_time,
	duration_minutes, status, kind, meeting_link, created_at, updated_at`

type CreateSessionInput struct {
	CoachID             int64
	TraineeID           int64
	ServiceID           int64
	MentorshipRequestID *int64
	DateTime            time.Time
	DurationMinutes     int
	Kind                models.SessionKind
}

type SessionListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.CoachID,
		&session.TraineeID,
		&session.ServiceID,
		&session.MentorshipRequestID,
		&session.DateTime,
		&session.DurationMinutes,
		&session.Status,
		&session.Kind,
		&session.MeetingLink,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	session.DateTime = session.DateTime.UTC()
	return &session, nil
}

func collectSessions(rows pgx.Rows) ([]models.Session, error) {
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Create inserts a pending session. A second non-cancelled standard session of the
// coach at the same start fails with a unique violation.
func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	kind := input.Kind
	if kind == "" {
		kind = models.SessionKindStandard
	}
	query := `
		INSERT INTO sessions (coach_id, trainee_id, service_id, mentorship_request_id, date_time, duration_minutes, status, kind)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)
		RETURNING ` + sessionColumns

	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.CoachID,
		input.TraineeID,
		input.ServiceID,
		input.MentorshipRequestID,
		input.DateTime.UTC(),
		input.DurationMinutes,
		kind,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.Session, error) {
	actorColumn := "trainee_id"
	if filter.Role == models.RoleCoach {
		actorColumn = "coach_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(date_time + (duration_minutes * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(date_time + (duration_minutes * INTERVAL '1 minute')) <= NOW()",
		)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY date_time ASC, id ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListHolding returns the pending or scheduled sessions of a coach that intersect [from, to).
func (r *SessionRepository) ListHolding(
	ctx context.Context,
	coachID int64,
	from time.Time,
	to time.Time,
) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE coach_id = $1
		  AND status IN ('pending', 'scheduled')
		  AND date_time < $3
		  AND (date_time + (duration_minutes * INTERVAL '1 minute')) > $2
		ORDER BY date_time ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, coachID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *SessionRepository) ListByRequest(ctx context.Context, requestID int64) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE mentorship_request_id = $1
		ORDER BY date_time ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID int64,
	currentStatus models.SessionStatus,
	nextStatus models.SessionStatus,
) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus))
}

// Schedule confirms a pending session and attaches its meeting link.
func (r *SessionRepository) Schedule(
	ctx context.Context,
	sessionID int64,
	meetingLink string,
) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'scheduled', meeting_link = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, sessionID, meetingLink))
}

// CountActiveByRequest counts the request's sessions that are not cancelled.
func (r *SessionRepository) CountActiveByRequest(ctx context.Context, requestID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions
		WHERE mentorship_request_id = $1 AND status <> 'cancelled'
	`
	var count int
	if err := r.db.QueryRow(ctx, query, requestID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepository) CancelByRequest(ctx context.Context, requestID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET status = 'cancelled', updated_at = NOW()
		WHERE mentorship_request_id = $1 AND status IN ('pending', 'scheduled')
	`, requestID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeletePendingByRequest(ctx context.Context, requestID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sessions
		WHERE mentorship_request_id = $1 AND status = 'pending'
	`, requestID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
