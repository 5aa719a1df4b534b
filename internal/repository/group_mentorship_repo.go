package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

const groupColumns = `id, service_id, day, start_minute, max_participants, current_participants, trainee_ids, is_active`

type GroupMentorshipRepository struct {
	db DBTX
}

func NewGroupMentorshipRepository(db DBTX) *GroupMentorshipRepository {
	return &GroupMentorshipRepository{db: db}
}

func scanGroup(row pgx.Row) (*models.GroupMentorship, error) {
	var group models.GroupMentorship
	if err := row.Scan(
		&group.ID,
		&group.ServiceID,
		&group.Day,
		&group.StartTime,
		&group.MaxParticipants,
		&group.CurrentParticipants,
		&group.TraineeIDs,
		&group.IsActive,
	); err != nil {
		return nil, err
	}
	if group.TraineeIDs == nil {
		group.TraineeIDs = []int64{}
	}
	return &group, nil
}

func (r *GroupMentorshipRepository) Create(ctx context.Context, group *models.GroupMentorship) error {
	if group.TraineeIDs == nil {
		group.TraineeIDs = []int64{}
	}
	query := `
		INSERT INTO group_mentorships (service_id, day, start_minute, max_participants, current_participants, trainee_ids, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.QueryRow(
		ctx,
		query,
		group.ServiceID,
		int(group.Day),
		int(group.StartTime),
		group.MaxParticipants,
		group.CurrentParticipants,
		group.TraineeIDs,
		group.IsActive,
	).Scan(&group.ID)
}

func (r *GroupMentorshipRepository) GetByID(ctx context.Context, groupID int64) (*models.GroupMentorship, error) {
	query := `SELECT ` + groupColumns + ` FROM group_mentorships WHERE id = $1`
	return scanGroup(r.db.QueryRow(ctx, query, groupID))
}

func (r *GroupMentorshipRepository) GetByIDForUpdate(ctx context.Context, groupID int64) (*models.GroupMentorship, error) {
	query := `SELECT ` + groupColumns + ` FROM group_mentorships WHERE id = $1 FOR UPDATE`
	return scanGroup(r.db.QueryRow(ctx, query, groupID))
}

func (r *GroupMentorshipRepository) GetByServiceIDForUpdate(ctx context.Context, serviceID int64) (*models.GroupMentorship, error) {
	query := `SELECT ` + groupColumns + ` FROM group_mentorships WHERE service_id = $1 FOR UPDATE`
	return scanGroup(r.db.QueryRow(ctx, query, serviceID))
}

// UpdateParticipants persists the participant set computed by the model.
func (r *GroupMentorshipRepository) UpdateParticipants(ctx context.Context, group *models.GroupMentorship) error {
	traineeIDs := group.TraineeIDs
	if traineeIDs == nil {
		traineeIDs = []int64{}
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE group_mentorships
		SET trainee_ids = $2, current_participants = $3, is_active = $4
		WHERE id = $1
	`, group.ID, traineeIDs, group.CurrentParticipants, group.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
