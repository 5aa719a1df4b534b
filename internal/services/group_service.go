package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
)

type GroupService struct {
	db        *pgxpool.Pool
	groupRepo *repository.GroupMentorshipRepository
}

func NewGroupService(db *pgxpool.Pool) *GroupService {
	return &GroupService{db: db, groupRepo: repository.NewGroupMentorshipRepository(db)}
}

func (s *GroupService) Seats(ctx context.Context, groupID int64) (models.GroupSeats, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return models.GroupSeats{}, notFound("group mentorship", err)
	}
	return group.Seats(), nil
}

func (s *GroupService) AddTrainee(ctx context.Context, groupID, traineeID int64) (models.GroupSeats, error) {
	return s.updateParticipants(ctx, groupID, func(group *models.GroupMentorship) error {
		if err := group.AddTrainee(traineeID); err != nil {
			if errors.Is(err, models.ErrGroupCapacityUnset) {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil
	})
}

// RemoveTrainee is idempotent: removing a non-member leaves the group unchanged.
func (s *GroupService) RemoveTrainee(ctx context.Context, groupID, traineeID int64) (models.GroupSeats, error) {
	return s.updateParticipants(ctx, groupID, func(group *models.GroupMentorship) error {
		group.RemoveTrainee(traineeID)
		return nil
	})
}

func (s *GroupService) updateParticipants(
	ctx context.Context,
	groupID int64,
	mutate func(group *models.GroupMentorship) error,
) (models.GroupSeats, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.GroupSeats{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	groupRepo := repository.NewGroupMentorshipRepository(tx)
	group, err := groupRepo.GetByIDForUpdate(ctx, groupID)
	if err != nil {
		return models.GroupSeats{}, notFound("group mentorship", err)
	}
	if err := mutate(group); err != nil {
		return models.GroupSeats{}, err
	}
	if err := groupRepo.UpdateParticipants(ctx, group); err != nil {
		return models.GroupSeats{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.GroupSeats{}, err
	}
	return group.Seats(), nil
}
