package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
	"github.com/Ghada-Shaban/LinkUp/internal/scheduling"
)

const maxWindowsPerCoach = 7 * 24

type AvailabilityService struct {
	db               *pgxpool.Pool
	availabilityRepo *repository.AvailabilityRepository
}

func NewAvailabilityService(db *pgxpool.Pool) *AvailabilityService {
	return &AvailabilityService{db: db, availabilityRepo: repository.NewAvailabilityRepository(db)}
}

func (s *AvailabilityService) ListAvailability(ctx context.Context, coachID int64) ([]models.AvailabilityWindow, error) {
	return s.availabilityRepo.ListByCoach(ctx, coachID)
}

// SetAvailability replaces the coach's weekly windows with the merged form of windows.
func (s *AvailabilityService) SetAvailability(
	ctx context.Context,
	coachID int64,
	windows []models.AvailabilityWindow,
) ([]models.AvailabilityWindow, error) {
	if coachID <= 0 {
		return nil, ErrInvalidInput
	}
	merged, err := prepareWindows(coachID, windows)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	saved, err := repository.NewAvailabilityRepository(tx).ReplaceForCoach(ctx, coachID, merged)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func prepareWindows(coachID int64, windows []models.AvailabilityWindow) ([]models.AvailabilityWindow, error) {
	if len(windows) > maxWindowsPerCoach {
		return nil, NewValidationError("windows", fmt.Sprintf("at most %d windows are allowed", maxWindowsPerCoach))
	}
	fields := map[string]string{}
	owned := make([]models.AvailabilityWindow, 0, len(windows))
	for i, window := range windows {
		window.CoachID = coachID
		if err := scheduling.ValidateWindow(window); err != nil {
			fields[fmt.Sprintf("windows[%d]", i)] = err.Error()
			continue
		}
		owned = append(owned, window)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return scheduling.MergeWindows(owned), nil
}
