package repository

import (
	"context"

	"github.com/Ghada-Shaban/LinkUp/internal/models"
)

type AvailabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) ListByCoach(ctx context.Context, coachID int64) ([]models.AvailabilityWindow, error) {
	query := `
		SELECT id, coach_id, day_of_week, start_minute, end_minute
		FROM availabilities
		WHERE coach_id = $1
		ORDER BY day_of_week ASC, start_minute ASC
	`
	rows, err := r.db.Query(ctx, query, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]models.AvailabilityWindow, 0)
	for rows.Next() {
		var window models.AvailabilityWindow
		if err := rows.Scan(
			&window.ID,
			&window.CoachID,
			&window.DayOfWeek,
			&window.StartTime,
			&window.EndTime,
		); err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}

// ReplaceForCoach swaps the coach's window set. Run it inside a transaction.
func (r *AvailabilityRepository) ReplaceForCoach(
	ctx context.Context,
	coachID int64,
	windows []models.AvailabilityWindow,
) ([]models.AvailabilityWindow, error) {
	if _, err := r.db.Exec(ctx, "DELETE FROM availabilities WHERE coach_id = $1", coachID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO availabilities (coach_id, day_of_week, start_minute, end_minute)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	saved := make([]models.AvailabilityWindow, 0, len(windows))
	for _, window := range windows {
		window.CoachID = coachID
		if err := r.db.QueryRow(
			ctx,
			query,
			coachID,
			int(window.DayOfWeek),
			int(window.StartTime),
			int(window.EndTime),
		).Scan(&window.ID); err != nil {
			return nil, err
		}
		saved = append(saved, window)
	}
	return saved, nil
}
