package models

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrGroupCapacityUnset = errors.New("group mentorship has no participant limit")
	ErrGroupFull          = errors.New("group full")
	ErrAlreadyParticipant = errors.New("trainee already joined this group")
)

const MinActiveParticipants = 2

type GroupMentorship struct {
	ID                  int64        `json:"id"`
	ServiceID           int64        `json:"service_id"`
	Day                 time.Weekday `json:"day"`
	StartTime           TimeOfDay    `json:"start_time"`
	MaxParticipants     *int         `json:"max_participants"`
	CurrentParticipants int          `json:"current_participants"`
	TraineeIDs          []int64      `json:"trainee_ids"`
	IsActive            bool         `json:"is_active"`
}

type GroupSeats struct {
	AvailableSlots int  `json:"available_slots"`
	IsActive       bool `json:"is_active"`
}

func (g *GroupMentorship) AvailableSlots() int {
	if g.MaxParticipants == nil {
		return 0
	}
	if free := *g.MaxParticipants - g.CurrentParticipants; free > 0 {
		return free
	}
	return 0
}

func (g *GroupMentorship) Seats() GroupSeats {
	return GroupSeats{AvailableSlots: g.AvailableSlots(), IsActive: g.IsActive}
}

func (g *GroupMentorship) HasTrainee(traineeID int64) bool {
	return slices.Contains(g.TraineeIDs, traineeID)
}

// AddTrainee leaves the group untouched when it returns an error.
func (g *GroupMentorship) AddTrainee(traineeID int64) error {
	if g.MaxParticipants == nil {
		return ErrGroupCapacityUnset
	}
	if g.CurrentParticipants >= *g.MaxParticipants {
		return ErrGroupFull
	}
	if g.HasTrainee(traineeID) {
		return ErrAlreadyParticipant
	}
	g.TraineeIDs = append(g.TraineeIDs, traineeID)
	g.CurrentParticipants++
	g.IsActive = g.CurrentParticipants >= MinActiveParticipants
	return nil
}

// RemoveTrainee reports whether the trainee was a member. Removing a non-member is a no-op.
func (g *GroupMentorship) RemoveTrainee(traineeID int64) bool {
	idx := slices.Index(g.TraineeIDs, traineeID)
	if idx < 0 {
		return false
	}
	g.TraineeIDs = slices.Delete(g.TraineeIDs, idx, idx+1)
	if g.CurrentParticipants > 0 {
		g.CurrentParticipants--
	}
	g.IsActive = g.CurrentParticipants >= MinActiveParticipants
	return true
}

// NextOccurrence returns the first group meeting strictly after the given instant.
func (g *GroupMentorship) NextOccurrence(after time.Time) time.Time {
	after = after.UTC()
	daysAhead := (int(g.Day) - int(after.Weekday()) + 7) % 7
	candidate := g.StartTime.On(after.AddDate(0, 0, daysAhead))
	if !candidate.After(after) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
