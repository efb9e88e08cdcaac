package services

import (
	"errors"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"
	"staff_rota_backend/internal/repositories"
)

var (
	ErrWindowClosed     = errors.New("availability submission window is closed")
	ErrOutOfRange       = errors.New("shift date outside the upcoming week")
	ErrInvalidShiftType = errors.New("invalid shift type for availability")
)

// SubmitAvailabilityRequest DTO. Entries cover the upcoming week only.
type SubmitAvailabilityRequest struct {
	Entries []AvailabilityEntry `json:"entries" binding:"required"`
}

// AvailabilityEntry is one date/type pair of a submission.
type AvailabilityEntry struct {
	ShiftDate string `json:"shift_date" binding:"required"` // YYYY-MM-DD
	ShiftType string `json:"shift_type" binding:"required"` // Day, Night or Double
}

// AvailabilityService owns staff availability submissions.
type AvailabilityService interface {
	Submit(userID int64, req SubmitAvailabilityRequest, now time.Time) ([]models.ShiftSubmission, error)
	GetForUpcomingWeek(userID int64, now time.Time) ([]models.ShiftSubmission, error)
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
	db               repositories.Database
}

// NewAvailabilityService creates a new instance of AvailabilityService.
func NewAvailabilityService(availabilityRepo repositories.AvailabilityRepository, db repositories.Database) AvailabilityService {
	return &availabilityService{availabilityRepo: availabilityRepo, db: db}
}

// Submit replaces the user's availability for the upcoming week. The whole
// submission is validated first and written atomically; a rejected entry
// rejects the lot.
func (s *availabilityService) Submit(userID int64, req SubmitAvailabilityRequest, now time.Time) ([]models.ShiftSubmission, error) {
	if !SubmissionWindowOpen(now) {
		return nil, ErrWindowClosed
	}

	week := SubmissionTargetWeek(now)
	byDate := make(map[time.Time][]string)
	for _, entry := range req.Entries {
		shiftDate, err := time.Parse("2006-01-02", entry.ShiftDate)
		if err != nil {
			return nil, fmt.Errorf("%w: shift_date must be YYYY-MM-DD", ErrOutOfRange)
		}
		if !week.Contains(shiftDate) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfRange, entry.ShiftDate)
		}
		switch entry.ShiftType {
		case models.ShiftDay, models.ShiftNight, models.ShiftDouble:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidShiftType, entry.ShiftType)
		}
		byDate[shiftDate] = append(byDate[shiftDate], entry.ShiftType)
	}

	submissions := make([]models.ShiftSubmission, 0, len(byDate))
	for _, day := range week.Days {
		types, ok := byDate[day]
		if !ok {
			continue
		}
		for _, shiftType := range ConsolidateDayNight(types) {
			submissions = append(submissions, models.ShiftSubmission{
				UserID:    userID,
				ShiftDate: day,
				ShiftType: shiftType,
			})
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.availabilityRepo.ReplaceForUserWeek(tx, userID, week.Monday, week.Sunday(), submissions); err != nil {
		return nil, fmt.Errorf("failed to save availability: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit availability: %w", err)
	}
	return submissions, nil
}

func (s *availabilityService) GetForUpcomingWeek(userID int64, now time.Time) ([]models.ShiftSubmission, error) {
	week := SubmissionTargetWeek(now)
	subs, err := s.availabilityRepo.GetForUserWeek(userID, week.Monday, week.Sunday())
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	return subs, nil
}

// ConsolidateDayNight collapses a Day+Night pair on one date into a single
// Double and removes duplicates. Order: Double, Day, Night, then anything
// else as given.
func ConsolidateDayNight(types []string) []string {
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		seen[t] = true
	}
	if seen[models.ShiftDay] && seen[models.ShiftNight] {
		delete(seen, models.ShiftDay)
		delete(seen, models.ShiftNight)
		seen[models.ShiftDouble] = true
	}

	out := make([]string, 0, len(seen))
	for _, t := range []string{models.ShiftDouble, models.ShiftDay, models.ShiftNight} {
		if seen[t] {
			out = append(out, t)
			delete(seen, t)
		}
	}
	for _, t := range types {
		if seen[t] {
			out = append(out, t)
			delete(seen, t)
		}
	}
	return out
}
