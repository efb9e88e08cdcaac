package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/lib/pq"
)

// AvailabilityRepository stores staff availability submissions.
type AvailabilityRepository interface {
	// ReplaceForUserWeek deletes the user's submissions inside [weekStart, weekEnd]
	// and inserts the given set. Callers run it inside a transaction.
	ReplaceForUserWeek(executor SQLExecutor, userID int64, weekStart, weekEnd time.Time, submissions []models.ShiftSubmission) error
	GetForUserWeek(userID int64, weekStart, weekEnd time.Time) ([]models.ShiftSubmission, error)
	GetForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ShiftSubmission, error)
}

type availabilityRepository struct {
	db *sql.DB
}

// NewAvailabilityRepository creates a new instance of AvailabilityRepository.
func NewAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) ReplaceForUserWeek(executor SQLExecutor, userID int64, weekStart, weekEnd time.Time, submissions []models.ShiftSubmission) error {
	deleteQuery := `DELETE FROM shift_submissions WHERE user_id = $1 AND shift_date BETWEEN $2 AND $3`
	if _, err := executor.Exec(deleteQuery, userID, weekStart, weekEnd); err != nil {
		return fmt.Errorf("%w: clearing submissions for user %d: %v", ErrDatabaseError, userID, err)
	}

	insertQuery := `INSERT INTO shift_submissions (user_id, shift_date, shift_type, created_at)
	                VALUES ($1, $2, $3, $4)`
	now := time.Now()
	for _, sub := range submissions {
		if _, err := executor.Exec(insertQuery, userID, sub.ShiftDate, sub.ShiftType, now); err != nil {
			return fmt.Errorf("%w: inserting submission for user %d: %v", ErrDatabaseError, userID, err)
		}
	}
	return nil
}

func (r *availabilityRepository) GetForUserWeek(userID int64, weekStart, weekEnd time.Time) ([]models.ShiftSubmission, error) {
	return r.GetForUsersWeek([]int64{userID}, weekStart, weekEnd)
}

func (r *availabilityRepository) GetForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ShiftSubmission, error) {
	query := `SELECT id, user_id, shift_date, shift_type, created_at
	          FROM shift_submissions
	          WHERE user_id = ANY($1) AND shift_date BETWEEN $2 AND $3
	          ORDER BY user_id, shift_date`

	rows, err := r.db.Query(query, pq.Array(userIDs), weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: querying submissions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var submissions []models.ShiftSubmission
	for rows.Next() {
		var sub models.ShiftSubmission
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.ShiftDate, &sub.ShiftType, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning submission: %v", ErrDatabaseError, err)
		}
		submissions = append(submissions, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating submissions: %v", ErrDatabaseError, err)
	}
	return submissions, nil
}
