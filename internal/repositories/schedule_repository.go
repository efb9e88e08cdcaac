package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/lib/pq"
)

// ScheduleRepository stores scheduled shifts.
type ScheduleRepository interface {
	// AdvisoryLockRoleGroup takes a transaction-scoped Postgres advisory lock
	// keyed on the role-group name. It serializes concurrent week saves for
	// the same group across all server processes.
	AdvisoryLockRoleGroup(executor SQLExecutor, roleGroup string) error
	DeleteWeekForUsers(executor SQLExecutor, userIDs []int64, weekStart, weekEnd time.Time) error
	InsertShift(executor SQLExecutor, shift *models.ScheduledShift) (int64, error)
	GetShiftByID(executor SQLExecutor, id int64) (*models.ScheduledShift, error)
	GetPublishedForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error)
	GetForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error)
	GetShiftsForUserDate(executor SQLExecutor, userID int64, date time.Time) ([]models.ScheduledShift, error)
	GetShiftsForUserWeek(userID int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error)
	UpdateShiftOwner(executor SQLExecutor, shiftID, newOwnerID int64) error
	UpdateShiftType(executor SQLExecutor, shiftID int64, shiftType string) error
	DeleteShiftsByIDs(executor SQLExecutor, ids []int64) error
}

type scheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) AdvisoryLockRoleGroup(executor SQLExecutor, roleGroup string) error {
	h := fnv.New64a()
	h.Write([]byte("schedule:" + roleGroup))
	key := int64(h.Sum64())
	if _, err := executor.Exec(`SELECT pg_advisory_xact_lock($1)`, key); err != nil {
		return fmt.Errorf("%w: acquiring advisory lock for %s: %v", ErrDatabaseError, roleGroup, err)
	}
	return nil
}

func (r *scheduleRepository) DeleteWeekForUsers(executor SQLExecutor, userIDs []int64, weekStart, weekEnd time.Time) error {
	query := `DELETE FROM scheduled_shifts WHERE user_id = ANY($1) AND shift_date BETWEEN $2 AND $3`
	if _, err := executor.Exec(query, pq.Array(userIDs), weekStart, weekEnd); err != nil {
		return fmt.Errorf("%w: clearing week schedule: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *scheduleRepository) InsertShift(executor SQLExecutor, shift *models.ScheduledShift) (int64, error) {
	query := `INSERT INTO scheduled_shifts (user_id, shift_date, shift_type, custom_start, custom_end, published, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	          RETURNING id`

	currentTime := time.Now()
	var id int64
	err := executor.QueryRow(query,
		shift.UserID, shift.ShiftDate, shift.ShiftType,
		shift.CustomStart, shift.CustomEnd, shift.Published, currentTime,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: user with ID %d not found", ErrNotFound, shift.UserID)
		}
		return 0, fmt.Errorf("%w: inserting scheduled shift: %v", ErrDatabaseError, err)
	}
	shift.ID = id
	return id, nil
}

func (r *scheduleRepository) GetShiftByID(executor SQLExecutor, id int64) (*models.ScheduledShift, error) {
	query := scheduleSelect + ` WHERE s.id = $1`
	return scanScheduledShiftRow(executor.QueryRow(query, id))
}

func (r *scheduleRepository) GetPublishedForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error) {
	query := scheduleSelect + ` WHERE s.user_id = ANY($1) AND s.shift_date BETWEEN $2 AND $3 AND s.published = TRUE
	          ORDER BY s.shift_date, u.full_name NULLS LAST`
	return r.queryShifts(query, pq.Array(userIDs), weekStart, weekEnd)
}

func (r *scheduleRepository) GetForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error) {
	query := scheduleSelect + ` WHERE s.user_id = ANY($1) AND s.shift_date BETWEEN $2 AND $3
	          ORDER BY s.shift_date, u.full_name NULLS LAST`
	return r.queryShifts(query, pq.Array(userIDs), weekStart, weekEnd)
}

func (r *scheduleRepository) GetShiftsForUserDate(executor SQLExecutor, userID int64, date time.Time) ([]models.ScheduledShift, error) {
	query := scheduleSelect + ` WHERE s.user_id = $1 AND s.shift_date = $2`
	rows, err := executor.Query(query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: querying shifts for user %d: %v", ErrDatabaseError, userID, err)
	}
	return collectShifts(rows)
}

func (r *scheduleRepository) GetShiftsForUserWeek(userID int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error) {
	query := scheduleSelect + ` WHERE s.user_id = $1 AND s.shift_date BETWEEN $2 AND $3 ORDER BY s.shift_date`
	return r.queryShifts(query, userID, weekStart, weekEnd)
}

func (r *scheduleRepository) UpdateShiftOwner(executor SQLExecutor, shiftID, newOwnerID int64) error {
	query := `UPDATE scheduled_shifts SET user_id = $1, updated_at = $2 WHERE id = $3`
	res, err := executor.Exec(query, newOwnerID, time.Now(), shiftID)
	if err != nil {
		return fmt.Errorf("%w: reassigning shift %d: %v", ErrDatabaseError, shiftID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scheduleRepository) UpdateShiftType(executor SQLExecutor, shiftID int64, shiftType string) error {
	query := `UPDATE scheduled_shifts SET shift_type = $1, updated_at = $2 WHERE id = $3`
	res, err := executor.Exec(query, shiftType, time.Now(), shiftID)
	if err != nil {
		return fmt.Errorf("%w: updating shift %d type: %v", ErrDatabaseError, shiftID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scheduleRepository) DeleteShiftsByIDs(executor SQLExecutor, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM scheduled_shifts WHERE id = ANY($1)`
	if _, err := executor.Exec(query, pq.Array(ids)); err != nil {
		return fmt.Errorf("%w: deleting shifts: %v", ErrDatabaseError, err)
	}
	return nil
}

const scheduleSelect = `SELECT s.id, s.user_id, s.shift_date, s.shift_type, s.custom_start, s.custom_end,
	       s.published, s.created_at, s.updated_at, u.username, u.full_name
	FROM scheduled_shifts s
	JOIN users u ON u.id = s.user_id`

func (r *scheduleRepository) queryShifts(query string, args ...interface{}) ([]models.ScheduledShift, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying scheduled shifts: %v", ErrDatabaseError, err)
	}
	return collectShifts(rows)
}

func collectShifts(rows *sql.Rows) ([]models.ScheduledShift, error) {
	defer rows.Close()
	var shifts []models.ScheduledShift
	for rows.Next() {
		shift, err := scanScheduledShiftRow(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating scheduled shifts: %v", ErrDatabaseError, err)
	}
	return shifts, nil
}

func scanScheduledShiftRow(row scanner) (*models.ScheduledShift, error) {
	var shift models.ScheduledShift
	var user models.User
	var customStart, customEnd, fullName sql.NullString

	err := row.Scan(
		&shift.ID, &shift.UserID, &shift.ShiftDate, &shift.ShiftType,
		&customStart, &customEnd, &shift.Published, &shift.CreatedAt, &shift.UpdatedAt,
		&user.Username, &fullName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning scheduled shift: %v", ErrDatabaseError, err)
	}
	if customStart.Valid {
		shift.CustomStart = &customStart.String
	}
	if customEnd.Valid {
		shift.CustomEnd = &customEnd.String
	}
	if fullName.Valid {
		user.FullName = &fullName.String
	}
	user.ID = shift.UserID
	shift.User = &user
	return &shift, nil
}
