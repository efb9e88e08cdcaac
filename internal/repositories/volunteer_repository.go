package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/lib/pq"
)

// VolunteerRepository stores volunteered shift cycles and their candidate pools.
type VolunteerRepository interface {
	Create(executor SQLExecutor, cycle *models.VolunteeredShift) (int64, error)
	GetByID(executor SQLExecutor, id int64) (*models.VolunteeredShift, error)
	// ActiveExistsForSchedule reports whether the schedule row already has an
	// Open or PendingApproval cycle.
	ActiveExistsForSchedule(executor SQLExecutor, scheduleID int64) (bool, error)
	AddCandidate(executor SQLExecutor, cycleID, userID int64) error
	// UpdateDecision moves an active cycle to the given status. It returns
	// ErrNotFound when the cycle does not exist and false when it exists but
	// is already terminal.
	UpdateDecision(executor SQLExecutor, id int64, status string) (bool, error)
	// ApproveDecision moves an active cycle to Approved and records the
	// chosen volunteer, with the same return contract as UpdateDecision.
	ApproveDecision(executor SQLExecutor, id, volunteerID int64) (bool, error)
	ListActive() ([]models.VolunteeredShift, error)
	ListForOwner(ownerID int64) ([]models.VolunteeredShift, error)
}

type volunteerRepository struct {
	db *sql.DB
}

// NewVolunteerRepository creates a new instance of VolunteerRepository.
func NewVolunteerRepository(db *sql.DB) VolunteerRepository {
	return &volunteerRepository{db: db}
}

func (r *volunteerRepository) Create(executor SQLExecutor, cycle *models.VolunteeredShift) (int64, error) {
	query := `INSERT INTO volunteered_shifts (schedule_id, owner_id, status, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	cycle.Status = models.VolunteerOpen
	cycle.CreatedAt = time.Now()
	var id int64
	err := executor.QueryRow(query, cycle.ScheduleID, cycle.OwnerID, cycle.Status, cycle.CreatedAt).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			// Partial unique index on schedule_id for active cycles.
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return 0, fmt.Errorf("%w: referenced schedule or user missing", ErrNotFound)
			}
		}
		return 0, fmt.Errorf("%w: creating volunteer cycle: %v", ErrDatabaseError, err)
	}
	cycle.ID = id
	return id, nil
}

func (r *volunteerRepository) GetByID(executor SQLExecutor, id int64) (*models.VolunteeredShift, error) {
	query := volunteerSelect + ` WHERE v.id = $1 GROUP BY v.id, s.id`
	cycle, err := scanVolunteerRow(executor.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

func (r *volunteerRepository) ActiveExistsForSchedule(executor SQLExecutor, scheduleID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM volunteered_shifts WHERE schedule_id = $1 AND status IN ($2, $3))`
	if err := executor.QueryRow(query, scheduleID, models.VolunteerOpen, models.VolunteerPendingApproval).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking active cycle for schedule %d: %v", ErrDatabaseError, scheduleID, err)
	}
	return exists, nil
}

func (r *volunteerRepository) AddCandidate(executor SQLExecutor, cycleID, userID int64) error {
	query := `INSERT INTO volunteer_candidates (volunteered_shift_id, user_id, created_at)
	          VALUES ($1, $2, $3)`
	if _, err := executor.Exec(query, cycleID, userID, time.Now()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return fmt.Errorf("%w: adding candidate to cycle %d: %v", ErrDatabaseError, cycleID, err)
	}
	return nil
}

func (r *volunteerRepository) UpdateDecision(executor SQLExecutor, id int64, status string) (bool, error) {
	query := `UPDATE volunteered_shifts SET status = $1, decided_at = $2 WHERE id = $3 AND status IN ($4, $5)`
	res, err := executor.Exec(query, status, time.Now(), id, models.VolunteerOpen, models.VolunteerPendingApproval)
	if err != nil {
		return false, fmt.Errorf("%w: deciding volunteer cycle %d: %v", ErrDatabaseError, id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 1 {
		return true, nil
	}

	var exists bool
	if err := executor.QueryRow(`SELECT EXISTS (SELECT 1 FROM volunteered_shifts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking volunteer cycle %d: %v", ErrDatabaseError, id, err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *volunteerRepository) ApproveDecision(executor SQLExecutor, id, volunteerID int64) (bool, error) {
	query := `UPDATE volunteered_shifts SET status = $1, approved_volunteer_id = $2, decided_at = $3
	          WHERE id = $4 AND status IN ($5, $6)`
	res, err := executor.Exec(query, models.VolunteerApproved, volunteerID, time.Now(), id, models.VolunteerOpen, models.VolunteerPendingApproval)
	if err != nil {
		return false, fmt.Errorf("%w: approving volunteer cycle %d: %v", ErrDatabaseError, id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 1 {
		return true, nil
	}

	var exists bool
	if err := executor.QueryRow(`SELECT EXISTS (SELECT 1 FROM volunteered_shifts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking volunteer cycle %d: %v", ErrDatabaseError, id, err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *volunteerRepository) ListActive() ([]models.VolunteeredShift, error) {
	query := volunteerSelect + ` WHERE v.status IN ('` + models.VolunteerOpen + `', '` + models.VolunteerPendingApproval + `')
	          GROUP BY v.id, s.id ORDER BY v.created_at`
	return r.queryCycles(query)
}

func (r *volunteerRepository) ListForOwner(ownerID int64) ([]models.VolunteeredShift, error) {
	query := volunteerSelect + ` WHERE v.owner_id = $1 GROUP BY v.id, s.id ORDER BY v.created_at DESC`
	return r.queryCycles(query, ownerID)
}

const volunteerSelect = `SELECT v.id, v.schedule_id, v.owner_id, v.approved_volunteer_id, v.status, v.created_at, v.decided_at,
	       s.user_id, s.shift_date, s.shift_type, s.published,
	       COALESCE(array_agg(vc.user_id) FILTER (WHERE vc.user_id IS NOT NULL), '{}')
	FROM volunteered_shifts v
	JOIN scheduled_shifts s ON s.id = v.schedule_id
	LEFT JOIN volunteer_candidates vc ON vc.volunteered_shift_id = v.id`

func (r *volunteerRepository) queryCycles(query string, args ...interface{}) ([]models.VolunteeredShift, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying volunteer cycles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var cycles []models.VolunteeredShift
	for rows.Next() {
		cycle, err := scanVolunteerRow(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, *cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating volunteer cycles: %v", ErrDatabaseError, err)
	}
	return cycles, nil
}

func scanVolunteerRow(row scanner) (*models.VolunteeredShift, error) {
	var cycle models.VolunteeredShift
	var schedule models.ScheduledShift
	var decidedAt sql.NullTime
	var approvedVolunteerID sql.NullInt64
	var candidateIDs pq.Int64Array

	err := row.Scan(
		&cycle.ID, &cycle.ScheduleID, &cycle.OwnerID, &approvedVolunteerID, &cycle.Status, &cycle.CreatedAt, &decidedAt,
		&schedule.UserID, &schedule.ShiftDate, &schedule.ShiftType, &schedule.Published,
		&candidateIDs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning volunteer cycle: %v", ErrDatabaseError, err)
	}
	if decidedAt.Valid {
		cycle.DecidedAt = &decidedAt.Time
	}
	if approvedVolunteerID.Valid {
		cycle.ApprovedVolunteerID = &approvedVolunteerID.Int64
	}
	schedule.ID = cycle.ScheduleID
	cycle.Schedule = &schedule
	cycle.CandidateIDs = []int64(candidateIDs)
	return &cycle, nil
}
