package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/lib/pq"
)

// SwapRepository stores shift swap requests.
type SwapRepository interface {
	Create(executor SQLExecutor, swap *models.ShiftSwapRequest) (int64, error)
	GetByID(executor SQLExecutor, id int64) (*models.ShiftSwapRequest, error)
	PendingExistsForSchedule(executor SQLExecutor, scheduleID int64) (bool, error)
	// UpdateDecision moves a Pending request to a terminal status. It returns
	// ErrNotFound when the request does not exist and false when it exists but
	// is no longer Pending.
	UpdateDecision(executor SQLExecutor, id int64, status string) (bool, error)
	// ApproveDecision moves a Pending request to Approved and records the
	// coverer who takes the shift. Same contract as UpdateDecision.
	ApproveDecision(executor SQLExecutor, id, covererID int64) (bool, error)
	ListForRequester(requesterID int64) ([]models.ShiftSwapRequest, error)
	ListPendingForTarget(targetID int64) ([]models.ShiftSwapRequest, error)
}

type swapRepository struct {
	db *sql.DB
}

// NewSwapRepository creates a new instance of SwapRepository.
func NewSwapRepository(db *sql.DB) SwapRepository {
	return &swapRepository{db: db}
}

func (r *swapRepository) Create(executor SQLExecutor, swap *models.ShiftSwapRequest) (int64, error) {
	query := `INSERT INTO shift_swap_requests (schedule_id, requester_id, target_id, status, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	swap.Status = models.SwapPending
	swap.CreatedAt = time.Now()
	var id int64
	err := executor.QueryRow(query, swap.ScheduleID, swap.RequesterID, swap.TargetID, swap.Status, swap.CreatedAt).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return 0, fmt.Errorf("%w: referenced schedule or user missing", ErrNotFound)
			}
		}
		return 0, fmt.Errorf("%w: creating swap request: %v", ErrDatabaseError, err)
	}
	swap.ID = id
	return id, nil
}

func (r *swapRepository) GetByID(executor SQLExecutor, id int64) (*models.ShiftSwapRequest, error) {
	query := swapSelect + ` WHERE sw.id = $1`
	return scanSwapRow(executor.QueryRow(query, id))
}

func (r *swapRepository) PendingExistsForSchedule(executor SQLExecutor, scheduleID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM shift_swap_requests WHERE schedule_id = $1 AND status = $2)`
	if err := executor.QueryRow(query, scheduleID, models.SwapPending).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking pending swap for schedule %d: %v", ErrDatabaseError, scheduleID, err)
	}
	return exists, nil
}

func (r *swapRepository) UpdateDecision(executor SQLExecutor, id int64, status string) (bool, error) {
	query := `UPDATE shift_swap_requests SET status = $1, decided_at = $2 WHERE id = $3 AND status = $4`
	res, err := executor.Exec(query, status, time.Now(), id, models.SwapPending)
	if err != nil {
		return false, fmt.Errorf("%w: deciding swap request %d: %v", ErrDatabaseError, id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 1 {
		return true, nil
	}

	var exists bool
	if err := executor.QueryRow(`SELECT EXISTS (SELECT 1 FROM shift_swap_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking swap request %d: %v", ErrDatabaseError, id, err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *swapRepository) ApproveDecision(executor SQLExecutor, id, covererID int64) (bool, error) {
	query := `UPDATE shift_swap_requests SET status = $1, target_id = $2, decided_at = $3 WHERE id = $4 AND status = $5`
	res, err := executor.Exec(query, models.SwapApproved, covererID, time.Now(), id, models.SwapPending)
	if err != nil {
		return false, fmt.Errorf("%w: approving swap request %d: %v", ErrDatabaseError, id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 1 {
		return true, nil
	}

	var exists bool
	if err := executor.QueryRow(`SELECT EXISTS (SELECT 1 FROM shift_swap_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking swap request %d: %v", ErrDatabaseError, id, err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *swapRepository) ListForRequester(requesterID int64) ([]models.ShiftSwapRequest, error) {
	query := swapSelect + ` WHERE sw.requester_id = $1 ORDER BY sw.created_at DESC`
	return r.querySwaps(query, requesterID)
}

func (r *swapRepository) ListPendingForTarget(targetID int64) ([]models.ShiftSwapRequest, error) {
	query := swapSelect + ` WHERE sw.target_id = $1 AND sw.status = '` + models.SwapPending + `' ORDER BY sw.created_at`
	return r.querySwaps(query, targetID)
}

const swapSelect = `SELECT sw.id, sw.schedule_id, sw.requester_id, sw.target_id, sw.status, sw.created_at, sw.decided_at,
	       s.user_id, s.shift_date, s.shift_type, s.published
	FROM shift_swap_requests sw
	JOIN scheduled_shifts s ON s.id = sw.schedule_id`

func (r *swapRepository) querySwaps(query string, args ...interface{}) ([]models.ShiftSwapRequest, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying swap requests: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var swaps []models.ShiftSwapRequest
	for rows.Next() {
		swap, err := scanSwapRow(rows)
		if err != nil {
			return nil, err
		}
		swaps = append(swaps, *swap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating swap requests: %v", ErrDatabaseError, err)
	}
	return swaps, nil
}

func scanSwapRow(row scanner) (*models.ShiftSwapRequest, error) {
	var swap models.ShiftSwapRequest
	var schedule models.ScheduledShift
	var decidedAt sql.NullTime

	err := row.Scan(
		&swap.ID, &swap.ScheduleID, &swap.RequesterID, &swap.TargetID, &swap.Status, &swap.CreatedAt, &decidedAt,
		&schedule.UserID, &schedule.ShiftDate, &schedule.ShiftType, &schedule.Published,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning swap request: %v", ErrDatabaseError, err)
	}
	if decidedAt.Valid {
		swap.DecidedAt = &decidedAt.Time
	}
	schedule.ID = swap.ScheduleID
	swap.Schedule = &schedule
	return &swap, nil
}
