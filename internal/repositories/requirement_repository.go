package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"
)

// RequirementRepository stores per-role, per-date staffing requirements.
type RequirementRepository interface {
	Upsert(executor SQLExecutor, req *models.StaffingRequirement) error
	GetForRoleWeek(roleName string, weekStart, weekEnd time.Time) ([]models.StaffingRequirement, error)
}

type requirementRepository struct {
	db *sql.DB
}

// NewRequirementRepository creates a new instance of RequirementRepository.
func NewRequirementRepository(db *sql.DB) RequirementRepository {
	return &requirementRepository{db: db}
}

func (r *requirementRepository) Upsert(executor SQLExecutor, req *models.StaffingRequirement) error {
	query := `INSERT INTO staffing_requirements (role_name, shift_date, min_staff, max_staff, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (role_name, shift_date)
	          DO UPDATE SET min_staff = EXCLUDED.min_staff, max_staff = EXCLUDED.max_staff, updated_at = EXCLUDED.updated_at
	          RETURNING id`

	err := executor.QueryRow(query, req.RoleName, req.ShiftDate, req.MinStaff, req.MaxStaff, time.Now()).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("%w: upserting staffing requirement: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *requirementRepository) GetForRoleWeek(roleName string, weekStart, weekEnd time.Time) ([]models.StaffingRequirement, error) {
	query := `SELECT id, role_name, shift_date, min_staff, max_staff, created_at, updated_at
	          FROM staffing_requirements
	          WHERE role_name = $1 AND shift_date BETWEEN $2 AND $3
	          ORDER BY shift_date`

	rows, err := r.db.Query(query, roleName, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: querying staffing requirements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var reqs []models.StaffingRequirement
	for rows.Next() {
		var req models.StaffingRequirement
		var maxStaff sql.NullInt64
		if err := rows.Scan(&req.ID, &req.RoleName, &req.ShiftDate, &req.MinStaff, &maxStaff, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning staffing requirement: %v", ErrDatabaseError, err)
		}
		if maxStaff.Valid {
			m := int(maxStaff.Int64)
			req.MaxStaff = &m
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating staffing requirements: %v", ErrDatabaseError, err)
	}
	return reqs, nil
}
