package services

import (
	"errors"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"
	"staff_rota_backend/internal/repositories"
)

var (
	ErrInvalidRequirement = errors.New("invalid staffing requirement")
	ErrUnknownRoleGroup   = errors.New("unknown role group")
)

// SetRequirementRequest DTO
type SetRequirementRequest struct {
	RoleName  string `json:"role_name" binding:"required"`
	ShiftDate string `json:"shift_date" binding:"required"` // YYYY-MM-DD
	MinStaff  int    `json:"min_staff"`
	MaxStaff  *int   `json:"max_staff,omitempty"`
}

// StaffingService owns staffing requirements and their evaluation.
type StaffingService interface {
	SetRequirement(req SetRequirementRequest) (*models.StaffingRequirement, error)
	GetRequirementsForWeek(roleName string, week WeekWindow) (map[string]models.StaffingRequirement, error)
}

type staffingService struct {
	requirementRepo repositories.RequirementRepository
	db              repositories.Database
}

// NewStaffingService creates a new instance of StaffingService.
func NewStaffingService(requirementRepo repositories.RequirementRepository, db repositories.Database) StaffingService {
	return &staffingService{requirementRepo: requirementRepo, db: db}
}

func (s *staffingService) SetRequirement(req SetRequirementRequest) (*models.StaffingRequirement, error) {
	shiftDate, err := time.Parse("2006-01-02", req.ShiftDate)
	if err != nil {
		return nil, fmt.Errorf("%w: shift_date must be YYYY-MM-DD", ErrInvalidRequirement)
	}
	if req.MinStaff < 0 {
		return nil, fmt.Errorf("%w: min_staff cannot be negative", ErrInvalidRequirement)
	}
	if req.MaxStaff != nil && *req.MaxStaff < req.MinStaff {
		return nil, fmt.Errorf("%w: max_staff cannot be below min_staff", ErrInvalidRequirement)
	}

	requirement := &models.StaffingRequirement{
		RoleName:  req.RoleName,
		ShiftDate: shiftDate,
		MinStaff:  req.MinStaff,
		MaxStaff:  req.MaxStaff,
	}
	if err := s.requirementRepo.Upsert(s.db, requirement); err != nil {
		return nil, fmt.Errorf("failed to save staffing requirement: %w", err)
	}
	return requirement, nil
}

// GetRequirementsForWeek returns the role's requirements keyed by date
// (YYYY-MM-DD).
func (s *staffingService) GetRequirementsForWeek(roleName string, week WeekWindow) (map[string]models.StaffingRequirement, error) {
	reqs, err := s.requirementRepo.GetForRoleWeek(roleName, week.Monday, week.Sunday())
	if err != nil {
		return nil, fmt.Errorf("failed to load staffing requirements: %w", err)
	}
	byDate := make(map[string]models.StaffingRequirement, len(reqs))
	for _, r := range reqs {
		byDate[r.ShiftDate.Format("2006-01-02")] = r
	}
	return byDate, nil
}

// EvaluateStaffing classifies one day's coverage against its requirement.
// Precedence: Overstaffed wins over Good when a max is set and exceeded;
// "No Req." applies only when nothing is assigned and nothing is required.
func EvaluateStaffing(assigned, minStaff int, maxStaff *int) string {
	if maxStaff != nil && assigned > *maxStaff {
		return models.StaffingOverstaffed
	}
	if assigned >= minStaff && (assigned > 0 || minStaff > 0) {
		return models.StaffingGood
	}
	if assigned == 0 && minStaff == 0 {
		return models.StaffingNoRequirement
	}
	return models.StaffingUnderstaffed
}
