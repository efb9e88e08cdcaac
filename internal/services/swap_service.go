package services

import (
	"errors"
	"fmt"

	"staff_rota_backend/internal/models"
	"staff_rota_backend/internal/repositories"
)

// Errors shared by the swap and volunteering workflows.
var (
	ErrShiftNotFound    = errors.New("scheduled shift not found")
	ErrNotOwner         = errors.New("shift belongs to another staff member")
	ErrSelfReference    = errors.New("cannot target your own request")
	ErrIneligible       = errors.New("staff member is not eligible for this shift")
	ErrAlreadyTerminal  = errors.New("request has already been decided")
	ErrDuplicatePending = errors.New("a pending swap request already exists for this shift")
	ErrAlreadyCycled    = errors.New("an active volunteer cycle already holds this shift")
	ErrCovererMissing   = errors.New("covering staff member is unavailable")
	ErrSwapNotFound     = errors.New("swap request not found")
)

// RequestSwapRequest DTO
type RequestSwapRequest struct {
	ScheduleID int64 `json:"schedule_id" binding:"required"`
	TargetID   int64 `json:"target_id" binding:"required"`
}

// ApproveSwapRequest DTO. CovererID lets the approver assign the shift to
// someone other than the suggested target; nil keeps the suggestion.
type ApproveSwapRequest struct {
	CovererID *int64 `json:"coverer_id,omitempty"`
}

// SwapService owns the shift swap workflow: Pending -> Approved | Denied.
type SwapService interface {
	Request(requesterID int64, req RequestSwapRequest) (*models.ShiftSwapRequest, error)
	Approve(swapID int64, covererID *int64) (*models.ShiftSwapRequest, error)
	Deny(swapID int64) (*models.ShiftSwapRequest, error)
	ListForRequester(requesterID int64) ([]models.ShiftSwapRequest, error)
	ListPendingForTarget(targetID int64) ([]models.ShiftSwapRequest, error)
}

type swapService struct {
	swapRepo      repositories.SwapRepository
	volunteerRepo repositories.VolunteerRepository
	scheduleRepo  repositories.ScheduleRepository
	userRepo      repositories.UserRepository
	notifier      Notifier
	db            repositories.Database
}

// NewSwapService creates a new instance of SwapService.
func NewSwapService(
	swapRepo repositories.SwapRepository,
	volunteerRepo repositories.VolunteerRepository,
	scheduleRepo repositories.ScheduleRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	db repositories.Database,
) SwapService {
	return &swapService{
		swapRepo:      swapRepo,
		volunteerRepo: volunteerRepo,
		scheduleRepo:  scheduleRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		db:            db,
	}
}

// Request opens a swap asking target to take over the requester's shift.
// The shift must belong to the requester, carry no pending swap and no
// active volunteer cycle, and the target must pass the eligibility rules.
func (s *swapService) Request(requesterID int64, req RequestSwapRequest) (*models.ShiftSwapRequest, error) {
	if req.TargetID == requesterID {
		return nil, ErrSelfReference
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	shift, err := s.scheduleRepo.GetShiftByID(tx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	if shift.UserID != requesterID {
		return nil, ErrNotOwner
	}

	pending, err := s.swapRepo.PendingExistsForSchedule(tx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicatePending
	}
	cycled, err := s.volunteerRepo.ActiveExistsForSchedule(tx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if cycled {
		return nil, ErrAlreadyCycled
	}

	requester, err := s.userRepo.FindUserByID(requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}
	target, err := s.userRepo.FindUserByID(req.TargetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCovererMissing
		}
		return nil, fmt.Errorf("failed to load target: %w", err)
	}
	if target.IsSuspended {
		return nil, ErrCovererMissing
	}
	eligible, err := s.targetEligible(tx, target, requester, shift)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrIneligible
	}

	swap := &models.ShiftSwapRequest{
		ScheduleID:  req.ScheduleID,
		RequesterID: requesterID,
		TargetID:    req.TargetID,
	}
	if _, err := s.swapRepo.Create(tx, swap); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to create swap request: %w", err)
	}

	body := fmt.Sprintf("%s asked you to cover their %s shift on %s.",
		requester.Username, shift.ShiftType, shift.ShiftDate.Format("Monday 2 January"))
	if err := s.notifier.NotifyUser(tx, req.TargetID, models.AnnouncementSwap, "Shift swap requested", body, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit swap request: %w", err)
	}
	swap.Schedule = shift
	return swap, nil
}

func (s *swapService) targetEligible(executor repositories.SQLExecutor, target, owner *models.User, shift *models.ScheduledShift) (bool, error) {
	held, err := s.scheduleRepo.GetShiftsForUserDate(executor, target.ID, shift.ShiftDate)
	if err != nil {
		return false, fmt.Errorf("failed to load target's shifts: %w", err)
	}
	heldTypes := make([]string, 0, len(held))
	for _, h := range held {
		heldTypes = append(heldTypes, h.ShiftType)
	}
	return EligibleForShift(target.RoleNames(), owner.RoleNames(), heldTypes, shift.ShiftType), nil
}

// Approve moves the request to Approved and reassigns the shift to the
// chosen coverer (the suggested target when covererID is nil). Eligibility is
// re-checked at decision time. A request that is no longer Pending is
// rejected untouched; no availability consolidation runs for swaps.
func (s *swapService) Approve(swapID int64, covererID *int64) (*models.ShiftSwapRequest, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	swap, err := s.swapRepo.GetByID(tx, swapID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("failed to load swap request: %w", err)
	}

	chosenID := swap.TargetID
	if covererID != nil {
		chosenID = *covererID
	}
	if chosenID == swap.RequesterID {
		return nil, ErrSelfReference
	}

	coverer, err := s.userRepo.FindUserByID(chosenID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCovererMissing
		}
		return nil, fmt.Errorf("failed to load coverer: %w", err)
	}
	if coverer.IsSuspended {
		return nil, ErrCovererMissing
	}
	requester, err := s.userRepo.FindUserByID(swap.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}
	eligible, err := s.targetEligible(tx, coverer, requester, swap.Schedule)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrIneligible
	}

	decided, err := s.swapRepo.ApproveDecision(tx, swapID, chosenID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}
	if !decided {
		return nil, ErrAlreadyTerminal
	}

	if err := s.scheduleRepo.UpdateShiftOwner(tx, swap.ScheduleID, chosenID); err != nil {
		return nil, fmt.Errorf("failed to reassign shift: %w", err)
	}

	body := fmt.Sprintf("Your swap for the %s shift on %s was approved.",
		swap.Schedule.ShiftType, swap.Schedule.ShiftDate.Format("Monday 2 January"))
	if err := s.notifier.NotifyUser(tx, swap.RequesterID, models.AnnouncementSwap, "Shift swap approved", body, nil); err != nil {
		return nil, err
	}
	if err := s.notifier.NotifyUser(tx, chosenID, models.AnnouncementSwap, "Shift swap approved", body, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit swap approval: %w", err)
	}
	swap.Status = models.SwapApproved
	swap.TargetID = chosenID
	return swap, nil
}

// Deny moves the request to Denied. The schedule is untouched.
func (s *swapService) Deny(swapID int64) (*models.ShiftSwapRequest, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	swap, err := s.swapRepo.GetByID(tx, swapID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("failed to load swap request: %w", err)
	}

	decided, err := s.swapRepo.UpdateDecision(tx, swapID, models.SwapDenied)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}
	if !decided {
		return nil, ErrAlreadyTerminal
	}

	body := fmt.Sprintf("Your swap for the %s shift on %s was denied.",
		swap.Schedule.ShiftType, swap.Schedule.ShiftDate.Format("Monday 2 January"))
	if err := s.notifier.NotifyUser(tx, swap.RequesterID, models.AnnouncementSwap, "Shift swap denied", body, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit swap denial: %w", err)
	}
	swap.Status = models.SwapDenied
	return swap, nil
}

func (s *swapService) ListForRequester(requesterID int64) ([]models.ShiftSwapRequest, error) {
	swaps, err := s.swapRepo.ListForRequester(requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list swap requests: %w", err)
	}
	return swaps, nil
}

func (s *swapService) ListPendingForTarget(targetID int64) ([]models.ShiftSwapRequest, error) {
	swaps, err := s.swapRepo.ListPendingForTarget(targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list swap requests: %w", err)
	}
	return swaps, nil
}
