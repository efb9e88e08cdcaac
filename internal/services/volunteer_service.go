package services

import (
	"errors"
	"fmt"

	"staff_rota_backend/internal/models"
	"staff_rota_backend/internal/repositories"
)

var (
	ErrCycleNotFound      = errors.New("volunteer cycle not found")
	ErrNotOpen            = errors.New("cycle is no longer open for volunteers")
	ErrAlreadyVolunteered = errors.New("already volunteered for this shift")
)

// RelinquishRequest DTO
type RelinquishRequest struct {
	ScheduleID int64   `json:"schedule_id" binding:"required"`
	Reason     *string `json:"reason,omitempty"`
}

// VolunteerService owns the volunteering workflow:
// Open -> PendingApproval -> Approved | Cancelled.
type VolunteerService interface {
	Relinquish(ownerID int64, req RelinquishRequest) (*models.VolunteeredShift, error)
	Volunteer(candidateID, cycleID int64) (*models.VolunteeredShift, error)
	Approve(cycleID, volunteerID int64) (*models.VolunteeredShift, error)
	Cancel(cycleID int64) (*models.VolunteeredShift, error)
	ListOpen(viewerID *int64) ([]models.VolunteeredShift, error)
	ListForOwner(ownerID int64) ([]models.VolunteeredShift, error)
}

type volunteerService struct {
	volunteerRepo repositories.VolunteerRepository
	swapRepo      repositories.SwapRepository
	scheduleRepo  repositories.ScheduleRepository
	userRepo      repositories.UserRepository
	notifier      Notifier
	db            repositories.Database
}

// NewVolunteerService creates a new instance of VolunteerService.
func NewVolunteerService(
	volunteerRepo repositories.VolunteerRepository,
	swapRepo repositories.SwapRepository,
	scheduleRepo repositories.ScheduleRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	db repositories.Database,
) VolunteerService {
	return &volunteerService{
		volunteerRepo: volunteerRepo,
		swapRepo:      swapRepo,
		scheduleRepo:  scheduleRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		db:            db,
	}
}

// Relinquish offers the owner's shift to the eligible pool. The shift stays
// assigned to the owner until a volunteer is approved. A shift already inside
// an active cycle or a pending swap cannot be offered again.
func (s *volunteerService) Relinquish(ownerID int64, req RelinquishRequest) (*models.VolunteeredShift, error) {
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
	if shift.UserID != ownerID {
		return nil, ErrNotOwner
	}

	active, err := s.volunteerRepo.ActiveExistsForSchedule(tx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrAlreadyCycled
	}
	pendingSwap, err := s.swapRepo.PendingExistsForSchedule(tx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if pendingSwap {
		return nil, ErrAlreadyCycled
	}

	owner, err := s.userRepo.FindUserByID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}

	cycle := &models.VolunteeredShift{
		ScheduleID: req.ScheduleID,
		OwnerID:    ownerID,
	}
	if _, err := s.volunteerRepo.Create(tx, cycle); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyCycled
		}
		return nil, fmt.Errorf("failed to open volunteer cycle: %w", err)
	}

	body := fmt.Sprintf("%s relinquished their %s shift on %s. Volunteers welcome.",
		owner.Username, shift.ShiftType, shift.ShiftDate.Format("Monday 2 January"))
	if req.Reason != nil && *req.Reason != "" {
		body = fmt.Sprintf("%s Reason: %s", body, *req.Reason)
	}
	if err := s.notifier.NotifyRoles(tx, owner.RoleNames(), models.AnnouncementVolunteer, "Shift available", body, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit volunteer cycle: %w", err)
	}
	cycle.Schedule = shift
	return cycle, nil
}

// Volunteer adds the candidate to an Open cycle's pool.
func (s *volunteerService) Volunteer(candidateID, cycleID int64) (*models.VolunteeredShift, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cycle, err := s.volunteerRepo.GetByID(tx, cycleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to load volunteer cycle: %w", err)
	}
	if cycle.Status != models.VolunteerOpen {
		return nil, ErrNotOpen
	}
	if cycle.OwnerID == candidateID {
		return nil, ErrSelfReference
	}
	if cycle.HasCandidate(candidateID) {
		return nil, ErrAlreadyVolunteered
	}

	candidate, err := s.userRepo.FindUserByID(candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	owner, err := s.userRepo.FindUserByID(cycle.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}

	eligible, err := s.candidateEligible(tx, candidate, owner, cycle.Schedule)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrIneligible
	}

	if err := s.volunteerRepo.AddCandidate(tx, cycleID, candidateID); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyVolunteered
		}
		return nil, fmt.Errorf("failed to record volunteer: %w", err)
	}

	body := fmt.Sprintf("%s volunteered for the %s shift on %s (now %d volunteers).",
		candidate.Username, cycle.Schedule.ShiftType,
		cycle.Schedule.ShiftDate.Format("Monday 2 January"), len(cycle.CandidateIDs)+1)
	if err := s.notifier.NotifyRoles(tx, []string{"manager", "general_manager"}, models.AnnouncementVolunteer, "New volunteer for open shift", body, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit volunteer: %w", err)
	}
	cycle.CandidateIDs = append(cycle.CandidateIDs, candidateID)
	return cycle, nil
}

func (s *volunteerService) candidateEligible(executor repositories.SQLExecutor, candidate, owner *models.User, shift *models.ScheduledShift) (bool, error) {
	if candidate.IsSuspended {
		return false, nil
	}
	held, err := s.scheduleRepo.GetShiftsForUserDate(executor, candidate.ID, shift.ShiftDate)
	if err != nil {
		return false, fmt.Errorf("failed to load candidate's shifts: %w", err)
	}
	heldTypes := make([]string, 0, len(held))
	for _, h := range held {
		if h.ID == shift.ID {
			continue
		}
		heldTypes = append(heldTypes, h.ShiftType)
	}
	return EligibleForShift(candidate.RoleNames(), owner.RoleNames(), heldTypes, shift.ShiftType), nil
}

// Approve reassigns the shift to the chosen volunteer, re-applies the
// Day+Night consolidation for the new owner on that date, and closes the
// cycle. Approving someone who never volunteered fails closed with
// Ineligible regardless of what the caller claims.
func (s *volunteerService) Approve(cycleID, volunteerID int64) (*models.VolunteeredShift, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cycle, err := s.volunteerRepo.GetByID(tx, cycleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to load volunteer cycle: %w", err)
	}
	if !cycle.HasCandidate(volunteerID) {
		return nil, ErrIneligible
	}

	volunteer, err := s.userRepo.FindUserByID(volunteerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCovererMissing
		}
		return nil, fmt.Errorf("failed to load volunteer: %w", err)
	}
	if volunteer.IsSuspended {
		return nil, ErrCovererMissing
	}

	decided, err := s.volunteerRepo.ApproveDecision(tx, cycleID, volunteerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, err
	}
	if !decided {
		return nil, ErrAlreadyTerminal
	}

	if err := s.scheduleRepo.UpdateShiftOwner(tx, cycle.ScheduleID, volunteerID); err != nil {
		return nil, fmt.Errorf("failed to reassign shift: %w", err)
	}
	if err := s.consolidateAfterAssignment(tx, volunteerID, cycle.ScheduleID); err != nil {
		return nil, err
	}

	body := fmt.Sprintf("The %s shift on %s has been assigned to %s.",
		cycle.Schedule.ShiftType, cycle.Schedule.ShiftDate.Format("Monday 2 January"), volunteer.Username)
	if err := s.notifier.NotifyUser(tx, cycle.OwnerID, models.AnnouncementVolunteer, "Shift volunteering approved", body, nil); err != nil {
		return nil, err
	}
	if err := s.notifier.NotifyUser(tx, volunteerID, models.AnnouncementVolunteer, "Shift volunteering approved", body, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit volunteer approval: %w", err)
	}
	cycle.Status = models.VolunteerApproved
	cycle.ApprovedVolunteerID = &volunteerID
	return cycle, nil
}

// consolidateAfterAssignment collapses a Day+Night pair held by the new owner
// on the shift's date into a single Double row.
func (s *volunteerService) consolidateAfterAssignment(executor repositories.SQLExecutor, ownerID, scheduleID int64) error {
	assigned, err := s.scheduleRepo.GetShiftByID(executor, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to reload shift: %w", err)
	}
	held, err := s.scheduleRepo.GetShiftsForUserDate(executor, ownerID, assigned.ShiftDate)
	if err != nil {
		return fmt.Errorf("failed to load owner's shifts: %w", err)
	}

	var hasDay, hasNight bool
	var dayNightIDs []int64
	for _, h := range held {
		switch h.ShiftType {
		case models.ShiftDay:
			hasDay = true
			dayNightIDs = append(dayNightIDs, h.ID)
		case models.ShiftNight:
			hasNight = true
			dayNightIDs = append(dayNightIDs, h.ID)
		}
	}
	if !hasDay || !hasNight {
		return nil
	}

	if err := s.scheduleRepo.DeleteShiftsByIDs(executor, dayNightIDs); err != nil {
		return err
	}
	double := &models.ScheduledShift{
		UserID:    ownerID,
		ShiftDate: assigned.ShiftDate,
		ShiftType: models.ShiftDouble,
		Published: assigned.Published,
	}
	if _, err := s.scheduleRepo.InsertShift(executor, double); err != nil {
		return err
	}
	return nil
}

// Cancel closes the cycle without touching the schedule; the owner keeps the
// shift since relinquishing never vacated it.
func (s *volunteerService) Cancel(cycleID int64) (*models.VolunteeredShift, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cycle, err := s.volunteerRepo.GetByID(tx, cycleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to load volunteer cycle: %w", err)
	}

	decided, err := s.volunteerRepo.UpdateDecision(tx, cycleID, models.VolunteerCancelled)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, err
	}
	if !decided {
		return nil, ErrAlreadyTerminal
	}

	body := fmt.Sprintf("The volunteering cycle for the %s shift on %s was cancelled. The shift stays with its owner.",
		cycle.Schedule.ShiftType, cycle.Schedule.ShiftDate.Format("Monday 2 January"))
	if err := s.notifier.NotifyUser(tx, cycle.OwnerID, models.AnnouncementVolunteer, "Shift volunteering cancelled", body, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	cycle.Status = models.VolunteerCancelled
	return cycle, nil
}

// ListOpen returns active cycles. When viewerID is set, cycles the viewer is
// ineligible for are filtered out, mirroring the dashboard's pre-filtering.
func (s *volunteerService) ListOpen(viewerID *int64) ([]models.VolunteeredShift, error) {
	cycles, err := s.volunteerRepo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list volunteer cycles: %w", err)
	}
	if viewerID == nil {
		return cycles, nil
	}

	viewer, err := s.userRepo.FindUserByID(*viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer: %w", err)
	}

	filtered := make([]models.VolunteeredShift, 0, len(cycles))
	for _, cycle := range cycles {
		if cycle.Status != models.VolunteerOpen || cycle.OwnerID == *viewerID || cycle.HasCandidate(*viewerID) {
			continue
		}
		owner, err := s.userRepo.FindUserByID(cycle.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load owner: %w", err)
		}
		eligible, err := s.candidateEligible(s.db, viewer, owner, cycle.Schedule)
		if err != nil {
			return nil, err
		}
		if eligible {
			filtered = append(filtered, cycle)
		}
	}
	return filtered, nil
}

func (s *volunteerService) ListForOwner(ownerID int64) ([]models.VolunteeredShift, error) {
	cycles, err := s.volunteerRepo.ListForOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list volunteer cycles: %w", err)
	}
	return cycles, nil
}
