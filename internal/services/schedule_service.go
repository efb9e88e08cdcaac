package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"
	"staff_rota_backend/internal/repositories"
)

var (
	ErrInvalidWeekStart  = errors.New("week start must be a Monday date")
	ErrDateOutsideWeek   = errors.New("shift date outside the requested week")
	ErrUserNotInGroup    = errors.New("user does not belong to the role group")
	ErrUnknownShiftType  = errors.New("shift type not offered for this role and day")
	ErrMissingCustomTime = errors.New("shift type requires custom start and end times")
)

// ShiftAssignment is one cell of a week save.
type ShiftAssignment struct {
	UserID      int64   `json:"user_id" binding:"required"`
	ShiftDate   string  `json:"shift_date" binding:"required"` // YYYY-MM-DD
	ShiftType   string  `json:"shift_type" binding:"required"`
	CustomStart *string `json:"custom_start,omitempty"`
	CustomEnd   *string `json:"custom_end,omitempty"`
}

// SaveWeekRequest DTO. Assignments fully replace the group's week.
type SaveWeekRequest struct {
	WeekStart   string            `json:"week_start" binding:"required"` // Monday, YYYY-MM-DD
	Publish     bool              `json:"publish"`
	Assignments []ShiftAssignment `json:"assignments"`
}

// ScheduleEntry is a published shift enriched with its display window.
type ScheduleEntry struct {
	models.ScheduledShift
	TimeWindow     string `json:"time_window"`
	SwapPending    bool   `json:"swap_pending,omitempty"`
	VolunteerState string `json:"volunteer_state,omitempty"`
}

// AvailabilityGridRow is one staff member's row of the scheduler grid.
type AvailabilityGridRow struct {
	User         models.User                        `json:"user"`
	Availability map[string][]string                `json:"availability"` // date -> submitted types (Double expanded)
	Assignments  map[string][]models.ScheduledShift `json:"assignments"`  // date -> scheduled rows
}

// AvailabilityGrid is the scheduler's read model for one group and week.
type AvailabilityGrid struct {
	Group          RoleGroup                                        `json:"group"`
	Week           []string                                         `json:"week"` // YYYY-MM-DD, Monday first
	Rows           []AvailabilityGridRow                            `json:"rows"`
	StaffingStatus map[string]map[string]string                     `json:"staffing_status"` // role -> date -> status
	Requirements   map[string]map[string]models.StaffingRequirement `json:"requirements"`
}

// ScheduleService owns week saves and schedule reads.
type ScheduleService interface {
	SaveWeek(groupName string, req SaveWeekRequest) error
	ReadPublished(groupName string, weekStart string) (map[string][]ScheduleEntry, error)
	MySchedule(userID int64, now time.Time) ([]ScheduleEntry, error)
	GetAvailabilityGrid(groupName string, weekStart string) (*AvailabilityGrid, error)
	ExportWeekCSV(groupName string, weekStart string) ([]byte, error)
}

type scheduleService struct {
	scheduleRepo     repositories.ScheduleRepository
	availabilityRepo repositories.AvailabilityRepository
	userRepo         repositories.UserRepository
	swapRepo         repositories.SwapRepository
	volunteerRepo    repositories.VolunteerRepository
	staffingSvc      StaffingService
	notifier         Notifier
	db               repositories.Database
}

// NewScheduleService creates a new instance of ScheduleService.
func NewScheduleService(
	scheduleRepo repositories.ScheduleRepository,
	availabilityRepo repositories.AvailabilityRepository,
	userRepo repositories.UserRepository,
	swapRepo repositories.SwapRepository,
	volunteerRepo repositories.VolunteerRepository,
	staffingSvc StaffingService,
	notifier Notifier,
	db repositories.Database,
) ScheduleService {
	return &scheduleService{
		scheduleRepo:     scheduleRepo,
		availabilityRepo: availabilityRepo,
		userRepo:         userRepo,
		swapRepo:         swapRepo,
		volunteerRepo:    volunteerRepo,
		staffingSvc:      staffingSvc,
		notifier:         notifier,
		db:               db,
	}
}

func parseMonday(weekStart string) (WeekWindow, error) {
	day, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return WeekWindow{}, fmt.Errorf("%w: %q", ErrInvalidWeekStart, weekStart)
	}
	day = day.UTC()
	if day.Weekday() != time.Monday {
		return WeekWindow{}, fmt.Errorf("%w: %s is a %s", ErrInvalidWeekStart, weekStart, day.Weekday())
	}
	return CurrentWeek(day), nil
}

func (s *scheduleService) groupUsers(groupName string) (RoleGroup, []models.User, map[int64]models.User, error) {
	group, ok := RoleGroupByName(groupName)
	if !ok {
		return RoleGroup{}, nil, nil, fmt.Errorf("%w: %q", ErrUnknownRoleGroup, groupName)
	}
	users, err := s.userRepo.GetUsersByRoles(group.Roles)
	if err != nil {
		return RoleGroup{}, nil, nil, fmt.Errorf("failed to load group members: %w", err)
	}
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return group, users, byID, nil
}

// SaveWeek atomically replaces the group's schedule for one week. Concurrent
// saves for the same group serialize on a Postgres advisory lock, so the last
// committed save wins wholesale and interleaved writes cannot mix two
// submissions.
func (s *scheduleService) SaveWeek(groupName string, req SaveWeekRequest) error {
	week, err := parseMonday(req.WeekStart)
	if err != nil {
		return err
	}
	group, _, usersByID, err := s.groupUsers(groupName)
	if err != nil {
		return err
	}

	shifts := make([]models.ScheduledShift, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		if _, ok := usersByID[a.UserID]; !ok {
			return fmt.Errorf("%w: user %d", ErrUserNotInGroup, a.UserID)
		}
		shiftDate, err := time.Parse("2006-01-02", a.ShiftDate)
		if err != nil || !week.Contains(shiftDate) {
			return fmt.Errorf("%w: %s", ErrDateOutsideWeek, a.ShiftDate)
		}
		def, ok := DefinitionFor(group.CatalogRole, WeekdayName(shiftDate), a.ShiftType)
		if !ok {
			return fmt.Errorf("%w: %q on %s", ErrUnknownShiftType, a.ShiftType, WeekdayName(shiftDate))
		}
		if def.RequiresCustomTimes() {
			if a.CustomStart == nil || a.CustomEnd == nil || *a.CustomStart == "" || *a.CustomEnd == "" {
				return fmt.Errorf("%w: %q on %s", ErrMissingCustomTime, a.ShiftType, a.ShiftDate)
			}
		}
		shifts = append(shifts, models.ScheduledShift{
			UserID:      a.UserID,
			ShiftDate:   shiftDate.UTC(),
			ShiftType:   a.ShiftType,
			CustomStart: a.CustomStart,
			CustomEnd:   a.CustomEnd,
			Published:   req.Publish,
		})
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.scheduleRepo.AdvisoryLockRoleGroup(tx, group.Name); err != nil {
		return err
	}
	userIDs := make([]int64, 0, len(usersByID))
	for id := range usersByID {
		userIDs = append(userIDs, id)
	}
	if err := s.scheduleRepo.DeleteWeekForUsers(tx, userIDs, week.Monday, week.Sunday()); err != nil {
		return err
	}
	for i := range shifts {
		if _, err := s.scheduleRepo.InsertShift(tx, &shifts[i]); err != nil {
			return err
		}
	}

	if req.Publish {
		body := fmt.Sprintf("The %s schedule for the week of %s has been published.", group.Name, week.Monday.Format("2 January 2006"))
		if err := s.notifier.NotifyRoles(tx, group.Roles, models.AnnouncementSchedule, "Schedule published", body, nil); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit week save: %w", err)
	}
	return nil
}

// ReadPublished returns the group's published assignments keyed by date.
func (s *scheduleService) ReadPublished(groupName string, weekStart string) (map[string][]ScheduleEntry, error) {
	week, err := parseMonday(weekStart)
	if err != nil {
		return nil, err
	}
	group, _, usersByID, err := s.groupUsers(groupName)
	if err != nil {
		return nil, err
	}
	userIDs := make([]int64, 0, len(usersByID))
	for id := range usersByID {
		userIDs = append(userIDs, id)
	}

	shifts, err := s.scheduleRepo.GetPublishedForUsersWeek(userIDs, week.Monday, week.Sunday())
	if err != nil {
		return nil, fmt.Errorf("failed to load published schedule: %w", err)
	}

	byDate := make(map[string][]ScheduleEntry)
	for _, shift := range shifts {
		dateKey := shift.ShiftDate.Format("2006-01-02")
		byDate[dateKey] = append(byDate[dateKey], ScheduleEntry{
			ScheduledShift: shift,
			TimeWindow:     DisplayWindow(group.CatalogRole, WeekdayName(shift.ShiftDate), shift.ShiftType, shift.CustomStart, shift.CustomEnd),
		})
	}
	return byDate, nil
}

// MySchedule returns the user's published shifts for the current week with
// any in-flight swap or volunteer state attached.
func (s *scheduleService) MySchedule(userID int64, now time.Time) ([]ScheduleEntry, error) {
	user, err := s.userRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	catalogRole := catalogRoleForUser(user)

	week := CurrentWeek(now)
	shifts, err := s.scheduleRepo.GetPublishedForUsersWeek([]int64{userID}, week.Monday, week.Sunday())
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	entries := make([]ScheduleEntry, 0, len(shifts))
	for _, shift := range shifts {
		entry := ScheduleEntry{
			ScheduledShift: shift,
			TimeWindow:     DisplayWindow(catalogRole, WeekdayName(shift.ShiftDate), shift.ShiftType, shift.CustomStart, shift.CustomEnd),
		}
		pending, err := s.swapRepo.PendingExistsForSchedule(s.db, shift.ID)
		if err != nil {
			return nil, err
		}
		entry.SwapPending = pending
		active, err := s.volunteerRepo.ActiveExistsForSchedule(s.db, shift.ID)
		if err != nil {
			return nil, err
		}
		if active {
			entry.VolunteerState = "Active"
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// catalogRoleForUser picks the user's primary schedulable role for display
// timing. Users outside every group fall back to the manager rules.
func catalogRoleForUser(user *models.User) string {
	for _, name := range RoleGroupNames() {
		group, _ := RoleGroupByName(name)
		if user.HasAnyRole(group.Roles...) {
			return group.CatalogRole
		}
	}
	return "manager"
}

// GetAvailabilityGrid assembles the scheduler's view: each group member's
// submitted availability and current assignments, plus per-role staffing
// status for every day of the week.
func (s *scheduleService) GetAvailabilityGrid(groupName string, weekStart string) (*AvailabilityGrid, error) {
	week, err := parseMonday(weekStart)
	if err != nil {
		return nil, err
	}
	group, users, usersByID, err := s.groupUsers(groupName)
	if err != nil {
		return nil, err
	}
	userIDs := make([]int64, 0, len(usersByID))
	for id := range usersByID {
		userIDs = append(userIDs, id)
	}

	submissions, err := s.availabilityRepo.GetForUsersWeek(userIDs, week.Monday, week.Sunday())
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	assignments, err := s.scheduleRepo.GetForUsersWeek(userIDs, week.Monday, week.Sunday())
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	grid := &AvailabilityGrid{
		Group:          group,
		StaffingStatus: make(map[string]map[string]string),
		Requirements:   make(map[string]map[string]models.StaffingRequirement),
	}
	for _, day := range week.Days {
		grid.Week = append(grid.Week, day.Format("2006-01-02"))
	}

	availByUser := make(map[int64]map[string][]string)
	for _, sub := range submissions {
		dateKey := sub.ShiftDate.Format("2006-01-02")
		if availByUser[sub.UserID] == nil {
			availByUser[sub.UserID] = make(map[string][]string)
		}
		// A consolidated Double is shown as Day+Night so both slots render
		// as available.
		if sub.ShiftType == models.ShiftDouble {
			availByUser[sub.UserID][dateKey] = append(availByUser[sub.UserID][dateKey], models.ShiftDay, models.ShiftNight, models.ShiftDouble)
		} else {
			availByUser[sub.UserID][dateKey] = append(availByUser[sub.UserID][dateKey], sub.ShiftType)
		}
	}
	assignByUser := make(map[int64]map[string][]models.ScheduledShift)
	assignedUsersPerDay := make(map[string]map[int64]struct{})
	for _, shift := range assignments {
		dateKey := shift.ShiftDate.Format("2006-01-02")
		if assignByUser[shift.UserID] == nil {
			assignByUser[shift.UserID] = make(map[string][]models.ScheduledShift)
		}
		assignByUser[shift.UserID][dateKey] = append(assignByUser[shift.UserID][dateKey], shift)
		if assignedUsersPerDay[dateKey] == nil {
			assignedUsersPerDay[dateKey] = make(map[int64]struct{})
		}
		assignedUsersPerDay[dateKey][shift.UserID] = struct{}{}
	}

	for _, user := range users {
		row := AvailabilityGridRow{
			User:         user,
			Availability: availByUser[user.ID],
			Assignments:  assignByUser[user.ID],
		}
		if row.Availability == nil {
			row.Availability = map[string][]string{}
		}
		if row.Assignments == nil {
			row.Assignments = map[string][]models.ScheduledShift{}
		}
		grid.Rows = append(grid.Rows, row)
	}

	for _, roleName := range group.Roles {
		reqs, err := s.staffingSvc.GetRequirementsForWeek(roleName, week)
		if err != nil {
			return nil, err
		}
		grid.Requirements[roleName] = reqs
		statusByDate := make(map[string]string, 7)
		for _, dateKey := range grid.Week {
			minStaff := 0
			var maxStaff *int
			if req, ok := reqs[dateKey]; ok {
				minStaff = req.MinStaff
				maxStaff = req.MaxStaff
			}
			// One head per user per day, counted only against the roles
			// that user holds.
			assigned := 0
			for userID := range assignedUsersPerDay[dateKey] {
				if u, ok := usersByID[userID]; ok && u.HasRole(roleName) {
					assigned++
				}
			}
			statusByDate[dateKey] = EvaluateStaffing(assigned, minStaff, maxStaff)
		}
		grid.StaffingStatus[roleName] = statusByDate
	}
	return grid, nil
}

// ExportWeekCSV renders the group's published week as CSV with columns
// Date, Day, Staff Member, Role, Assigned Shift.
func (s *scheduleService) ExportWeekCSV(groupName string, weekStart string) ([]byte, error) {
	week, err := parseMonday(weekStart)
	if err != nil {
		return nil, err
	}
	group, _, usersByID, err := s.groupUsers(groupName)
	if err != nil {
		return nil, err
	}
	userIDs := make([]int64, 0, len(usersByID))
	for id := range usersByID {
		userIDs = append(userIDs, id)
	}
	shifts, err := s.scheduleRepo.GetPublishedForUsersWeek(userIDs, week.Monday, week.Sunday())
	if err != nil {
		return nil, fmt.Errorf("failed to load published schedule: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Date", "Day", "Staff Member", "Role", "Assigned Shift"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, shift := range shifts {
		name := shift.User.Username
		if member, ok := usersByID[shift.UserID]; ok && member.FullName != nil {
			name = *member.FullName
		}
		window := DisplayWindow(group.CatalogRole, WeekdayName(shift.ShiftDate), shift.ShiftType, shift.CustomStart, shift.CustomEnd)
		cell := shift.ShiftType
		if window != "" {
			cell = fmt.Sprintf("%s %s", shift.ShiftType, window)
		}
		record := []string{
			shift.ShiftDate.Format("2006-01-02"),
			WeekdayName(shift.ShiftDate),
			name,
			group.CatalogRole,
			cell,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
