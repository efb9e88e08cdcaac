package services

import (
	"database/sql"
	"time"

	"staff_rota_backend/internal/models"
	"staff_rota_backend/internal/repositories"
)

// In-memory doubles for the repository interfaces. The repositories ignore
// the executor argument; transactions are no-ops so the state machines can be
// exercised without a database.

type fakeTx struct{}

func (fakeTx) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (fakeTx) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (fakeTx) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (fakeTx) Commit() error                                   { return nil }
func (fakeTx) Rollback() error                                 { return nil }

type fakeDB struct{}

func (fakeDB) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (fakeDB) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (fakeDB) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (fakeDB) Begin() (repositories.Tx, error)                 { return fakeTx{}, nil }

type memStore struct {
	users  map[int64]*models.User
	shifts map[int64]*models.ScheduledShift
	swaps  map[int64]*models.ShiftSwapRequest
	cycles map[int64]*models.VolunteeredShift
	subs   map[int64][]models.ShiftSubmission

	nextShiftID int64
	nextSwapID  int64
	nextCycleID int64

	notices []string
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[int64]*models.User{},
		shifts: map[int64]*models.ScheduledShift{},
		swaps:  map[int64]*models.ShiftSwapRequest{},
		cycles: map[int64]*models.VolunteeredShift{},
		subs:   map[int64][]models.ShiftSubmission{},
	}
}

func (m *memStore) addUser(id int64, username string, roles ...string) *models.User {
	u := &models.User{ID: id, Username: username}
	for i, r := range roles {
		u.Roles = append(u.Roles, models.Role{ID: int64(i + 1), Name: r})
	}
	m.users[id] = u
	return u
}

func (m *memStore) addShift(userID int64, date time.Time, shiftType string, published bool) *models.ScheduledShift {
	m.nextShiftID++
	s := &models.ScheduledShift{
		ID:        m.nextShiftID,
		UserID:    userID,
		ShiftDate: date,
		ShiftType: shiftType,
		Published: published,
	}
	m.shifts[s.ID] = s
	return s
}

// --- UserRepository ---

type fakeUserRepo struct{ store *memStore }

func (f *fakeUserRepo) CreateUser(_ repositories.SQLExecutor, user *models.User, _ string, roleNames []string) (int64, error) {
	id := int64(len(f.store.users) + 1)
	user.ID = id
	for i, r := range roleNames {
		user.Roles = append(user.Roles, models.Role{ID: int64(i + 1), Name: r})
	}
	f.store.users[id] = user
	return id, nil
}

func (f *fakeUserRepo) FindUserByID(id int64) (*models.User, error) {
	u, ok := f.store.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindUserByUsername(username string) (*models.User, string, error) {
	for _, u := range f.store.users {
		if u.Username == username {
			cp := *u
			return &cp, "", nil
		}
	}
	return nil, "", repositories.ErrNotFound
}

func (f *fakeUserRepo) GetUsersByRoles(roleNames []string) ([]models.User, error) {
	var out []models.User
	for id := int64(1); id <= int64(len(f.store.users))+100; id++ {
		u, ok := f.store.users[id]
		if !ok || u.IsSuspended {
			continue
		}
		if u.HasAnyRole(roleNames...) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetRolesForUser(_ repositories.SQLExecutor, userID int64) ([]models.Role, error) {
	u, ok := f.store.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u.Roles, nil
}

// --- ScheduleRepository ---

type fakeScheduleRepo struct{ store *memStore }

func (f *fakeScheduleRepo) AdvisoryLockRoleGroup(repositories.SQLExecutor, string) error { return nil }

func (f *fakeScheduleRepo) DeleteWeekForUsers(_ repositories.SQLExecutor, userIDs []int64, weekStart, weekEnd time.Time) error {
	for id, s := range f.store.shifts {
		for _, uid := range userIDs {
			if s.UserID == uid && !s.ShiftDate.Before(weekStart) && !s.ShiftDate.After(weekEnd) {
				delete(f.store.shifts, id)
			}
		}
	}
	return nil
}

func (f *fakeScheduleRepo) InsertShift(_ repositories.SQLExecutor, shift *models.ScheduledShift) (int64, error) {
	f.store.nextShiftID++
	shift.ID = f.store.nextShiftID
	cp := *shift
	f.store.shifts[shift.ID] = &cp
	return shift.ID, nil
}

func (f *fakeScheduleRepo) GetShiftByID(_ repositories.SQLExecutor, id int64) (*models.ScheduledShift, error) {
	s, ok := f.store.shifts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	if u, ok := f.store.users[s.UserID]; ok {
		cp.User = u
	}
	return &cp, nil
}

func (f *fakeScheduleRepo) collect(match func(*models.ScheduledShift) bool) []models.ScheduledShift {
	var out []models.ScheduledShift
	for id := int64(1); id <= f.store.nextShiftID; id++ {
		if s, ok := f.store.shifts[id]; ok && match(s) {
			cp := *s
			if u, ok := f.store.users[s.UserID]; ok {
				cp.User = u
			}
			out = append(out, cp)
		}
	}
	return out
}

func (f *fakeScheduleRepo) GetPublishedForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error) {
	return f.collect(func(s *models.ScheduledShift) bool {
		if !s.Published || s.ShiftDate.Before(weekStart) || s.ShiftDate.After(weekEnd) {
			return false
		}
		for _, uid := range userIDs {
			if s.UserID == uid {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeScheduleRepo) GetForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error) {
	return f.collect(func(s *models.ScheduledShift) bool {
		if s.ShiftDate.Before(weekStart) || s.ShiftDate.After(weekEnd) {
			return false
		}
		for _, uid := range userIDs {
			if s.UserID == uid {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeScheduleRepo) GetShiftsForUserDate(_ repositories.SQLExecutor, userID int64, date time.Time) ([]models.ScheduledShift, error) {
	return f.collect(func(s *models.ScheduledShift) bool {
		return s.UserID == userID && s.ShiftDate.Equal(date)
	}), nil
}

func (f *fakeScheduleRepo) GetShiftsForUserWeek(userID int64, weekStart, weekEnd time.Time) ([]models.ScheduledShift, error) {
	return f.collect(func(s *models.ScheduledShift) bool {
		return s.UserID == userID && !s.ShiftDate.Before(weekStart) && !s.ShiftDate.After(weekEnd)
	}), nil
}

func (f *fakeScheduleRepo) UpdateShiftOwner(_ repositories.SQLExecutor, shiftID, newOwnerID int64) error {
	s, ok := f.store.shifts[shiftID]
	if !ok {
		return repositories.ErrNotFound
	}
	s.UserID = newOwnerID
	return nil
}

func (f *fakeScheduleRepo) UpdateShiftType(_ repositories.SQLExecutor, shiftID int64, shiftType string) error {
	s, ok := f.store.shifts[shiftID]
	if !ok {
		return repositories.ErrNotFound
	}
	s.ShiftType = shiftType
	return nil
}

func (f *fakeScheduleRepo) DeleteShiftsByIDs(_ repositories.SQLExecutor, ids []int64) error {
	for _, id := range ids {
		delete(f.store.shifts, id)
	}
	return nil
}

// --- SwapRepository ---

type fakeSwapRepo struct{ store *memStore }

func (f *fakeSwapRepo) Create(_ repositories.SQLExecutor, swap *models.ShiftSwapRequest) (int64, error) {
	f.store.nextSwapID++
	swap.ID = f.store.nextSwapID
	swap.Status = models.SwapPending
	cp := *swap
	f.store.swaps[swap.ID] = &cp
	return swap.ID, nil
}

func (f *fakeSwapRepo) GetByID(_ repositories.SQLExecutor, id int64) (*models.ShiftSwapRequest, error) {
	sw, ok := f.store.swaps[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *sw
	if sched, ok := f.store.shifts[sw.ScheduleID]; ok {
		cp.Schedule = sched
	}
	return &cp, nil
}

func (f *fakeSwapRepo) PendingExistsForSchedule(_ repositories.SQLExecutor, scheduleID int64) (bool, error) {
	for _, sw := range f.store.swaps {
		if sw.ScheduleID == scheduleID && sw.Status == models.SwapPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSwapRepo) UpdateDecision(_ repositories.SQLExecutor, id int64, status string) (bool, error) {
	sw, ok := f.store.swaps[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if sw.Status != models.SwapPending {
		return false, nil
	}
	sw.Status = status
	return true, nil
}

func (f *fakeSwapRepo) ApproveDecision(_ repositories.SQLExecutor, id, covererID int64) (bool, error) {
	sw, ok := f.store.swaps[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if sw.Status != models.SwapPending {
		return false, nil
	}
	sw.Status = models.SwapApproved
	sw.TargetID = covererID
	return true, nil
}

func (f *fakeSwapRepo) ListForRequester(requesterID int64) ([]models.ShiftSwapRequest, error) {
	var out []models.ShiftSwapRequest
	for _, sw := range f.store.swaps {
		if sw.RequesterID == requesterID {
			out = append(out, *sw)
		}
	}
	return out, nil
}

func (f *fakeSwapRepo) ListPendingForTarget(targetID int64) ([]models.ShiftSwapRequest, error) {
	var out []models.ShiftSwapRequest
	for _, sw := range f.store.swaps {
		if sw.TargetID == targetID && sw.Status == models.SwapPending {
			out = append(out, *sw)
		}
	}
	return out, nil
}

// --- VolunteerRepository ---

type fakeVolunteerRepo struct{ store *memStore }

func (f *fakeVolunteerRepo) Create(_ repositories.SQLExecutor, cycle *models.VolunteeredShift) (int64, error) {
	f.store.nextCycleID++
	cycle.ID = f.store.nextCycleID
	cycle.Status = models.VolunteerOpen
	cp := *cycle
	f.store.cycles[cycle.ID] = &cp
	return cycle.ID, nil
}

func (f *fakeVolunteerRepo) GetByID(_ repositories.SQLExecutor, id int64) (*models.VolunteeredShift, error) {
	c, ok := f.store.cycles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	cp.CandidateIDs = append([]int64(nil), c.CandidateIDs...)
	if sched, ok := f.store.shifts[c.ScheduleID]; ok {
		cp.Schedule = sched
	}
	return &cp, nil
}

func (f *fakeVolunteerRepo) ActiveExistsForSchedule(_ repositories.SQLExecutor, scheduleID int64) (bool, error) {
	for _, c := range f.store.cycles {
		if c.ScheduleID == scheduleID && (c.Status == models.VolunteerOpen || c.Status == models.VolunteerPendingApproval) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVolunteerRepo) AddCandidate(_ repositories.SQLExecutor, cycleID, userID int64) error {
	c, ok := f.store.cycles[cycleID]
	if !ok {
		return repositories.ErrNotFound
	}
	if c.HasCandidate(userID) {
		return repositories.ErrDuplicateKey
	}
	c.CandidateIDs = append(c.CandidateIDs, userID)
	return nil
}

func (f *fakeVolunteerRepo) UpdateDecision(_ repositories.SQLExecutor, id int64, status string) (bool, error) {
	c, ok := f.store.cycles[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if c.Status != models.VolunteerOpen && c.Status != models.VolunteerPendingApproval {
		return false, nil
	}
	c.Status = status
	return true, nil
}

func (f *fakeVolunteerRepo) ApproveDecision(_ repositories.SQLExecutor, id, volunteerID int64) (bool, error) {
	c, ok := f.store.cycles[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if c.Status != models.VolunteerOpen && c.Status != models.VolunteerPendingApproval {
		return false, nil
	}
	c.Status = models.VolunteerApproved
	c.ApprovedVolunteerID = &volunteerID
	return true, nil
}

func (f *fakeVolunteerRepo) ListActive() ([]models.VolunteeredShift, error) {
	var out []models.VolunteeredShift
	for id := int64(1); id <= f.store.nextCycleID; id++ {
		c, ok := f.store.cycles[id]
		if !ok {
			continue
		}
		if c.Status == models.VolunteerOpen || c.Status == models.VolunteerPendingApproval {
			cp := *c
			if sched, ok := f.store.shifts[c.ScheduleID]; ok {
				cp.Schedule = sched
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *fakeVolunteerRepo) ListForOwner(ownerID int64) ([]models.VolunteeredShift, error) {
	var out []models.VolunteeredShift
	for _, c := range f.store.cycles {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// --- AvailabilityRepository ---

type fakeAvailabilityRepo struct{ store *memStore }

func (f *fakeAvailabilityRepo) ReplaceForUserWeek(_ repositories.SQLExecutor, userID int64, weekStart, weekEnd time.Time, submissions []models.ShiftSubmission) error {
	var kept []models.ShiftSubmission
	for _, s := range f.store.subs[userID] {
		if s.ShiftDate.Before(weekStart) || s.ShiftDate.After(weekEnd) {
			kept = append(kept, s)
		}
	}
	f.store.subs[userID] = append(kept, submissions...)
	return nil
}

func (f *fakeAvailabilityRepo) GetForUserWeek(userID int64, weekStart, weekEnd time.Time) ([]models.ShiftSubmission, error) {
	var out []models.ShiftSubmission
	for _, s := range f.store.subs[userID] {
		if !s.ShiftDate.Before(weekStart) && !s.ShiftDate.After(weekEnd) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) GetForUsersWeek(userIDs []int64, weekStart, weekEnd time.Time) ([]models.ShiftSubmission, error) {
	var out []models.ShiftSubmission
	for _, uid := range userIDs {
		subs, _ := f.GetForUserWeek(uid, weekStart, weekEnd)
		out = append(out, subs...)
	}
	return out, nil
}

// --- RequirementRepository ---

type fakeRequirementRepo struct {
	reqs []models.StaffingRequirement
}

func (f *fakeRequirementRepo) Upsert(_ repositories.SQLExecutor, req *models.StaffingRequirement) error {
	for i := range f.reqs {
		if f.reqs[i].RoleName == req.RoleName && f.reqs[i].ShiftDate.Equal(req.ShiftDate) {
			f.reqs[i] = *req
			return nil
		}
	}
	req.ID = int64(len(f.reqs) + 1)
	f.reqs = append(f.reqs, *req)
	return nil
}

func (f *fakeRequirementRepo) GetForRoleWeek(roleName string, weekStart, weekEnd time.Time) ([]models.StaffingRequirement, error) {
	var out []models.StaffingRequirement
	for _, r := range f.reqs {
		if r.RoleName == roleName && !r.ShiftDate.Before(weekStart) && !r.ShiftDate.After(weekEnd) {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- Notifier ---

type fakeNotifier struct{ store *memStore }

func (f *fakeNotifier) NotifyRoles(_ repositories.SQLExecutor, _ []string, category, title, _ string, _ *string) error {
	f.store.notices = append(f.store.notices, category+":"+title)
	return nil
}

func (f *fakeNotifier) NotifyUser(_ repositories.SQLExecutor, _ int64, category, title, _ string, _ *string) error {
	f.store.notices = append(f.store.notices, category+":"+title)
	return nil
}
