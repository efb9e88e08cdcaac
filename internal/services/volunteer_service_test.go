package services

import (
	"testing"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVolunteerFixture() (*memStore, VolunteerService) {
	store := newMemStore()
	svc := NewVolunteerService(
		&fakeVolunteerRepo{store: store},
		&fakeSwapRepo{store: store},
		&fakeScheduleRepo{store: store},
		&fakeUserRepo{store: store},
		&fakeNotifier{store: store},
		fakeDB{},
	)
	return store, svc
}

var cycleDate = time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC)

func TestRelinquish(t *testing.T) {
	store, svc := newVolunteerFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	shift := store.addShift(1, cycleDate, models.ShiftDay, true)

	t.Run("not owner", func(t *testing.T) {
		_, err := svc.Relinquish(2, RelinquishRequest{ScheduleID: shift.ID})
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("success keeps the shift assigned", func(t *testing.T) {
		cycle, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: shift.ID})
		require.NoError(t, err)
		assert.Equal(t, models.VolunteerOpen, cycle.Status)
		assert.Equal(t, int64(1), store.shifts[shift.ID].UserID)
	})

	t.Run("second relinquish is already cycled", func(t *testing.T) {
		_, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: shift.ID})
		assert.ErrorIs(t, err, ErrAlreadyCycled)
	})
}

func TestRelinquishRejectsShiftWithPendingSwap(t *testing.T) {
	store, svc := newVolunteerFixture()
	store.addUser(1, "alice", "waiter")
	shift := store.addShift(1, cycleDate, models.ShiftDay, true)
	store.nextSwapID++
	store.swaps[store.nextSwapID] = &models.ShiftSwapRequest{
		ID: store.nextSwapID, ScheduleID: shift.ID, RequesterID: 1, TargetID: 2, Status: models.SwapPending,
	}

	_, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: shift.ID})
	assert.ErrorIs(t, err, ErrAlreadyCycled)
}

func TestVolunteer(t *testing.T) {
	store, svc := newVolunteerFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	store.addUser(3, "carol", "bartender")
	store.addUser(4, "dave", "waiter")
	shift := store.addShift(1, cycleDate, models.ShiftNight, true)

	cycle, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: shift.ID})
	require.NoError(t, err)

	t.Run("owner cannot volunteer", func(t *testing.T) {
		_, err := svc.Volunteer(1, cycle.ID)
		assert.ErrorIs(t, err, ErrSelfReference)
	})

	t.Run("role mismatch is ineligible", func(t *testing.T) {
		_, err := svc.Volunteer(3, cycle.ID)
		assert.ErrorIs(t, err, ErrIneligible)
	})

	t.Run("day holder may volunteer for a night shift", func(t *testing.T) {
		store.addShift(2, cycleDate, models.ShiftDay, true)
		got, err := svc.Volunteer(2, cycle.ID)
		require.NoError(t, err)
		assert.Contains(t, got.CandidateIDs, int64(2))
	})

	t.Run("duplicate volunteer", func(t *testing.T) {
		_, err := svc.Volunteer(2, cycle.ID)
		assert.ErrorIs(t, err, ErrAlreadyVolunteered)
	})

	t.Run("same type conflict is ineligible", func(t *testing.T) {
		store.addShift(4, cycleDate, models.ShiftNight, true)
		_, err := svc.Volunteer(4, cycle.ID)
		assert.ErrorIs(t, err, ErrIneligible)
	})
}

func TestVolunteerOnDecidedCycleFailsNotOpen(t *testing.T) {
	store, svc := newVolunteerFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	shift := store.addShift(1, cycleDate, models.ShiftNight, true)

	cycle, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: shift.ID})
	require.NoError(t, err)
	_, err = svc.Cancel(cycle.ID)
	require.NoError(t, err)

	_, err = svc.Volunteer(2, cycle.ID)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestApproveFailsClosedForNonCandidates(t *testing.T) {
	store, svc := newVolunteerFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	shift := store.addShift(1, cycleDate, models.ShiftNight, true)

	cycle, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: shift.ID})
	require.NoError(t, err)

	// Bob never volunteered; approving him must fail and change nothing.
	_, err = svc.Approve(cycle.ID, 2)
	assert.ErrorIs(t, err, ErrIneligible)
	assert.Equal(t, int64(1), store.shifts[shift.ID].UserID)
	assert.Equal(t, models.VolunteerOpen, store.cycles[cycle.ID].Status)
}

func TestApproveConsolidatesDayAndNightIntoOneDouble(t *testing.T) {
	store, svc := newVolunteerFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	offered := store.addShift(1, cycleDate, models.ShiftDay, true)
	store.addShift(2, cycleDate, models.ShiftNight, true)

	cycle, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: offered.ID})
	require.NoError(t, err)
	// Bob holds Night; a Day offer is compatible under the eligibility rules.
	_, err = svc.Volunteer(2, cycle.ID)
	require.NoError(t, err)

	approved, err := svc.Approve(cycle.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.VolunteerApproved, approved.Status)
	require.NotNil(t, approved.ApprovedVolunteerID)
	assert.Equal(t, int64(2), *approved.ApprovedVolunteerID)

	// Exactly one Double remains for Bob that date, no Day or Night rows.
	var doubles, dayNights int
	for _, s := range store.shifts {
		if s.UserID != 2 || !s.ShiftDate.Equal(cycleDate) {
			continue
		}
		switch s.ShiftType {
		case models.ShiftDouble:
			doubles++
		case models.ShiftDay, models.ShiftNight:
			dayNights++
		}
	}
	assert.Equal(t, 1, doubles)
	assert.Equal(t, 0, dayNights)
}

func TestApproveOnDecidedCycleFailsAlreadyTerminal(t *testing.T) {
	store, svc := newVolunteerFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	shift := store.addShift(1, cycleDate, models.ShiftNight, true)

	cycle, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: shift.ID})
	require.NoError(t, err)
	_, err = svc.Volunteer(2, cycle.ID)
	require.NoError(t, err)
	_, err = svc.Approve(cycle.ID, 2)
	require.NoError(t, err)

	_, err = svc.Approve(cycle.ID, 2)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
}

func TestCancelLeavesScheduleUntouched(t *testing.T) {
	store, svc := newVolunteerFixture()
	store.addUser(1, "alice", "waiter")
	shift := store.addShift(1, cycleDate, models.ShiftDay, true)

	cycle, err := svc.Relinquish(1, RelinquishRequest{ScheduleID: shift.ID})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(cycle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VolunteerCancelled, cancelled.Status)
	assert.Equal(t, int64(1), store.shifts[shift.ID].UserID)
	assert.Equal(t, models.ShiftDay, store.shifts[shift.ID].ShiftType)
}
