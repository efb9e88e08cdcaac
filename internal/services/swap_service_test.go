package services

import (
	"testing"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSwapFixture() (*memStore, SwapService) {
	store := newMemStore()
	svc := NewSwapService(
		&fakeSwapRepo{store: store},
		&fakeVolunteerRepo{store: store},
		&fakeScheduleRepo{store: store},
		&fakeUserRepo{store: store},
		&fakeNotifier{store: store},
		fakeDB{},
	)
	return store, svc
}

var swapDate = time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

func TestSwapRequest(t *testing.T) {
	store, svc := newSwapFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	store.addUser(3, "carol", "bartender")
	shift := store.addShift(1, swapDate, models.ShiftNight, true)

	t.Run("self reference", func(t *testing.T) {
		_, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 1})
		assert.ErrorIs(t, err, ErrSelfReference)
	})

	t.Run("not owner", func(t *testing.T) {
		_, err := svc.Request(2, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 3})
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("missing shift", func(t *testing.T) {
		_, err := svc.Request(1, RequestSwapRequest{ScheduleID: 999, TargetID: 2})
		assert.ErrorIs(t, err, ErrShiftNotFound)
	})

	t.Run("target without shared role", func(t *testing.T) {
		_, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 3})
		assert.ErrorIs(t, err, ErrIneligible)
	})

	t.Run("success", func(t *testing.T) {
		swap, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 2})
		require.NoError(t, err)
		assert.Equal(t, models.SwapPending, swap.Status)
	})

	t.Run("duplicate pending", func(t *testing.T) {
		_, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 2})
		assert.ErrorIs(t, err, ErrDuplicatePending)
	})
}

func TestSwapRequestRejectsActiveVolunteerCycle(t *testing.T) {
	store, svc := newSwapFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	shift := store.addShift(1, swapDate, models.ShiftNight, true)
	store.nextCycleID++
	store.cycles[store.nextCycleID] = &models.VolunteeredShift{
		ID: store.nextCycleID, ScheduleID: shift.ID, OwnerID: 1, Status: models.VolunteerOpen,
	}

	_, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 2})
	assert.ErrorIs(t, err, ErrAlreadyCycled)
}

func TestSwapApproveReassignsOwner(t *testing.T) {
	store, svc := newSwapFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	shift := store.addShift(1, swapDate, models.ShiftNight, true)

	swap, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 2})
	require.NoError(t, err)

	approved, err := svc.Approve(swap.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SwapApproved, approved.Status)
	assert.Equal(t, int64(2), store.shifts[shift.ID].UserID)
	// Swaps reassign as-is; no Day+Night consolidation runs.
	assert.Equal(t, models.ShiftNight, store.shifts[shift.ID].ShiftType)
}

func TestSwapApproveWithChosenCoverer(t *testing.T) {
	store, svc := newSwapFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	store.addUser(3, "dave", "waiter")
	store.addUser(4, "carol", "bartender")
	shift := store.addShift(1, swapDate, models.ShiftNight, true)

	swap, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 2})
	require.NoError(t, err)

	t.Run("ineligible coverer rejected", func(t *testing.T) {
		covererID := int64(4)
		_, err := svc.Approve(swap.ID, &covererID)
		assert.ErrorIs(t, err, ErrIneligible)
		assert.Equal(t, models.SwapPending, store.swaps[swap.ID].Status)
		assert.Equal(t, int64(1), store.shifts[shift.ID].UserID)
	})

	t.Run("requester as coverer rejected", func(t *testing.T) {
		covererID := int64(1)
		_, err := svc.Approve(swap.ID, &covererID)
		assert.ErrorIs(t, err, ErrSelfReference)
	})

	t.Run("approver picks a different coverer", func(t *testing.T) {
		covererID := int64(3)
		approved, err := svc.Approve(swap.ID, &covererID)
		require.NoError(t, err)
		assert.Equal(t, models.SwapApproved, approved.Status)
		assert.Equal(t, int64(3), approved.TargetID)
		assert.Equal(t, int64(3), store.shifts[shift.ID].UserID)
	})
}

func TestSwapApproveOnDecidedRequestFailsAlreadyTerminal(t *testing.T) {
	store, svc := newSwapFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	shift := store.addShift(1, swapDate, models.ShiftNight, true)

	swap, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 2})
	require.NoError(t, err)

	_, err = svc.Deny(swap.ID)
	require.NoError(t, err)

	_, err = svc.Approve(swap.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
	// The denied request never touched the schedule.
	assert.Equal(t, int64(1), store.shifts[shift.ID].UserID)
}

func TestSwapApproveMissingTargetFailsCovererMissing(t *testing.T) {
	store, svc := newSwapFixture()
	store.addUser(1, "alice", "waiter")
	store.addUser(2, "bob", "waiter")
	shift := store.addShift(1, swapDate, models.ShiftNight, true)

	swap, err := svc.Request(1, RequestSwapRequest{ScheduleID: shift.ID, TargetID: 2})
	require.NoError(t, err)

	store.users[2].IsSuspended = true
	_, err = svc.Approve(swap.ID, nil)
	assert.ErrorIs(t, err, ErrCovererMissing)
	assert.Equal(t, models.SwapPending, store.swaps[swap.ID].Status)
}
