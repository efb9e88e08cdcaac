package services

import (
	"testing"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvailabilityFixture() (*memStore, AvailabilityService) {
	store := newMemStore()
	svc := NewAvailabilityService(&fakeAvailabilityRepo{store: store}, fakeDB{})
	return store, svc
}

// Window for these tests: Tuesday 2025-06-03 10:00 -> Monday 2025-06-09 14:00,
// collecting availability for the week of Monday 2025-06-09.
var openInstant = time.Date(2025, time.June, 5, 12, 0, 0, 0, time.UTC)

func TestSubmitRejectsClosedWindow(t *testing.T) {
	_, svc := newAvailabilityFixture()

	_, err := svc.Submit(1, SubmitAvailabilityRequest{
		Entries: []AvailabilityEntry{{ShiftDate: "2025-06-10", ShiftType: models.ShiftDay}},
	}, time.Date(2025, time.June, 3, 9, 59, 59, 0, time.UTC))
	assert.ErrorIs(t, err, ErrWindowClosed)
}

func TestSubmitRejectsDatesOutsideUpcomingWeek(t *testing.T) {
	_, svc := newAvailabilityFixture()

	// Current week's Thursday, not the upcoming week.
	_, err := svc.Submit(1, SubmitAvailabilityRequest{
		Entries: []AvailabilityEntry{{ShiftDate: "2025-06-05", ShiftType: models.ShiftDay}},
	}, openInstant)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSubmitRejectsUnknownShiftType(t *testing.T) {
	_, svc := newAvailabilityFixture()

	_, err := svc.Submit(1, SubmitAvailabilityRequest{
		Entries: []AvailabilityEntry{{ShiftDate: "2025-06-10", ShiftType: models.ShiftSplitDouble}},
	}, openInstant)
	assert.ErrorIs(t, err, ErrInvalidShiftType)
}

func TestSubmitConsolidatesDayAndNightIntoDouble(t *testing.T) {
	_, svc := newAvailabilityFixture()

	subs, err := svc.Submit(1, SubmitAvailabilityRequest{
		Entries: []AvailabilityEntry{
			{ShiftDate: "2025-06-10", ShiftType: models.ShiftDay},
			{ShiftDate: "2025-06-10", ShiftType: models.ShiftNight},
			{ShiftDate: "2025-06-11", ShiftType: models.ShiftNight},
		},
	}, openInstant)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, models.ShiftDouble, subs[0].ShiftType)
	assert.Equal(t, "2025-06-10", subs[0].ShiftDate.Format("2006-01-02"))
	assert.Equal(t, models.ShiftNight, subs[1].ShiftType)
}

func TestSubmitReplacesPreviousSubmission(t *testing.T) {
	store, svc := newAvailabilityFixture()

	_, err := svc.Submit(1, SubmitAvailabilityRequest{
		Entries: []AvailabilityEntry{
			{ShiftDate: "2025-06-10", ShiftType: models.ShiftDay},
			{ShiftDate: "2025-06-12", ShiftType: models.ShiftDouble},
		},
	}, openInstant)
	require.NoError(t, err)

	_, err = svc.Submit(1, SubmitAvailabilityRequest{
		Entries: []AvailabilityEntry{{ShiftDate: "2025-06-13", ShiftType: models.ShiftNight}},
	}, openInstant)
	require.NoError(t, err)

	require.Len(t, store.subs[1], 1)
	assert.Equal(t, models.ShiftNight, store.subs[1][0].ShiftType)
}

// On the closing Monday the window is still open until 14:00 and submissions
// apply to the week starting that same Monday.
func TestSubmitOnClosingMondayTargetsThatWeek(t *testing.T) {
	store, svc := newAvailabilityFixture()

	subs, err := svc.Submit(1, SubmitAvailabilityRequest{
		Entries: []AvailabilityEntry{{ShiftDate: "2025-06-09", ShiftType: models.ShiftDay}},
	}, time.Date(2025, time.June, 9, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "2025-06-09", subs[0].ShiftDate.Format("2006-01-02"))
	require.Len(t, store.subs[1], 1)
}

func TestConsolidateDayNight(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  []string
	}{
		{"day and night collapse", []string{models.ShiftDay, models.ShiftNight}, []string{models.ShiftDouble}},
		{"single day kept", []string{models.ShiftDay}, []string{models.ShiftDay}},
		{"double deduplicated", []string{models.ShiftDouble, models.ShiftDay, models.ShiftNight}, []string{models.ShiftDouble}},
		{"duplicates removed", []string{models.ShiftNight, models.ShiftNight}, []string{models.ShiftNight}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConsolidateDayNight(tt.types))
		})
	}
}
