package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentWeekAnchorsOnMonday(t *testing.T) {
	monday := date(2025, time.June, 2)

	tests := []struct {
		name string
		ref  time.Time
	}{
		{"monday itself", date(2025, time.June, 2)},
		{"tuesday", date(2025, time.June, 3)},
		{"wednesday", date(2025, time.June, 4)},
		{"thursday", date(2025, time.June, 5)},
		{"friday", date(2025, time.June, 6)},
		{"saturday", date(2025, time.June, 7)},
		{"sunday", date(2025, time.June, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := CurrentWeek(tt.ref)
			assert.Equal(t, monday, week.Monday)
			assert.Equal(t, monday.AddDate(0, 0, 6), week.Sunday())
		})
	}
}

func TestCurrentWeekIgnoresTimeOfDay(t *testing.T) {
	week := CurrentWeek(time.Date(2025, time.June, 8, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, date(2025, time.June, 2), week.Monday)
}

func TestUpcomingWeek(t *testing.T) {
	week := UpcomingWeek(date(2025, time.June, 4))
	assert.Equal(t, date(2025, time.June, 9), week.Monday)
	assert.Equal(t, date(2025, time.June, 15), week.Sunday())

	// A Sunday reference still points at the next Monday, not the day after.
	week = UpcomingWeek(date(2025, time.June, 8))
	assert.Equal(t, date(2025, time.June, 9), week.Monday)
}

func TestWeekWindowContains(t *testing.T) {
	week := CurrentWeek(date(2025, time.June, 4))

	assert.True(t, week.Contains(date(2025, time.June, 2)))
	assert.True(t, week.Contains(date(2025, time.June, 8)))
	assert.True(t, week.Contains(time.Date(2025, time.June, 8, 18, 30, 0, 0, time.UTC)))
	assert.False(t, week.Contains(date(2025, time.June, 1)))
	assert.False(t, week.Contains(date(2025, time.June, 9)))
}

func TestWeekWindowDaysAreConsecutive(t *testing.T) {
	week := CurrentWeek(date(2025, time.June, 6))
	for i := 0; i < 7; i++ {
		assert.Equal(t, week.Monday.AddDate(0, 0, i), week.Days[i])
	}
}
