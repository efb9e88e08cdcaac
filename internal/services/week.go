package services

import "time"

// WeekWindow is a Monday-anchored week of seven UTC dates.
type WeekWindow struct {
	Monday time.Time
	Days   [7]time.Time
}

// Contains reports whether the date falls inside the week.
func (w WeekWindow) Contains(date time.Time) bool {
	d := truncateToDate(date)
	return !d.Before(w.Monday) && !d.After(w.Days[6])
}

// Sunday returns the last day of the week.
func (w WeekWindow) Sunday() time.Time {
	return w.Days[6]
}

// CurrentWeek returns the week containing ref, anchored at the most recent
// Monday at or before ref (UTC).
func CurrentWeek(ref time.Time) WeekWindow {
	day := truncateToDate(ref)
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return weekFromMonday(day.AddDate(0, 0, -offset))
}

// UpcomingWeek returns the week after the current one. Availability is always
// collected for this week.
func UpcomingWeek(ref time.Time) WeekWindow {
	return weekFromMonday(CurrentWeek(ref).Monday.AddDate(0, 0, 7))
}

func weekFromMonday(monday time.Time) WeekWindow {
	w := WeekWindow{Monday: monday}
	for i := 0; i < 7; i++ {
		w.Days[i] = monday.AddDate(0, 0, i)
	}
	return w
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
