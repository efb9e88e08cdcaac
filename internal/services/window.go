package services

import "time"

// Submission window phases.
const (
	WindowBeforeOpen = "BeforeOpen"
	WindowOpen       = "Open"
	WindowAfterClose = "AfterClose"
)

// noticeBand is how far ahead of an opening/closing instant the pre-open and
// pre-close notices fire.
const noticeBand = time.Hour

// WindowStatus describes the availability submission window relative to one
// instant. The window for the upcoming week runs from the current week's
// Tuesday 10:00 UTC to the next Monday 14:00 UTC (closed at the open instant,
// open strictly before the close instant).
type WindowStatus struct {
	Phase      string        `json:"phase"`
	OpensAt    time.Time     `json:"opens_at"`
	ClosesAt   time.Time     `json:"closes_at"`
	Remaining  time.Duration `json:"-"`
	OpensSoon  bool          `json:"opens_soon"`
	ClosesSoon bool          `json:"closes_soon"`
}

// submissionAnchorWeek resolves which cycle's window governs ref. A cycle
// anchored on Monday M runs from Tuesday 10:00 through the following Monday
// 14:00, so that closing Monday still belongs to the cycle it closes, not to
// the one its own week opens.
func submissionAnchorWeek(ref time.Time) WeekWindow {
	return CurrentWeek(ref.AddDate(0, 0, -1))
}

// SubmissionWindowBounds returns the [open, close) instants for submitting
// availability for the upcoming week, derived from ref.
func SubmissionWindowBounds(ref time.Time) (time.Time, time.Time) {
	anchor := submissionAnchorWeek(ref)
	opensAt := anchor.Monday.AddDate(0, 0, 1).Add(10 * time.Hour)  // Tuesday 10:00 UTC
	closesAt := anchor.Monday.AddDate(0, 0, 7).Add(14 * time.Hour) // next Monday 14:00 UTC
	return opensAt, closesAt
}

// SubmissionTargetWeek returns the week that availability submitted at ref
// applies to: the week starting on the Monday the governing window closes.
func SubmissionTargetWeek(ref time.Time) WeekWindow {
	anchor := submissionAnchorWeek(ref)
	return CurrentWeek(anchor.Monday.AddDate(0, 0, 7))
}

// SubmissionWindowOpen reports whether availability may be submitted at ref.
func SubmissionWindowOpen(ref time.Time) bool {
	opensAt, closesAt := SubmissionWindowBounds(ref)
	return !ref.Before(opensAt) && ref.Before(closesAt)
}

// SubmissionWindowStatus evaluates the window at ref. Callers decide how the
// one-hour notice flags translate into once-per-session notifications.
func SubmissionWindowStatus(ref time.Time) WindowStatus {
	opensAt, closesAt := SubmissionWindowBounds(ref)
	status := WindowStatus{OpensAt: opensAt, ClosesAt: closesAt}

	switch {
	case ref.Before(opensAt):
		status.Phase = WindowBeforeOpen
		status.Remaining = opensAt.Sub(ref)
		status.OpensSoon = status.Remaining <= noticeBand
	case ref.Before(closesAt):
		status.Phase = WindowOpen
		status.Remaining = closesAt.Sub(ref)
		status.ClosesSoon = status.Remaining <= noticeBand
	default:
		status.Phase = WindowAfterClose
	}
	return status
}
