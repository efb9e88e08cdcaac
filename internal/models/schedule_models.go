package models

import "time"

// Shift type labels as they appear in the catalog and on the schedule.
const (
	ShiftOpen        = "Open"
	ShiftDay         = "Day"
	ShiftNight       = "Night"
	ShiftDouble      = "Double"
	ShiftDoubleA     = "Double A"
	ShiftDoubleB     = "Double B"
	ShiftSplitDouble = "Split Double"
)

// ShiftSubmission is a staff member's availability declaration for one date.
// Submissions only ever carry Day, Night or Double.
type ShiftSubmission struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ShiftDate time.Time `json:"shift_date" db:"shift_date"`
	ShiftType string    `json:"shift_type" db:"shift_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ScheduledShift is one published (or draft) schedule assignment.
// CustomStart/CustomEnd are set only for shift types whose catalog timing
// is "Specified by Scheduler".
type ScheduledShift struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	ShiftDate   time.Time `json:"shift_date" db:"shift_date"`
	ShiftType   string    `json:"shift_type" db:"shift_type"`
	CustomStart *string   `json:"custom_start,omitempty" db:"custom_start"`
	CustomEnd   *string   `json:"custom_end,omitempty" db:"custom_end"`
	Published   bool      `json:"published" db:"published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	User        *User     `json:"user,omitempty"`
}

// StaffingRequirement holds the manager-set headcount bounds for one
// role on one date. Max is optional.
type StaffingRequirement struct {
	ID        int64     `json:"id"`
	RoleName  string    `json:"role_name" db:"role_name"`
	ShiftDate time.Time `json:"shift_date" db:"shift_date"`
	MinStaff  int       `json:"min_staff" db:"min_staff"`
	MaxStaff  *int      `json:"max_staff,omitempty" db:"max_staff"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Staffing status labels produced by the evaluator.
const (
	StaffingUnderstaffed  = "Understaffed"
	StaffingGood          = "Good"
	StaffingOverstaffed   = "Overstaffed"
	StaffingNoRequirement = "No Req."
)
