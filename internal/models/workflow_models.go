package models

import "time"

// Swap request lifecycle states.
const (
	SwapPending  = "Pending"
	SwapApproved = "Approved"
	SwapDenied   = "Denied"
)

// ShiftSwapRequest records a staff member asking a specific colleague to
// take over one of their scheduled shifts.
type ShiftSwapRequest struct {
	ID          int64           `json:"id"`
	ScheduleID  int64           `json:"schedule_id" db:"schedule_id"`
	RequesterID int64           `json:"requester_id" db:"requester_id"`
	TargetID    int64           `json:"target_id" db:"target_id"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	DecidedAt   *time.Time      `json:"decided_at,omitempty" db:"decided_at"`
	Schedule    *ScheduledShift `json:"schedule,omitempty"`
	Requester   *User           `json:"requester,omitempty"`
	Target      *User           `json:"target,omitempty"`
}

// Volunteer cycle lifecycle states.
const (
	VolunteerOpen            = "Open"
	VolunteerPendingApproval = "PendingApproval"
	VolunteerApproved        = "Approved"
	VolunteerCancelled       = "Cancelled"
)

// VolunteeredShift is an open offer of a scheduled shift to the wider
// eligible pool. Candidates accumulate while the cycle is active; approval
// picks exactly one of them.
type VolunteeredShift struct {
	ID                  int64           `json:"id"`
	ScheduleID          int64           `json:"schedule_id" db:"schedule_id"`
	OwnerID             int64           `json:"owner_id" db:"owner_id"`
	ApprovedVolunteerID *int64          `json:"approved_volunteer_id,omitempty" db:"approved_volunteer_id"`
	Status              string          `json:"status" db:"status"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	DecidedAt           *time.Time      `json:"decided_at,omitempty" db:"decided_at"`
	Schedule            *ScheduledShift `json:"schedule,omitempty"`
	Owner               *User           `json:"owner,omitempty"`
	Candidates          []User          `json:"candidates,omitempty"`
	CandidateIDs        []int64         `json:"candidate_ids,omitempty"`
}

// HasCandidate reports whether the given user is in the candidate pool.
func (v *VolunteeredShift) HasCandidate(userID int64) bool {
	for _, id := range v.CandidateIDs {
		if id == userID {
			return true
		}
	}
	return false
}
