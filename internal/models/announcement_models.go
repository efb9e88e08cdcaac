package models

import "time"

// Announcement categories emitted by the scheduling workflows.
const (
	AnnouncementSchedule  = "schedule"
	AnnouncementSwap      = "swap"
	AnnouncementVolunteer = "volunteer"
)

// Announcement is a notification row targeted at a set of roles, or at a
// single user when UserID is set. Delivery is out of scope; this is the sink.
type Announcement struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" db:"title"`
	Body        string    `json:"body" db:"body"`
	Category    string    `json:"category" db:"category"`
	ActionLink  *string   `json:"action_link,omitempty" db:"action_link"`
	UserID      *int64    `json:"user_id,omitempty" db:"user_id"`
	TargetRoles []string  `json:"target_roles,omitempty"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
