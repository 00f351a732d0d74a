package staff

import "time"

// Member is one employment record, always attached to a single school.
// Staff records carry salary data, so platform admins can reach them
// across schools without an individual grant.
type Member struct {
	ID        int64
	UserID    int64
	SchoolID  int64
	Name      string
	Position  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveRequest is a staff member's request for days off.
type LeaveRequest struct {
	ID        int64
	StaffID   int64
	SchoolID  int64
	FromDate  time.Time
	ToDate    time.Time
	Reason    string
	Status    string
	CreatedAt time.Time
}

// Leave request statuses.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)
