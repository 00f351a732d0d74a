package staff

import "context"

// RepositoryPort defines data access methods for staff records and
// their leave requests.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Member, error)
	ListBySchool(ctx context.Context, schoolID int64) ([]Member, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, m Member) (Member, error)

	GetLeave(ctx context.Context, id int64) (LeaveRequest, error)
	ListLeaveBySchool(ctx context.Context, schoolID int64) ([]LeaveRequest, error)
	CreateLeave(ctx context.Context, lr LeaveRequest) (LeaveRequest, error)
	SetLeaveStatus(ctx context.Context, id int64, status string) (LeaveRequest, error)
}
