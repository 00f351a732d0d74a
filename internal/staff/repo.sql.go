package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-edu/pelita/internal/shared"
)

const (
	memberColumns = `id, user_id, school_id, name, position, is_active, created_at, updated_at`
	leaveColumns  = `id, staff_id, school_id, from_date, to_date, reason, status, created_at`
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a single staff record.
func (r *Repository) Get(ctx context.Context, id int64) (Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM staff WHERE id = $1`, id)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// ListBySchool returns active staff of one school.
func (r *Repository) ListBySchool(ctx context.Context, schoolID int64) ([]Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM staff WHERE school_id = $1 AND is_active ORDER BY name`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts a staff record.
func (r *Repository) Create(ctx context.Context, m Member) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO staff (user_id, school_id, name, position, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		 RETURNING `+memberColumns, m.UserID, m.SchoolID, m.Name, m.Position)
	return scanMember(row)
}

// Update rewrites the mutable staff fields.
func (r *Repository) Update(ctx context.Context, m Member) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE staff SET name = $2, position = $3, is_active = $4, updated_at = NOW()
		  WHERE id = $1
		 RETURNING `+memberColumns, m.ID, m.Name, m.Position, m.IsActive)
	out, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	return out, nil
}

// GetLeave fetches a single leave request.
func (r *Repository) GetLeave(ctx context.Context, id int64) (LeaveRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leave_requests WHERE id = $1`, id)
	lr, err := scanLeave(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LeaveRequest{}, shared.ErrNotFound
		}
		return LeaveRequest{}, err
	}
	return lr, nil
}

// ListLeaveBySchool returns a school's leave requests, newest first.
func (r *Repository) ListLeaveBySchool(ctx context.Context, schoolID int64) ([]LeaveRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE school_id = $1 ORDER BY created_at DESC`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LeaveRequest
	for rows.Next() {
		lr, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// CreateLeave inserts a pending leave request.
func (r *Repository) CreateLeave(ctx context.Context, lr LeaveRequest) (LeaveRequest, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO leave_requests (staff_id, school_id, from_date, to_date, reason, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 RETURNING `+leaveColumns, lr.StaffID, lr.SchoolID, lr.FromDate, lr.ToDate, lr.Reason, LeavePending)
	return scanLeave(row)
}

// SetLeaveStatus moves a leave request to a final status.
func (r *Repository) SetLeaveStatus(ctx context.Context, id int64, status string) (LeaveRequest, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE leave_requests SET status = $2 WHERE id = $1 RETURNING `+leaveColumns, id, status)
	lr, err := scanLeave(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LeaveRequest{}, shared.ErrNotFound
		}
		return LeaveRequest{}, err
	}
	return lr, nil
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.UserID, &m.SchoolID, &m.Name, &m.Position, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanLeave(row pgx.Row) (LeaveRequest, error) {
	var lr LeaveRequest
	err := row.Scan(&lr.ID, &lr.StaffID, &lr.SchoolID, &lr.FromDate, &lr.ToDate, &lr.Reason, &lr.Status, &lr.CreatedAt)
	return lr, err
}

var _ RepositoryPort = (*Repository)(nil)
