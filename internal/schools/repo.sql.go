package schools

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-edu/pelita/internal/shared"
)

const schoolColumns = `id, name, city, is_active, created_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all active schools.
func (r *Repository) List(ctx context.Context) ([]School, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+schoolColumns+` FROM schools WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchools(rows)
}

// ListByIDs returns the active schools among ids, ordered by name.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]School, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+schoolColumns+` FROM schools WHERE id = ANY($1) AND is_active ORDER BY name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchools(rows)
}

// Get fetches a single school.
func (r *Repository) Get(ctx context.Context, id int64) (School, error) {
	var s School
	err := r.pool.QueryRow(ctx,
		`SELECT `+schoolColumns+` FROM schools WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.City, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return School{}, shared.ErrNotFound
		}
		return School{}, err
	}
	return s, nil
}

// CountStudents counts enrolled students in a school.
func (r *Repository) CountStudents(ctx context.Context, schoolID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM students WHERE school_id = $1 AND is_active`, schoolID)
}

// CountStaff counts active staff records in a school.
func (r *Repository) CountStaff(ctx context.Context, schoolID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM staff WHERE school_id = $1 AND is_active`, schoolID)
}

// CountClasses counts classes in a school.
func (r *Repository) CountClasses(ctx context.Context, schoolID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM classes WHERE school_id = $1`, schoolID)
}

func (r *Repository) count(ctx context.Context, query string, schoolID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, query, schoolID).Scan(&n)
	return n, err
}

func collectSchools(rows pgx.Rows) ([]School, error) {
	var out []School
	for rows.Next() {
		var s School
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
