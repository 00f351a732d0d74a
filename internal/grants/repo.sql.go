package grants

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-edu/pelita/internal/shared"
)

const grantColumns = `id, director_id, school_id, is_active, granted_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByDirector returns every grant row for a director, active or not.
func (r *Repository) ListByDirector(ctx context.Context, directorID int64) ([]SchoolGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+grantColumns+` FROM school_grants WHERE director_id = $1 ORDER BY school_id`, directorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grants []SchoolGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// Get fetches a single grant row.
func (r *Repository) Get(ctx context.Context, id int64) (SchoolGrant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+grantColumns+` FROM school_grants WHERE id = $1`, id)
	g, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SchoolGrant{}, shared.ErrNotFound
		}
		return SchoolGrant{}, err
	}
	return g, nil
}

// Upsert creates the grant or reactivates a previously revoked one. A
// single statement keeps the is_active flip atomic; a half-applied grant
// is never observable.
func (r *Repository) Upsert(ctx context.Context, directorID, schoolID, grantedBy int64) (SchoolGrant, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO school_grants (director_id, school_id, is_active, granted_by, created_at, updated_at)
		 VALUES ($1, $2, TRUE, $3, NOW(), NOW())
		 ON CONFLICT (director_id, school_id)
		 DO UPDATE SET is_active = TRUE, granted_by = EXCLUDED.granted_by, updated_at = NOW()
		 RETURNING `+grantColumns, directorID, schoolID, grantedBy)
	return scanGrant(row)
}

// Revoke deactivates the grant. The next school resolution for the
// director no longer sees it.
func (r *Repository) Revoke(ctx context.Context, id int64) (SchoolGrant, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE school_grants SET is_active = FALSE, updated_at = NOW()
		  WHERE id = $1
		 RETURNING `+grantColumns, id)
	g, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SchoolGrant{}, shared.ErrNotFound
		}
		return SchoolGrant{}, err
	}
	return g, nil
}

func scanGrant(row pgx.Row) (SchoolGrant, error) {
	var g SchoolGrant
	err := row.Scan(&g.ID, &g.DirectorID, &g.SchoolID, &g.IsActive, &g.GrantedBy, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

var _ RepositoryPort = (*Repository)(nil)
