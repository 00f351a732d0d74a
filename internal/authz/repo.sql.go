package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore reads grant, link and actor data from PostgreSQL. Every method
// issues a fresh query; freshness of the decision inputs depends on it.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// ActiveSchoolGrants returns the schools the director currently holds an
// active grant for.
func (s *PGStore) ActiveSchoolGrants(ctx context.Context, directorID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT school_id FROM school_grants WHERE director_id = $1 AND is_active`, directorID)
	if err != nil {
		return nil, fmt.Errorf("authz: query school grants: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ChildrenOfParent returns the student ids linked to the parent through
// enrollment guardianship records.
func (s *PGStore) ChildrenOfParent(ctx context.Context, parentID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT student_id FROM student_guardians WHERE parent_id = $1`, parentID)
	if err != nil {
		return nil, fmt.Errorf("authz: query guardian links: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// RosterStudentsOfTeacher returns student ids reachable via the teacher's
// class assignments joined to the current rosters.
func (s *PGStore) RosterStudentsOfTeacher(ctx context.Context, teacherID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.student_id
		   FROM teacher_classes tc
		   JOIN class_rosters r ON r.class_id = tc.class_id
		  WHERE tc.teacher_id = $1`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("authz: query roster links: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// FindActor loads the actor facts for an active account.
func (s *PGStore) FindActor(ctx context.Context, userID int64) (Actor, error) {
	var actor Actor
	err := s.pool.QueryRow(ctx,
		`SELECT id, role, home_school_id FROM users WHERE id = $1 AND is_active`, userID).
		Scan(&actor.ID, &actor.Role, &actor.HomeSchoolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Actor{}, ErrActorNotFound
		}
		return Actor{}, fmt.Errorf("authz: find actor: %w", err)
	}
	return actor, nil
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

var (
	_ GrantStore = (*PGStore)(nil)
	_ LinkStore  = (*PGStore)(nil)
	_ ActorStore = (*PGStore)(nil)
)
