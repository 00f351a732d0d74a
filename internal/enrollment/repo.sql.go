package enrollment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-edu/pelita/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateClass inserts a class.
func (r *Repository) CreateClass(ctx context.Context, c Class) (Class, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO classes (school_id, name, created_at) VALUES ($1, $2, NOW())
		 RETURNING id, school_id, name, created_at`, c.SchoolID, c.Name)
	err := row.Scan(&c.ID, &c.SchoolID, &c.Name, &c.CreatedAt)
	return c, err
}

// GetClass fetches a single class.
func (r *Repository) GetClass(ctx context.Context, id int64) (Class, error) {
	var c Class
	err := r.pool.QueryRow(ctx,
		`SELECT id, school_id, name, created_at FROM classes WHERE id = $1`, id).
		Scan(&c.ID, &c.SchoolID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Class{}, shared.ErrNotFound
		}
		return Class{}, err
	}
	return c, nil
}

// ListClassesBySchool returns a school's classes.
func (r *Repository) ListClassesBySchool(ctx context.Context, schoolID int64) ([]Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, school_id, name, created_at FROM classes WHERE school_id = $1 ORDER BY name`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Class
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AssignTeacher binds a teacher to a class. Re-assigning is a no-op.
func (r *Repository) AssignTeacher(ctx context.Context, teacherID, classID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO teacher_classes (teacher_id, class_id) VALUES ($1, $2)
		 ON CONFLICT (teacher_id, class_id) DO NOTHING`, teacherID, classID)
	return err
}

// UnassignTeacher removes the binding. The teacher's roster reach through
// this class ends with the next decision.
func (r *Repository) UnassignTeacher(ctx context.Context, teacherID, classID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM teacher_classes WHERE teacher_id = $1 AND class_id = $2`, teacherID, classID)
	return err
}

// AddToRoster places a student in a class. Re-adding is a no-op.
func (r *Repository) AddToRoster(ctx context.Context, classID, studentID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO class_rosters (class_id, student_id) VALUES ($1, $2)
		 ON CONFLICT (class_id, student_id) DO NOTHING`, classID, studentID)
	return err
}

// RemoveFromRoster takes a student out of a class.
func (r *Repository) RemoveFromRoster(ctx context.Context, classID, studentID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM class_rosters WHERE class_id = $1 AND student_id = $2`, classID, studentID)
	return err
}

// LinkGuardian binds a parent to a student. Re-linking is a no-op.
func (r *Repository) LinkGuardian(ctx context.Context, parentID, studentID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO student_guardians (parent_id, student_id) VALUES ($1, $2)
		 ON CONFLICT (parent_id, student_id) DO NOTHING`, parentID, studentID)
	return err
}

// UnlinkGuardian removes the binding. The parent's reach to this student
// ends with the next decision.
func (r *Repository) UnlinkGuardian(ctx context.Context, parentID, studentID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM student_guardians WHERE parent_id = $1 AND student_id = $2`, parentID, studentID)
	return err
}

// ListGuardians returns the parent ids linked to a student.
func (r *Repository) ListGuardians(ctx context.Context, studentID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT parent_id FROM student_guardians WHERE student_id = $1 ORDER BY parent_id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// StudentSchool returns the school a student belongs to.
func (r *Repository) StudentSchool(ctx context.Context, studentID int64) (int64, error) {
	var schoolID int64
	err := r.pool.QueryRow(ctx,
		`SELECT school_id FROM students WHERE id = $1`, studentID).Scan(&schoolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return schoolID, nil
}

var _ RepositoryPort = (*Repository)(nil)
