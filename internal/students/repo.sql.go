package students

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-edu/pelita/internal/shared"
)

const studentColumns = `id, school_id, name, class_name, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a single student.
func (r *Repository) Get(ctx context.Context, id int64) (Student, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, shared.ErrNotFound
		}
		return Student{}, err
	}
	return s, nil
}

// ListBySchool returns active students of one school.
func (r *Repository) ListBySchool(ctx context.Context, schoolID int64) ([]Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE school_id = $1 AND is_active ORDER BY name`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStudents(rows)
}

// ListByIDs returns the students among ids.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStudents(rows)
}

// Create inserts a student.
func (r *Repository) Create(ctx context.Context, s Student) (Student, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO students (school_id, name, class_name, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		 RETURNING `+studentColumns, s.SchoolID, s.Name, s.ClassName)
	return scanStudent(row)
}

// Update rewrites the mutable student fields.
func (r *Repository) Update(ctx context.Context, s Student) (Student, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE students SET name = $2, class_name = $3, is_active = $4, updated_at = NOW()
		  WHERE id = $1
		 RETURNING `+studentColumns, s.ID, s.Name, s.ClassName, s.IsActive)
	out, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, shared.ErrNotFound
		}
		return Student{}, err
	}
	return out, nil
}

// ListGrades returns a student's grades, newest first.
func (r *Repository) ListGrades(ctx context.Context, studentID int64) ([]GradeEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, school_id, subject, term, score, entered_by, created_at
		   FROM grade_entries WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GradeEntry
	for rows.Next() {
		var g GradeEntry
		if err := rows.Scan(&g.ID, &g.StudentID, &g.SchoolID, &g.Subject, &g.Term, &g.Score, &g.EnteredBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddGrade inserts a grade entry.
func (r *Repository) AddGrade(ctx context.Context, g GradeEntry) (GradeEntry, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO grade_entries (student_id, school_id, subject, term, score, entered_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 RETURNING id, created_at`, g.StudentID, g.SchoolID, g.Subject, g.Term, g.Score, g.EnteredBy)
	if err := row.Scan(&g.ID, &g.CreatedAt); err != nil {
		return GradeEntry{}, err
	}
	return g, nil
}

// ListAttendance returns a student's attendance between from and to.
func (r *Repository) ListAttendance(ctx context.Context, studentID int64, from, to time.Time) ([]AttendanceEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, school_id, date, status, created_at
		   FROM attendance_entries
		  WHERE student_id = $1 AND date >= $2 AND date <= $3
		  ORDER BY date DESC`, studentID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AttendanceEntry
	for rows.Next() {
		var a AttendanceEntry
		if err := rows.Scan(&a.ID, &a.StudentID, &a.SchoolID, &a.Date, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkAttendance upserts the status for one student on one day.
func (r *Repository) MarkAttendance(ctx context.Context, a AttendanceEntry) (AttendanceEntry, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO attendance_entries (student_id, school_id, date, status, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (student_id, date)
		 DO UPDATE SET status = EXCLUDED.status
		 RETURNING id, created_at`, a.StudentID, a.SchoolID, a.Date, a.Status)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return AttendanceEntry{}, err
	}
	return a, nil
}

func scanStudent(row pgx.Row) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.SchoolID, &s.Name, &s.ClassName, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func collectStudents(rows pgx.Rows) ([]Student, error) {
	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
