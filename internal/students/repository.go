package students

import (
	"context"
	"time"
)

// RepositoryPort defines data access methods for students and their
// grade and attendance rows.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Student, error)
	ListBySchool(ctx context.Context, schoolID int64) ([]Student, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Student, error)
	Create(ctx context.Context, s Student) (Student, error)
	Update(ctx context.Context, s Student) (Student, error)

	ListGrades(ctx context.Context, studentID int64) ([]GradeEntry, error)
	AddGrade(ctx context.Context, g GradeEntry) (GradeEntry, error)

	ListAttendance(ctx context.Context, studentID int64, from, to time.Time) ([]AttendanceEntry, error)
	MarkAttendance(ctx context.Context, a AttendanceEntry) (AttendanceEntry, error)
}
