package enrollment

import "context"

// RepositoryPort defines data access methods for classes, rosters and
// guardian links.
type RepositoryPort interface {
	CreateClass(ctx context.Context, c Class) (Class, error)
	GetClass(ctx context.Context, id int64) (Class, error)
	ListClassesBySchool(ctx context.Context, schoolID int64) ([]Class, error)

	AssignTeacher(ctx context.Context, teacherID, classID int64) error
	UnassignTeacher(ctx context.Context, teacherID, classID int64) error

	AddToRoster(ctx context.Context, classID, studentID int64) error
	RemoveFromRoster(ctx context.Context, classID, studentID int64) error

	LinkGuardian(ctx context.Context, parentID, studentID int64) error
	UnlinkGuardian(ctx context.Context, parentID, studentID int64) error
	ListGuardians(ctx context.Context, studentID int64) ([]int64, error)

	StudentSchool(ctx context.Context, studentID int64) (int64, error)
}
