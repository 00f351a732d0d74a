package schools

import "context"

// RepositoryPort defines data access methods for schools.
type RepositoryPort interface {
	List(ctx context.Context) ([]School, error)
	ListByIDs(ctx context.Context, ids []int64) ([]School, error)
	Get(ctx context.Context, id int64) (School, error)
	CountStudents(ctx context.Context, schoolID int64) (int64, error)
	CountStaff(ctx context.Context, schoolID int64) (int64, error)
	CountClasses(ctx context.Context, schoolID int64) (int64, error)
}
